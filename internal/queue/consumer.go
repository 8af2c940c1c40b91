package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// logFileName is the file, under the consumer's directory, events are appended to.
const logFileName = "time_entries.log"

// Consumer reads time_entry.recorded events and appends one line per event
// to <Dir>/time_entries.log.
type Consumer struct {
	URL    string     // broker address
	Dir    string     // log directory, created on demand
	Logger *log.Logger
}

// NewConsumer returns a Consumer logging through logger.
func NewConsumer(url, dir string, logger *log.Logger) *Consumer {
	if logger == nil {
		logger = log.New("consumer")
	}
	return &Consumer{URL: url, Dir: dir, Logger: logger}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes until
// ctx is cancelled. Broker failures are retried with exponential backoff
// capped at 30s; a message that cannot be handled is rejected without
// requeue so it cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warnf("time-entry-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warnf("time-entry-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warnf("time-entry-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(TimeEntryRecordedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(TimeEntryRecordedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Logger.Infof("time-entry-consumer: consuming %s", TimeEntryRecordedQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.Logger.Errorf("time-entry-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one event body and appends its line to the log file.
func (c *Consumer) Handle(body []byte) error {
	var ev TimeEntryRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev TimeEntryRecordedEvent) string {
	end, dur := ev.EndTime, "running"
	if end == "" {
		end = "-"
	}
	if ev.DurationSeconds != nil {
		dur = strconv.Itoa(int(*ev.DurationSeconds)) + "s"
	}
	return fmt.Sprintf("[%s] Time entry recorded | time_entry_id=%s | user_id=%s | task_id=%s | start=%s | end=%s | duration=%s | pomodoro=%t\n",
		ev.RecordedAt, ev.TimeEntryID, ev.UserID, ev.TaskID, ev.StartTime, end, dur, ev.IsPomodoroSession)
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
