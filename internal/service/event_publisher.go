// Package service publishes domain events to RabbitMQ. Errors are logged
// and returned so callers can ignore them without failing the request.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/optitask/internal/queue"
)

// EventPublisher sends events to a RabbitMQ broker. Each publish opens its
// own connection, so the publisher holds no state between calls.
type EventPublisher struct {
	url    string
	logger *log.Logger
}

// NewEventPublisher returns a publisher for the broker at url.
func NewEventPublisher(url string, logger *log.Logger) *EventPublisher {
	if logger == nil {
		logger = log.New("events")
	}
	return &EventPublisher{url: url, logger: logger}
}

// PublishTimeEntryRecorded sends ev to the time_entry.recorded queue as a
// persistent JSON message.
func (p *EventPublisher) PublishTimeEntryRecorded(ctx context.Context, ev queue.TimeEntryRecordedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Errorf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	return p.publish(ctx, queue.TimeEntryRecordedQueue, body)
}

func (p *EventPublisher) publish(ctx context.Context, queueName string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.logger.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.logger.Warnf("rabbitmq: publish to %s failed: %v", queueName, err)
		return err
	}
	return nil
}
