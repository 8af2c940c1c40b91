package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/queue"
	"github.com/iliyamo/optitask/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Create the projects, tasks, labels, task_labels and time_entries tables if they do not exist.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.DatabaseOptions())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
			return err
		}
		fmt.Printf("schema applied (%s)\n", cfg.DBDriver)
		return nil
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append time entry events from RabbitMQ to the events log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := log.New("consumer")
		logger.SetLevel(logLevel(cfg.LogLevel))
		return queue.NewConsumer(cfg.RabbitMQURL, cfg.EventsLogDir, logger).Run(ctx)
	},
}

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user id",
	Long:  `Sign an HS256 access token with JWT_SECRET for local testing.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user %q: %w", tokenUser, err)
		}
		secret := settings.GetString("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		tok, err := utils.NewAccessToken(secret, id, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.Exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (UUID) to put in the subject claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
