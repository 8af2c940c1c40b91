// Package main provides the optitask command: the HTTP API server plus the
// migration, event consumer and token helpers that run next to it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/optitask/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// configFile is set by the --config flag.
	configFile string

	// settings is the viper instance loaded by PersistentPreRunE.
	settings *viper.Viper
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "optitask",
	Short: "OptiTask is a multi-tenant task and time tracking API",
	Long: `OptiTask serves projects, tasks, labels and time entries over HTTP,
scoped to the calling user, and reports where the time went.

Settings come from the environment, an optional .env file and an optional
config file passed with --config.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json, toml or env)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(consumeCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadSettings reads .env and the config file into settings.
func loadSettings(cmd *cobra.Command, args []string) error {
	// Skip for version
	if cmd.Name() == "version" {
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	settings = v
	return nil
}

// loadConfig validates settings into a Config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(settings)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the optitask version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("optitask", version)
	},
}
