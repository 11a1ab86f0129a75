package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/pkg/config"
	"github.com/FACorreiaa/go-tripboard/pkg/logger"
)

// rootCmd runs the web server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "tripboard",
	Short:         "Travel itinerary planner",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads .env, the config and the logger every command needs.
func bootstrap() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding, zap.String("service", cfg.ServiceName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if envErr != nil {
		log.Debug("No .env file loaded, using process environment", zap.Error(envErr))
	}
	return cfg, log, nil
}
