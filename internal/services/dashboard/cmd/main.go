package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/config"
	"github.com/LeonardoBeccarini/dispensadoras/internal/logger"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "dispensadoras",
	Short: "Dispensadoras dashboard",
	Long: `Live dashboard for the dispensadoras fleet. It polls the backend API
and pushes rendered page regions and chart configs to connected browsers.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and backend client shared
// by every command.
func setup() (*config.Config, *zap.Logger, *backend.Client, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	client := backend.NewClient(cfg.Backend.URL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(log.Named("backend")),
		backend.WithBreaker(int(cfg.Backend.BreakerFailures), cfg.Backend.BreakerOpenFor),
	)
	return cfg, log, client, nil
}
