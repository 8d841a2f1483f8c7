// Package cli implements the kassactl command tree.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kassakit/kassakit/cache"
	"github.com/kassakit/kassakit/config"
	"github.com/kassakit/kassakit/kassa"
	"github.com/kassakit/kassakit/observe"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared state built once per invocation.
type CliContext struct {
	Config   *config.Config
	Client   *kassa.Client
	Observer observe.Observer
}

// Global flags.
var (
	configPath string
	verbose    bool
)

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var cctx CliContext

	rootCmd := &cobra.Command{
		Use:           "kassactl",
		Short:         "Control a remote cash register",
		Long:          `kassactl sends signed commands to a remote cash-register service: open and close shifts, print checks and purchase returns, and query device and command state.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main.go prints the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			cctx.Config = cfg

			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}

			obs, err := observe.NewObserver(cmd.Context(), observe.Config{
				ServiceName: "kassactl",
				Tracing: observe.TracingConfig{
					Enabled:   cfg.Tracing.Exporter != "" && cfg.Tracing.Exporter != "none",
					Exporter:  cfg.Tracing.Exporter,
					SamplePct: cfg.Tracing.SamplePct,
				},
				Metrics: observe.MetricsConfig{
					Enabled:  cfg.Metrics.Exporter != "" && cfg.Metrics.Exporter != "none",
					Exporter: cfg.Metrics.Exporter,
				},
				Logging: observe.LoggingConfig{
					Enabled: true,
					Level:   level,
				},
			})
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
			cctx.Observer = obs

			metrics, err := observe.NewMetrics(obs.Meter())
			if err != nil {
				return fmt.Errorf("setup metrics: %w", err)
			}

			store, err := tokenStore(cfg)
			if err != nil {
				return err
			}

			timeout := cfg.Timeout
			if timeout == 0 {
				timeout = kassa.DefaultTimeout
			}

			client, err := kassa.New(cmd.Context(), kassa.Config{
				Account:    cfg.Account,
				AppID:      cfg.AppID,
				Secret:     cfg.Secret,
				HTTPClient: &http.Client{Timeout: timeout},
				Cache:      store,
				Logger:     obs.Logger(),
				Metrics:    metrics,
				Tracer:     observe.NewTracer(obs.Tracer()),
			})
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			cctx.Client = client

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &cctx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cctx.Observer != nil {
				return cctx.Observer.Shutdown(cmd.Context())
			}
			return nil
		},
	}

	rootCmd.AddCommand(newStateCommand())
	rootCmd.AddCommand(newShiftCommand())
	rootCmd.AddCommand(newPrintCommand())
	rootCmd.AddCommand(newCommandCommand())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default $KASSAKIT_CONFIG or ~/.config/kassakit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	return rootCmd
}

// resolveConfigPath picks the config file: flag, then environment, then the
// conventional location under the user config directory.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("KASSAKIT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "kassakit", "config.yaml")
}

// tokenStore builds the cache tokens persist in between invocations.
func tokenStore(cfg *config.Config) (cache.Cache, error) {
	path := cfg.CachePath
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return cache.NewMemoryCache(), nil
		}
		path = filepath.Join(dir, "kassakit", "tokens.json")
	}
	fc, err := cache.NewFileCache(path)
	if err != nil {
		return nil, fmt.Errorf("open token cache: %w", err)
	}
	return fc, nil
}

// getCliContext extracts the CLI context from the command context.
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
