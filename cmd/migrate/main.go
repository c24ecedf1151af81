package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/config"
	"github.com/ksred/tradervolt-migrate/internal/tokencache"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate trading platform master data into TraderVolt",
	Long: `migrate imports symbol groups, symbols, trader groups, traders, orders
and positions from a prepared migration plan into a TraderVolt deployment,
in dependency order, resolving references as server IDs are assigned.

Credentials are taken from TRADERVOLT_EMAIL and TRADERVOLT_PASSWORD.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		zlog.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newClient builds the API client context for one command invocation
func newClient(cfg *config.Config) *api.Client {
	var cache api.TokenCache = tokencache.NopCache{}
	if cfg.API.TokenCachePath != "" {
		cache = tokencache.NewFileCache(cfg.API.TokenCachePath)
	}

	return api.NewClient(api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Credentials: api.Credentials{
			Email:    cfg.API.Email,
			Password: cfg.API.Password,
		},
		TokenCache: cache,
		RateLimit:  cfg.API.RateLimit,
		MaxRetries: uint64(cfg.API.MaxRetries),
		Timeout:    time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Logger:     zlog.Logger,
	})
}
