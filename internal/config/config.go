package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config is the full tool configuration, loadable from configs/config.yaml
// with environment overrides for secrets.
type Config struct {
	API       APIConfig
	Migration MigrationConfig
	Audit     AuditConfig
}

// APIConfig configures the remote platform client
type APIConfig struct {
	BaseURL        string
	Email          string
	Password       string
	RateLimit      float64
	MaxRetries     int
	TimeoutSeconds int
	TokenCachePath string
}

// MigrationConfig configures the apply command
type MigrationConfig struct {
	PlanPath     string
	TestMode     bool
	TestPrefix   string
	Limit        int
	OnFailure    string // ask, continue or abort
	IncludeDeals bool
}

// AuditConfig configures the local audit database
type AuditConfig struct {
	Enabled bool
	Path    string
}

// Load reads the configuration file, applying defaults and environment
// overrides. Credentials come from TRADERVOLT_EMAIL and TRADERVOLT_PASSWORD
// and never from the config file on disk.
func Load() (*Config, error) {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")

	viper.SetDefault("api.base_url", "https://api.tradervolt.com")
	viper.SetDefault("api.rate_limit", 1.0)
	viper.SetDefault("api.max_retries", 3)
	viper.SetDefault("api.timeout_seconds", 30)
	viper.SetDefault("api.token_cache_path", "token.json")
	viper.SetDefault("migration.plan_path", "out/migration_plan.json")
	viper.SetDefault("migration.on_failure", "ask")
	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.path", "out/audit.db")

	// Missing config file is fine, defaults plus env cover everything
	_ = viper.ReadInConfig()

	cfg := &Config{}

	cfg.API = APIConfig{
		BaseURL:        viper.GetString("api.base_url"),
		Email:          os.Getenv("TRADERVOLT_EMAIL"),
		Password:       os.Getenv("TRADERVOLT_PASSWORD"),
		RateLimit:      viper.GetFloat64("api.rate_limit"),
		MaxRetries:     viper.GetInt("api.max_retries"),
		TimeoutSeconds: viper.GetInt("api.timeout_seconds"),
		TokenCachePath: viper.GetString("api.token_cache_path"),
	}

	cfg.Migration = MigrationConfig{
		PlanPath:     viper.GetString("migration.plan_path"),
		TestMode:     viper.GetBool("migration.test_mode"),
		TestPrefix:   viper.GetString("migration.test_prefix"),
		Limit:        viper.GetInt("migration.limit"),
		OnFailure:    viper.GetString("migration.on_failure"),
		IncludeDeals: viper.GetBool("migration.include_deals"),
	}

	cfg.Audit = AuditConfig{
		Enabled: viper.GetBool("audit.enabled"),
		Path:    viper.GetString("audit.path"),
	}

	return cfg, nil
}
