package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the EDITORIAL_ prefix with
// underscores for nesting (e.g. EDITORIAL_DATABASE_URL).
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EDITORIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone is not enough for Unmarshal: viper only considers
	// keys it already knows about, and the secrets deliberately have no
	// defaults. Bind every key explicitly so env-only configuration works.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read error is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// configKeys lists every configuration key so Load can bind each one to
// its environment variable. Keep in sync with the structs in config.go.
var configKeys = []string{
	"server.port",
	"server.log_level",
	"server.allowed_origins",
	"database.url",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.refresh_token_lifetime_minutes",
	"mail.host",
	"mail.port",
	"mail.username",
	"mail.password",
	"mail.from_address",
	"mail.from_name",
	"mail.site_url",
	"jobs.reminder_interval_minutes",
	"jobs.reminder_window_hours",
	"jobs.publish_interval_minutes",
	"jobs.reminder_max_concurrency",
}

// setDefaults registers defaults for everything that has a sensible one.
// Secrets (database URL, JWT secret, SMTP credentials) have none and must
// come from the environment or config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from_name", "Editorial")

	v.SetDefault("jobs.reminder_interval_minutes", 60)
	v.SetDefault("jobs.reminder_window_hours", 24)
	v.SetDefault("jobs.publish_interval_minutes", 5)
	v.SetDefault("jobs.reminder_max_concurrency", 4)
}
