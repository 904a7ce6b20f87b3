package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// MailConfig contains the SMTP settings for the notification dispatcher.
// FromAddress appears as the sender of reminder and moderation emails.
type MailConfig struct {
	Host        string `mapstructure:"host"         validate:"required"`
	Port        int    `mapstructure:"port"         validate:"required,gt=0,lt=65536"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
	FromName    string `mapstructure:"from_name"`
	SiteURL     string `mapstructure:"site_url"`
}

// JobsConfig configures the background jobs: how often the reminder
// dispatcher and the post publisher wake up, and how far ahead the
// reminder window looks.
type JobsConfig struct {
	ReminderIntervalMinutes  int `mapstructure:"reminder_interval_minutes"  validate:"required,gt=0"`
	ReminderWindowHours      int `mapstructure:"reminder_window_hours"      validate:"required,gt=0"`
	PublishIntervalMinutes   int `mapstructure:"publish_interval_minutes"   validate:"required,gt=0"`
	ReminderMaxConcurrency   int `mapstructure:"reminder_max_concurrency"   validate:"required,gt=0"`
}
