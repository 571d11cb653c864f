package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Session   SessionConfig   `mapstructure:"session"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`

	// URL is the connection string: a postgres URL or a sqlite DSN
	// (file path or :memory:).
	URL string `mapstructure:"url" validate:"required"`

	// Migrate runs pending schema migrations on startup. Only
	// meaningful for the postgres driver; the sqlite backend applies
	// its schema on open.
	Migrate bool `mapstructure:"migrate"`
}

// SchedulerConfig overrides algorithm parameters. Zero values keep the
// defaults.
type SchedulerConfig struct {
	// HardIntervalPolicy selects how an "almost" answer grows a review
	// interval: "ease_adjusted" (default) or "fixed".
	HardIntervalPolicy string `mapstructure:"hard_interval_policy" validate:"omitempty,oneof=ease_adjusted fixed"`

	// LeechThreshold is the lapse count at which a card is flagged as
	// a leech. Zero keeps the default; negative disables flagging.
	LeechThreshold int `mapstructure:"leech_threshold"`
}

// SessionConfig tunes queue building.
type SessionConfig struct {
	// MaxJitterMinutes bounds the learning-card ordering skew. Zero
	// keeps the default of five minutes.
	MaxJitterMinutes int `mapstructure:"max_jitter_minutes" validate:"gte=0"`

	// DisableJitter makes session builds fully deterministic.
	DisableJitter bool `mapstructure:"disable_jitter"`
}
