package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. The core verifies
// credentials issued with the configured secret; token issuance lives in
// the auth service.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=0,lte=31"`
}

// RealtimeConfig selects and tunes the event fan-out backend. The memory
// backend keeps rooms in-process; the redis backend publishes events
// through Redis pub/sub so multiple server instances share rooms.
type RealtimeConfig struct {
	Backend            string `mapstructure:"backend"              validate:"required,oneof=memory redis"`
	RedisURL           string `mapstructure:"redis_url"            validate:"required_if=Backend redis"`
	RedisChannelPrefix string `mapstructure:"redis_channel_prefix"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec"    validate:"gt=0"`
	SendBufferSize     int    `mapstructure:"send_buffer_size"     validate:"gt=0"`
}
