package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Caption  CaptionConfig  `mapstructure:"caption"  validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all HTTP-server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CaptionConfig contains the settings for the external captioning backend.
//
// Provider selects the backend implementation: "ollama" talks to an
// Ollama-compatible /api/generate endpoint, "gemini" uses the Google genai
// SDK. GeminiAPIKey is only required for the latter.
type CaptionConfig struct {
	Provider              string `mapstructure:"provider"                validate:"required,oneof=ollama gemini"`
	URL                   string `mapstructure:"url"                     validate:"required_if=Provider ollama"`
	Model                 string `mapstructure:"model"                   validate:"required"`
	GeminiAPIKey          string `mapstructure:"gemini_api_key"          validate:"required_if=Provider gemini"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// WorkerConfig contains the job worker settings.
type WorkerConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
}
