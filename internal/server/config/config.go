package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// InsecureDefaultSecret is the signing secret used when none is configured.
// It exists so development setups work out of the box; operators MUST
// override it in any non-development deployment.
const InsecureDefaultSecret = "sereno-dev-secret"

// Config holds all configuration for the server.
type Config struct {
	// Environment is "production" or "development"; controls log encoding.
	Environment string `mapstructure:"environment"`

	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AI       AIConfig       `mapstructure:"ai"`
	Limits   Limits         `mapstructure:"limits"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MigrationsPath string `mapstructure:"migrations_path"`
	SkipMigrations bool   `mapstructure:"skip_migrations"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	// Secret signs access tokens. Defaults to InsecureDefaultSecret.
	Secret string `mapstructure:"secret"`

	// TokenLifetime bounds token validity. Default is 7 days.
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
}

// InsecureSecret reports whether the signing secret is still the documented
// insecure default.
func (c AuthConfig) InsecureSecret() bool {
	return c.Secret == InsecureDefaultSecret
}

// AIConfig holds configuration for the external completion provider.
type AIConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

// Limits holds operational limits.
type Limits struct {
	// MaxBackupBytes caps the accepted backup upload size.
	MaxBackupBytes int64 `mapstructure:"max_backup_bytes"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// EventListLimit caps rows returned when listing events.
	EventListLimit int `mapstructure:"event_list_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("http.enable_cors", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sereno")
	v.SetDefault("database.password", "sereno_dev_password")
	v.SetDefault("database.database", "sereno")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("auth.secret", InsecureDefaultSecret)
	v.SetDefault("auth.token_lifetime", 7*24*time.Hour)

	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.max_tokens", 300)

	v.SetDefault("limits.max_backup_bytes", int64(32<<20))
	v.SetDefault("limits.max_body_bytes", int64(1<<20))
	v.SetDefault("limits.event_list_limit", 100)
}

// Load loads configuration from an optional config file and environment
// variables. Priority (highest to lowest): environment (SERENO_*) > config
// file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SERENO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
