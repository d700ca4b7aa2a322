package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	I18n        I18nConfig        `mapstructure:"i18n"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	AI          AIConfig          `mapstructure:"ai"`
	WebSocket   WebSocketConfig   `mapstructure:"websocket"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenExpiry int    `mapstructure:"token_expiry"`
}

// I18nConfig configures the locale registry, translation catalogs and
// locale sessions.
type I18nConfig struct {
	LocalesPath          string   `mapstructure:"locales_path"`
	DefaultLocale        string   `mapstructure:"default_locale"`
	SupportedLocales     []string `mapstructure:"supported_locales"`
	SessionLifetimeHours int      `mapstructure:"session_lifetime_hours"`
	CookieSecure         bool     `mapstructure:"cookie_secure"`
}

// GeolocationConfig configures the IP geolocation resolver.
type GeolocationConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CacheSize      int    `mapstructure:"cache_size"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours"`
	MaxMindDBPath  string `mapstructure:"maxmind_db_path"`
}

// AIConfig contains translation provider configuration
type AIConfig struct {
	Providers       []AIProviderConfig `mapstructure:"providers"`
	FallbackEnabled bool               `mapstructure:"fallback_enabled"`
	Timeout         string             `mapstructure:"timeout"`
}

// AIProviderConfig contains configuration for a specific provider
type AIProviderConfig struct {
	Type         string `mapstructure:"type"`
	Enabled      bool   `mapstructure:"enabled"`
	URL          string `mapstructure:"url,omitempty"`
	APIKey       string `mapstructure:"api_key,omitempty"`
	DefaultModel string `mapstructure:"default_model"`
	MaxTokens    int    `mapstructure:"max_tokens,omitempty"`
	Priority     int    `mapstructure:"priority"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"`
	PongTimeout  int `mapstructure:"pong_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/mindwell")

	// Environment variables override file values
	viper.SetEnvPrefix("MINDWELL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine, defaults and env cover it
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.path", "./data/mindwell.db")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_connections", 25)

	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_expiry", 86400)

	viper.SetDefault("i18n.locales_path", "./locales")
	viper.SetDefault("i18n.default_locale", "en")
	viper.SetDefault("i18n.supported_locales", []string{})
	viper.SetDefault("i18n.session_lifetime_hours", 24)
	viper.SetDefault("i18n.cookie_secure", true)

	viper.SetDefault("geolocation.enabled", true)
	viper.SetDefault("geolocation.timeout_seconds", 5)
	viper.SetDefault("geolocation.cache_size", 1024)
	viper.SetDefault("geolocation.cache_ttl_hours", 24)

	viper.SetDefault("ai.fallback_enabled", true)
	viper.SetDefault("ai.timeout", "30s")

	viper.SetDefault("websocket.ping_interval", 54)
	viper.SetDefault("websocket.pong_timeout", 60)
	viper.SetDefault("websocket.write_timeout", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
