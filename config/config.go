package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all startup configuration for the server. It is built once in
// main and passed into constructors; nothing reads it as ambient global state.
type Config struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// Token signing. SessionTTLHours bounds both the JWT exp claim and the
	// session row expiry; the cookie max-age follows it too.
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`

	// CORS origins allowed to send the session cookie cross-site.
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	GoogleMapsAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`

	// Geocode cache backend: "memory" (ttlcache) or "redis".
	GeocodeCacheBackend string `mapstructure:"GEOCODE_CACHE_BACKEND"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`

	// Recovery mail delivery.
	MailServerToken string `mapstructure:"MAIL_SERVER_TOKEN"`
	MailFromAddress string `mapstructure:"MAIL_FROM_ADDRESS"`
	MailAPIBaseURL  string `mapstructure:"MAIL_API_BASE_URL"`

	// When set, the named AWS Secrets Manager secret is fetched at startup and
	// overlays the fields above. Empty disables the lookup entirely.
	AWSSecretName string `mapstructure:"AWS_SECRET_NAME"`
	AWSRegion     string `mapstructure:"AWS_REGION"`
}

// SessionTTL returns the configured session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Load reads configuration from an optional yaml file, environment variables,
// and defaults, in that order of precedence (env wins).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/schoolatlas/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "4000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/schoolatlas_dev")
	v.SetDefault("MONGO_DB_NAME", "schoolatlas_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("JWT_SECRET", "dev_only_jwt_secret_change_me")
	v.SetDefault("SESSION_TTL_HOURS", 3)
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("GEOCODE_CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MAIL_API_BASE_URL", "https://api.postmarkapp.com")
	v.SetDefault("AWS_REGION", "us-east-1")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
