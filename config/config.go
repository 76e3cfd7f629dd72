// config/config.go
package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all startup settings. It is built once in main and passed by
// reference to the packages that need it; nothing mutates it after Load.
type Config struct {
	Port          string        `mapstructure:"port"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	DatabaseName  string        `mapstructure:"database_name"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`

	// DuplicateThreshold is the title-similarity score above which an upload
	// is rejected as a duplicate. Can be overridden per-deployment via the
	// persisted settings document.
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`

	// MaxPageSize caps the limit query parameter on list endpoints.
	MaxPageSize int `mapstructure:"max_page_size"`
}

// Load reads config.yaml (if present) and environment variables into a Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("port", "8080")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database_name", "knowledgehub")
	v.SetDefault("jwt_secret", "secret")
	v.SetDefault("jwt_expiration", 24*time.Hour)
	v.SetDefault("duplicate_threshold", 0.85)
	v.SetDefault("max_page_size", 100)

	v.BindEnv("port", "PORT")
	v.BindEnv("mongo_uri", "MONGODB_URI")
	v.BindEnv("database_name", "DATABASE_NAME")
	v.BindEnv("jwt_secret", "JWT_SECRET")
	v.BindEnv("jwt_expiration", "JWT_EXPIRE")
	v.BindEnv("duplicate_threshold", "DUPLICATE_THRESHOLD")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Info("No config.yaml found, using environment variables and defaults")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "secret" {
		logrus.Warn("JWT_SECRET not set, using insecure default")
	}

	return &cfg, nil
}
