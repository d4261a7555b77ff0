// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring config.yaml ---

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	FrontendURL string `mapstructure:"frontendURL"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
	// Transactions wraps each simulation commit in a multi-document transaction.
	// Requires a replica set or sharded cluster.
	Transactions bool `mapstructure:"transactions"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	CookieName string        `mapstructure:"cookieName"`
	Secure     bool          `mapstructure:"secure"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"apiKey"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"maxOutputTokens"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lockTTL"`
	LockWait time.Duration `mapstructure:"lockWait"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type RateLimitConfig struct {
	AuthPerMinute int `mapstructure:"authPerMinute"`
}

// --- Main Config struct ---

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Session   SessionConfig   `mapstructure:"session"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.mode":             "GIN_MODE",
	"server.frontendURL":      "FRONTEND_URL",
	"mongo.uri":               "MONGO_URI",
	"mongo.dbName":            "MONGO_DBNAME",
	"mongo.transactions":      "MONGO_TRANSACTIONS",
	"session.secret":          "SESSION_SECRET",
	"session.expiration":      "SESSION_EXPIRATION",
	"session.cookieName":      "SESSION_COOKIE_NAME",
	"session.secure":          "SESSION_SECURE",
	"gemini.apiKey":           "GEMINI_API_KEY",
	"gemini.model":            "GEMINI_MODEL",
	"redis.address":           "REDIS_ADDRESS",
	"redis.password":          "REDIS_PASSWORD",
	"redis.db":                "REDIS_DB",
	"redis.lockTTL":           "REDIS_LOCK_TTL",
	"redis.lockWait":          "REDIS_LOCK_WAIT",
	"s3.bucket":               "S3_BUCKET",
	"s3.region":               "S3_REGION",
	"s3.accessKeyID":          "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":      "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":     "S3_CLOUDFRONT_DOMAIN",
	"log.level":               "LOG_LEVEL",
	"log.development":         "LOG_DEVELOPMENT",
	"rateLimit.authPerMinute": "AUTH_RATE_PER_MINUTE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.frontendURL", "http://localhost:5173")
	v.SetDefault("mongo.dbName", "greencart")
	v.SetDefault("mongo.transactions", false)
	v.SetDefault("session.expiration", 24*time.Hour)
	v.SetDefault("session.cookieName", "greencart_session")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("gemini.maxOutputTokens", 500)
	v.SetDefault("redis.lockTTL", 2*time.Minute)
	v.SetDefault("redis.lockWait", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("rateLimit.authPerMinute", 10)
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return config, fmt.Errorf("load config: bind %s: %w", env, err)
		}
	}

	// Without config.yaml viper falls back to defaults and the environment.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("load config: read file: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("load config: unmarshal: %w", err)
	}

	return config, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Mongo.URI) == "" {
		missing = append(missing, "mongo.uri (MONGO_URI)")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		missing = append(missing, "session.secret (SESSION_SECRET)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Session.Expiration <= 0 {
		return errors.New("config: session.expiration must be positive")
	}
	return nil
}
