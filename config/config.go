package config

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Backing store. STORE_DRIVER is "postgres" or "mongo".
	StoreDriver     string `mapstructure:"STORE_DRIVER"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`      // service-level credentials
	DatabaseAnonURL string `mapstructure:"DATABASE_ANON_URL"` // anon-level credentials
	MongoURL        string `mapstructure:"MONGO_URL"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Web Push signing keys.
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `mapstructure:"VAPID_SUBJECT"`
	PushTTL         int    `mapstructure:"PUSH_TTL"`

	FanoutConcurrency int `mapstructure:"FANOUT_CONCURRENCY"`

	// Optional FCM delivery for native shells.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Secret the backend signs user access tokens with.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	AdminPin     string `mapstructure:"ADMIN_PIN"`
	AdminPinHash string `mapstructure:"ADMIN_PIN_HASH"`
}

var AppConfig Config

var (
	ErrMissingVAPID        = errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set")
	ErrMissingServiceStore = errors.New("service-level store credentials are not configured")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_ANON_URL", "")
	v.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "puckline")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("VAPID_PUBLIC_KEY", "")
	v.SetDefault("VAPID_PRIVATE_KEY", "")
	v.SetDefault("VAPID_SUBJECT", "mailto:admin@puckline.app")
	v.SetDefault("PUSH_TTL", 60*60*24)
	v.SetDefault("FANOUT_CONCURRENCY", 8)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_PIN", "")
	v.SetDefault("ADMIN_PIN_HASH", "")
}

// Load reads .env, config.yaml and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates the global AppConfig or exits.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// RequireVAPID fails when the push signing key pair is incomplete.
func (c Config) RequireVAPID() error {
	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return ErrMissingVAPID
	}
	return nil
}

// RequireServiceStore fails when no elevated store credentials are configured.
func (c Config) RequireServiceStore() error {
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURL == "" {
			return ErrMissingServiceStore
		}
	default:
		if c.DatabaseURL == "" {
			return ErrMissingServiceStore
		}
	}
	return nil
}
