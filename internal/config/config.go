package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the API needs at startup.
type Config struct {
	AppPort                string
	DatabaseDriver         string // "postgres" or "sqlite"
	DatabaseDSN            string
	JWTSecret              string
	TokenTTL               time.Duration
	RabbitMQURL            string // empty disables the broker and logs codes instead
	ConfirmationQueue      string
	ConsumeConfirmations   bool // log-only consumer; leave off when a mail worker reads the queue
	RotateConfirmationCode bool
	AuthRateLimit          int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=yamdb port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CONFIRMATION_QUEUE", "confirmation_codes")
	v.SetDefault("CONSUME_CONFIRMATION_CODES", false)
	v.SetDefault("ROTATE_CONFIRMATION_CODE", false)
	v.SetDefault("AUTH_RATE_LIMIT", 20)
}

// Load reads an optional .env file, then environment variables through viper.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:                v.GetString("APP_PORT"),
		DatabaseDriver:         v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		TokenTTL:               v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:            v.GetString("RABBITMQ_URL"),
		ConfirmationQueue:      v.GetString("CONFIRMATION_QUEUE"),
		ConsumeConfirmations:   v.GetBool("CONSUME_CONFIRMATION_CODES"),
		RotateConfirmationCode: v.GetBool("ROTATE_CONFIRMATION_CODE"),
		AuthRateLimit:          v.GetInt("AUTH_RATE_LIMIT"),
	}
}
