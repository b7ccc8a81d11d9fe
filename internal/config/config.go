package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Auth
	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	RoleCacheTTLMin int    `envconfig:"ROLE_CACHE_TTL_MIN" default:"30"`

	// Optional infrastructure. Empty values disable the feature.
	AMQPURL   string `envconfig:"AMQP_URL"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// SMTP for conversion alerts
	MailHost string `envconfig:"MAIL_HOST"`
	MailPort int    `envconfig:"MAIL_PORT" default:"587"`
	MailUser string `envconfig:"MAIL_USER"`
	MailPass string `envconfig:"MAIL_PASS"`
	MailFrom string `envconfig:"MAIL_FROM" default:"no-reply@leadcrm.local"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	godotenv.Load()

	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
