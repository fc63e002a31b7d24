package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, retry policy, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Signing SigningConfig
	Stripe  StripeConfig
	Email   EmailConfig
	Queue   QueueConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// SigningConfig holds the QR credential signing secret. Rotating it invalidates
// every QR code already issued, so treat rotation as a re-issue event.
type SigningConfig struct {
	QRSecret string `envconfig:"QR_SIGNING_SECRET" required:"true"`
}

type StripeConfig struct {
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
}

type EmailConfig struct {
	APIKey        string `envconfig:"EMAIL_API_KEY" required:"true"`
	APIBaseURL    string `envconfig:"EMAIL_API_BASE_URL" default:"https://api.resend.com"`
	FromAddress   string `envconfig:"EMAIL_FROM" default:"tickets@nightgate.example"`
	WebhookSecret string `envconfig:"EMAIL_WEBHOOK_SECRET" required:"true"`
}

type QueueConfig struct {
	EmailBatchSize    int           `envconfig:"EMAIL_BATCH_SIZE" default:"10"`
	EmailMaxAttempts  int32         `envconfig:"EMAIL_MAX_ATTEMPTS" default:"5"`
	EmailPollInterval time.Duration `envconfig:"EMAIL_POLL_INTERVAL" default:"1m"`
	BackoffBase       time.Duration `envconfig:"QUEUE_BACKOFF_BASE" default:"1m"`
	BackoffMax        time.Duration `envconfig:"QUEUE_BACKOFF_MAX" default:"30m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error",
		},
		JWT: JWTConfig{
			Secret:   "test-jwt-secret",
			Duration: time.Hour,
		},
		Signing: SigningConfig{
			QRSecret: "test-qr-secret",
		},
		Stripe: StripeConfig{
			WebhookSecret: "whsec_test",
		},
		Email: EmailConfig{
			APIKey:        "re_test",
			APIBaseURL:    "http://localhost:0",
			FromAddress:   "tickets@test.local",
			WebhookSecret: "ehsec_test",
		},
		Queue: QueueConfig{
			EmailBatchSize:    10,
			EmailMaxAttempts:  5,
			EmailPollInterval: time.Minute,
			BackoffBase:       time.Minute,
			BackoffMax:        30 * time.Minute,
		},
	}
}
