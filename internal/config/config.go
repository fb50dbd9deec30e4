package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the Storify account service.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBPath         string        `env:"DB_PATH,default=storify.db"`
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	BcryptCost     int           `env:"BCRYPT_COST,default=12"`
	SMTPHost       string        `env:"SMTP_HOST"`
	SMTPPort       int           `env:"SMTP_PORT,default=587"`
	SMTPUser       string        `env:"SMTP_USER"`
	SMTPPassword   string        `env:"SMTP_PASS"`
	FromEmail      string        `env:"FROM_EMAIL,default=noreply@storify.app"`
	AppURL         string        `env:"APP_URL,default=http://localhost:8080"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
