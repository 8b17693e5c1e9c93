package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	App      AppConfig      `env:",prefix=APP_"`
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Mail     MailConfig     `env:",prefix=EMAIL_"`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Tokens   TokenConfig    `env:",prefix=TOKEN_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type AppConfig struct {
	Name    string `env:"NAME,default=Acme Inc"`
	BaseURL string `env:"BASE_URL,default=http://localhost:3000"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=t3_starter"`
	Password string `env:"PASSWORD,default=t3_starter_password"`
	DBName   string `env:"DB,default=t3_starter_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type MailConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=587"`
	Username string `env:"USERNAME,default="`
	Password string `env:"PASSWORD,default="`
	From     string `env:"FROM,default=no-reply@localhost"`
}

type SessionConfig struct {
	CookieName string   `env:"COOKIE_NAME,default=authjs.session-token"`
	Expiry     Duration `env:"EXPIRY,default=30d"`
}

type TokenConfig struct {
	VerificationExpiry  Duration `env:"VERIFICATION_EXPIRY,default=24h"`
	PasswordResetExpiry Duration `env:"PASSWORD_RESET_EXPIRY,default=24h"`
	TwoFactorExpiry     Duration `env:"TWO_FACTOR_EXPIRY,default=5m"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	AdminEmail        string   `env:"ADMIN_USER_EMAIL,default="`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Address returns the SMTP server address
func (m MailConfig) Address() string {
	return fmt.Sprintf("%s:%s", m.Host, m.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if config.Security.BCryptCost < 10 {
		return nil, fmt.Errorf("BCRYPT_COST must be at least 10")
	}

	if config.Session.Expiry.Duration <= 0 {
		return nil, fmt.Errorf("SESSION_EXPIRY must be positive")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
