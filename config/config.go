package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"

	PaymentProviderStub   = "stub"
	PaymentProviderStripe = "stripe"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"medcamp"`

	JWTSecretKey    string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"8760h"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	OrganizerEmails []string      `env:"ORGANIZER_EMAILS" envSeparator:","`

	// Код, который организатор вводит при первой регистрации.
	OrganizerSignupCode string `env:"ORGANIZER_SIGNUP_CODE"`

	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"stub"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `env:"PAYMENT_CURRENCY" envDefault:"usd"`

	R2 R2Config `envPrefix:"R2_"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	SheetsSpreadsheetID      string `env:"GOOGLE_SHEETS_SPREADSHEET_ID"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

// SMTPConfig задает почтовый сервер для писем участникам. Пустой Host отключает рассылку.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// R2Config описывает доступ к Cloudflare R2. Пустой AccountID отключает загрузки.
type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	BucketName      string `env:"BUCKET_NAME"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment)
	}

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StorageDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI environment variable is not set")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.PaymentProvider {
	case PaymentProviderStub:
	case PaymentProviderStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_PROVIDER %q", c.PaymentProvider)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	if c.SMTP.Enabled() && c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}

	for i, email := range c.OrganizerEmails {
		c.OrganizerEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SlogLevel переводит LOG_LEVEL в уровень slog; неизвестные значения дают info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
