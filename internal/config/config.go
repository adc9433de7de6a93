package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		Env            string   `yaml:"env"`
		BaseURL        string   `yaml:"base_url"`        // публичный адрес оркестратора, для callback URL
		AllowedOrigins []string `yaml:"allowed_origins"` // CORS и websocket; по умолчанию только BaseURL
	} `yaml:"server"`

	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Port           int    `yaml:"port"` // порт эталонного бэкенда (cmd/backend)
	} `yaml:"backend"`

	Gateway struct {
		ClientKey       string `yaml:"client_key"`
		SuccessURL      string `yaml:"success_url"`
		FailURL         string `yaml:"fail_url"`
		OrderNamePrefix string `yaml:"order_name_prefix"`
		Currency        string `yaml:"currency"`
	} `yaml:"gateway"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTLMinutes int    `yaml:"ttl_minutes"`
		Secure     bool   `yaml:"secure"`
	} `yaml:"session"`

	Messaging struct {
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"messaging"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Payments struct {
		PendingTTLMinutes          int `yaml:"pending_ttl_minutes"`
		ExpiryCheckIntervalMinutes int `yaml:"expiry_check_interval_minutes"`
	} `yaml:"payments"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		SupportEmail string `yaml:"support_email"`
	} `yaml:"email"`

	SeedUsers []SeedUser `yaml:"seed_users"`
}

// SeedUser - пользователь, создаваемый эталонным бэкендом при старте.
type SeedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

var AppConfig *Config

// LoadConfig загружает конфигурацию в AppConfig.
// Путь берется из CONFIG_PATH, по умолчанию config/config.yaml.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load читает yaml (если файл существует), применяет переменные окружения и значения по умолчанию.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
			}
		case os.IsNotExist(err):
			log.Printf("Config file %s not found, using environment only", path)
		default:
			return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Gateway.SuccessURL == "" {
		cfg.Gateway.SuccessURL = cfg.Server.BaseURL + "/api/v1/payments/success"
	}
	if cfg.Gateway.FailURL == "" {
		cfg.Gateway.FailURL = cfg.Server.BaseURL + "/api/v1/payments/fail"
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.BaseURL, "SERVER_BASE_URL")
	setString(&cfg.Backend.BaseURL, "BACKEND_URL")
	setInt(&cfg.Backend.Port, "BACKEND_PORT")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Gateway.ClientKey, "GATEWAY_CLIENT_KEY")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.SupportEmail, "SUPPORT_EMAIL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{cfg.Server.BaseURL}
	}
	if cfg.Backend.Port == 0 {
		cfg.Backend.Port = 4100
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:4100/api/v1"
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}
	if cfg.Gateway.Currency == "" {
		cfg.Gateway.Currency = "KRW"
	}
	if cfg.Gateway.OrderNamePrefix == "" {
		cfg.Gateway.OrderNamePrefix = "Legal consultation"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "cl_session"
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 12 * 60
	}
	if cfg.Messaging.PollIntervalSeconds <= 0 {
		cfg.Messaging.PollIntervalSeconds = 3
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Payments.PendingTTLMinutes <= 0 {
		cfg.Payments.PendingTTLMinutes = 60
	}
	if cfg.Payments.ExpiryCheckIntervalMinutes <= 0 {
		cfg.Payments.ExpiryCheckIntervalMinutes = 5
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// BackendTimeout - таймаут исходящих вызовов к бэкенду.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionTTL - время жизни сессии оркестратора.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// PollInterval - период опроса сообщений.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Messaging.PollIntervalSeconds) * time.Second
}

// TokenTTL - время жизни JWT бэкенда.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

// PendingPaymentTTL - через сколько незавершенный платеж считается брошенным.
func (c *Config) PendingPaymentTTL() time.Duration {
	return time.Duration(c.Payments.PendingTTLMinutes) * time.Minute
}

// ExpiryCheckInterval - период проверки брошенных платежей.
func (c *Config) ExpiryCheckInterval() time.Duration {
	return time.Duration(c.Payments.ExpiryCheckIntervalMinutes) * time.Minute
}
