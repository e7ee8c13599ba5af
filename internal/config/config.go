package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Google   GoogleConfig   `yaml:"google"`
	Logging  LoggingConfig  `yaml:"logging"`
	API      APIConfig      `yaml:"api"`
	Bot      BotConfig      `yaml:"bot"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
	// WebAppURL — база deep-link'а мини-приложения (ЛК).
	WebAppURL      string `yaml:"webapp_url"`
	ManagerContact string `yaml:"manager_contact"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	ConnectTimeout int    `yaml:"connect_timeout"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BotConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
	// ReminderTime — время суток ежедневного прохода по напоминаниям, "HH:MM".
	ReminderTime string `yaml:"reminder_time"`
}

// Load читает YAML-конфиг, предварительно подхватив .env и развернув
// переменные окружения внутри файла.
func Load(configPath string) (*Config, error) {
	// .env опционален: в проде переменные приходят из окружения платформы.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyEnvFallbacks()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyEnvFallbacks сохраняет контракт окружения таблицы-предка:
// POSTGRES_URL (и старые алиасы), TELEGRAM_BOT_TOKEN, ADMIN_CHAT_ID, VERCEL_URL.
func (c *Config) applyEnvFallbacks() {
	if c.Database.URL == "" {
		for _, name := range []string{"POSTGRES_URL", "POSTGRES_PRISMA_URL", "DATABASE_URL"} {
			if v := os.Getenv(name); v != "" {
				c.Database.URL = v
				break
			}
		}
	}
	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.AdminChatID == 0 {
		if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				c.Telegram.AdminChatID = id
			}
		}
	}
	if c.Telegram.WebAppURL == "" {
		if host := os.Getenv("VERCEL_URL"); host != "" {
			c.Telegram.WebAppURL = "https://" + host
		}
	}
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}
	if c.Telegram.AdminChatID == 0 {
		return errors.New("admin chat id is required")
	}
	if c.Database.URL == "" {
		return errors.New("postgres connection string is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 10
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = 20
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = 60
	}
	if c.Bot.ReminderTime == "" {
		c.Bot.ReminderTime = "09:00"
	}
}
