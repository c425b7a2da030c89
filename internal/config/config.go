package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/safeweb/pkg/logger"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		APIKey         string   `yaml:"apiKey"`
	} `yaml:"server"`

	AI struct {
		Provider    string  `yaml:"provider"` // gemini | openai | fake
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"apiKey"`
		BaseURL     string  `yaml:"baseURL"`
		Temperature float32 `yaml:"temperature"`
		Language    string  `yaml:"language"` // pt-BR | en
	} `yaml:"ai"`

	History struct {
		Backend  string `yaml:"backend"` // file | memory | redis | minio | mysql | postgres
		FilePath string `yaml:"filePath"`
	} `yaml:"history"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"keyPrefix"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	Limits struct {
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	} `yaml:"limits"`

	Logger logger.Config `yaml:"logger"`
}

// Default returns a config that runs locally with a file-backed history.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.AllowedOrigins = []string{"*"}
	c.AI.Provider = "gemini"
	c.AI.Model = "gemini-2.5-flash"
	c.AI.Temperature = 0.2
	c.AI.Language = "pt-BR"
	c.History.Backend = "file"
	c.History.FilePath = "data/safeweb_history.json"
	c.Database.SSLMode = "disable"
	c.Redis.Addr = "localhost:6379"
	c.Redis.KeyPrefix = "safeweb:"
	c.Minio.BucketName = "safeweb"
	c.RateLimit.RequestsPerSecond = 2
	c.RateLimit.Burst = 5
	c.Limits.MaxUploadBytes = 10 << 20
	c.Logger = logger.DefaultConfig()
	return &c
}

// Load reads the configuration like Read and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads .env (if any), the yaml file at path (if it exists) and then
// environment overrides, on top of Default. The result is not validated.
func Read(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SAFEWEB_AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("SAFEWEB_AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	c.ResolveAPIKey()
	if v := os.Getenv("SAFEWEB_HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("SAFEWEB_HISTORY_FILE"); v != "" {
		c.History.FilePath = v
	}
	if v := os.Getenv("SAFEWEB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("SAFEWEB_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("SAFEWEB_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

// ResolveAPIKey fills AI.APIKey from the provider's environment variable
// when it was not configured explicitly.
func (c *Config) ResolveAPIKey() {
	if c.AI.APIKey != "" {
		return
	}
	switch strings.ToLower(c.AI.Provider) {
	case "openai":
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		c.AI.APIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY"))
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai":
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai.apiKey is required for provider %s", c.AI.Provider)
		}
	case "fake":
	default:
		return fmt.Errorf("unknown ai provider: %s (supported: gemini, openai, fake)", c.AI.Provider)
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2")
	}
	return c.ValidateHistory()
}

// ValidateHistory checks only the history settings, for commands that never
// call the analysis provider.
func (c *Config) ValidateHistory() error {
	switch strings.ToLower(c.History.Backend) {
	case "file":
		if c.History.FilePath == "" {
			return fmt.Errorf("history.filePath is required for the file backend")
		}
	case "memory", "redis", "minio", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown history backend: %s (supported: file, memory, redis, minio, mysql, postgres)", c.History.Backend)
	}
	return nil
}

// MySQLDSN builds a go-sql-driver DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
