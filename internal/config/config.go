package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RazorpayConfig struct {
	KeyID       string `yaml:"key_id"`
	KeySecret   string `yaml:"key_secret"`
	BaseURL     string `yaml:"base_url"`
	DisplayName string `yaml:"display_name"`
	ThemeColor  string `yaml:"theme_color"`
}

type CheckoutConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"` // hosted session self-closes after this
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Web        WebConfig        `yaml:"web"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config, overlays secrets from the environment
// (a local .env is honored when present), applies defaults and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env overrides for secrets
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RAZORPAY_KEY_ID"); v != "" {
		cfg.Razorpay.KeyID = v
	}
	if v := os.Getenv("RAZORPAY_KEY_SECRET"); v != "" {
		cfg.Razorpay.KeySecret = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Web.JWTSecret = v
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Razorpay.BaseURL == "" {
		cfg.Razorpay.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Razorpay.DisplayName == "" {
		cfg.Razorpay.DisplayName = "KundliLabs"
	}
	if cfg.Razorpay.ThemeColor == "" {
		cfg.Razorpay.ThemeColor = "#8B5CF6"
	}
	if cfg.Checkout.TimeoutSeconds <= 0 {
		cfg.Checkout.TimeoutSeconds = 900 // 15 minutes
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = time.Minute
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		cfg.Reconciler.StaleAfter = time.Duration(cfg.Checkout.TimeoutSeconds) * time.Second
	}

	// minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Web.JWTSecret == "" {
		return nil, errors.New("web.jwt_secret is required")
	}
	if !dev && (cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "") {
		return nil, errors.New("razorpay.key_id and razorpay.key_secret are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
