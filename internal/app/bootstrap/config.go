package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration. It merges file defaults and
// environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string
	HTTPPort  int

	// DatabaseURL switches the store from memory to postgres; RedisURL
	// switches sessions from the local store to redis. Both optional.
	DatabaseURL string
	RedisURL    string
	MaxDBConns  int

	JWTSecret  string
	BcryptCost int
	TokenTTL   time.Duration
	SessionTTL time.Duration
	QRTokenTTL time.Duration

	SeedAdminUsername string
	SeedAdminPassword string
	SeedAdminName     string
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
		AdminName     string `yaml:"admin_name"`
	} `yaml:"auth"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "samduk-cylinder-service",
		HTTPPort:          8080,
		MaxDBConns:        20,
		BcryptCost:        12,
		TokenTTL:          24 * time.Hour,
		SessionTTL:        30 * 24 * time.Hour,
		QRTokenTTL:        5 * time.Minute,
		SeedAdminUsername: "admin",
		SeedAdminName:     "관리자",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			var file configFile
			if err := yaml.Unmarshal(raw, &file); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			if file.Service.ID != "" {
				cfg.ServiceID = file.Service.ID
			}
			if file.Service.HTTPPort > 0 {
				cfg.HTTPPort = file.Service.HTTPPort
			}
			cfg.DatabaseURL = file.Dependencies.PostgresURL
			cfg.RedisURL = file.Dependencies.RedisURL
			if file.Auth.JWTSecret != "" {
				cfg.JWTSecret = file.Auth.JWTSecret
			}
			if file.Auth.AdminUsername != "" {
				cfg.SeedAdminUsername = file.Auth.AdminUsername
			}
			cfg.SeedAdminPassword = file.Auth.AdminPassword
			if file.Auth.AdminName != "" {
				cfg.SeedAdminName = file.Auth.AdminName
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse HTTP_PORT: %w", err)
		}
		cfg.HTTPPort = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.SeedAdminUsername = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.SeedAdminPassword = v
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}
