package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the service.
type Config struct {
	Server struct {
		Port         string        `yaml:"port"`
		StaticDir    string        `yaml:"static_dir"`
		CookieSecure bool          `yaml:"cookie_secure"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"` // SQLite file, e.g. "dws.db"
	} `yaml:"database"`
	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		Issuer        string        `yaml:"issuer"`
		UserTokenTTL  time.Duration `yaml:"user_token_ttl"`
		AdminTokenTTL time.Duration `yaml:"admin_token_ttl"`
		AdminSecret   string        `yaml:"admin_secret"`
	} `yaml:"auth"`
	Dedupe struct {
		Backend    string        `yaml:"backend"` // memory | redis
		Window     time.Duration `yaml:"window"`
		MaxEntries int           `yaml:"max_entries"`
	} `yaml:"dedupe"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Images struct {
		Dir            string        `yaml:"dir"`
		URLTTL         time.Duration `yaml:"url_ttl"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	} `yaml:"images"`
	RateLimit struct {
		Requests int           `yaml:"requests"`
		Window   time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	c := &Config{}
	c.Server.Port = "8080"
	c.Server.StaticDir = "./static"
	c.Server.ReadTimeout = 5 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.IdleTimeout = 120 * time.Second
	c.Database.Path = "dws.db"
	c.Auth.Issuer = "dws"
	c.Auth.UserTokenTTL = 15 * time.Minute
	c.Auth.AdminTokenTTL = 60 * time.Minute
	c.Dedupe.Backend = "memory"
	c.Dedupe.Window = 3 * time.Second
	c.Dedupe.MaxEntries = 10000
	c.Redis.Addr = "localhost:6379"
	c.Images.Dir = "./uploads"
	c.Images.URLTTL = 7 * 24 * time.Hour
	c.Images.MaxUploadBytes = 5 << 20
	c.RateLimit.Requests = 120
	c.RateLimit.Window = time.Minute
	return c
}

// Load builds the configuration: defaults, then .env, then the YAML file at
// path (or DWS_CONFIG), then DWS_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("DWS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg.Server.Port = getEnv("DWS_PORT", cfg.Server.Port)
	cfg.Server.StaticDir = getEnv("DWS_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.CookieSecure = getBool("DWS_COOKIE_SECURE", cfg.Server.CookieSecure)

	cfg.Database.Path = getEnv("DWS_DB_PATH", cfg.Database.Path)

	cfg.Auth.JWTSecret = getEnv("DWS_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("DWS_JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.UserTokenTTL = getDuration("DWS_USER_TOKEN_TTL", cfg.Auth.UserTokenTTL)
	cfg.Auth.AdminTokenTTL = getDuration("DWS_ADMIN_TOKEN_TTL", cfg.Auth.AdminTokenTTL)
	cfg.Auth.AdminSecret = getEnv("DWS_ADMIN_SECRET", cfg.Auth.AdminSecret)

	cfg.Dedupe.Backend = getEnv("DWS_DEDUPE_BACKEND", cfg.Dedupe.Backend)
	cfg.Dedupe.Window = getDuration("DWS_DEDUPE_WINDOW", cfg.Dedupe.Window)
	cfg.Dedupe.MaxEntries = getInt("DWS_DEDUPE_MAX_ENTRIES", cfg.Dedupe.MaxEntries)

	cfg.Redis.Addr = getEnv("DWS_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("DWS_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getInt("DWS_REDIS_DB", cfg.Redis.DB)

	cfg.Images.Dir = getEnv("DWS_IMAGES_DIR", cfg.Images.Dir)
	cfg.Images.URLTTL = getDuration("DWS_IMAGES_URL_TTL", cfg.Images.URLTTL)
	cfg.Images.MaxUploadBytes = int64(getInt("DWS_IMAGES_MAX_BYTES", int(cfg.Images.MaxUploadBytes)))

	cfg.RateLimit.Requests = getInt("DWS_RATE_LIMIT_REQUESTS", cfg.RateLimit.Requests)
	cfg.RateLimit.Window = getDuration("DWS_RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Info("configuration loaded", "port", cfg.Server.Port, "db", cfg.Database.Path, "dedupe", cfg.Dedupe.Backend)
	return cfg, nil
}

// Validate reports the first setting the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("config: DWS_JWT_SECRET must be set")
	case c.Auth.UserTokenTTL <= 0 || c.Auth.AdminTokenTTL <= 0:
		return errors.New("config: token TTLs must be positive")
	case c.Dedupe.Window <= 0:
		return errors.New("config: dedupe window must be positive")
	case c.Dedupe.Backend != "memory" && c.Dedupe.Backend != "redis":
		return fmt.Errorf("config: unknown dedupe backend %q", c.Dedupe.Backend)
	case c.Images.URLTTL <= 0 || c.Images.MaxUploadBytes <= 0:
		return errors.New("config: image URL TTL and upload size must be positive")
	case c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0:
		return errors.New("config: rate limit must be positive")
	}
	return nil
}

// getEnv returns the environment variable or fallback when unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "default", fallback)
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "default", fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "default", fallback)
		return fallback
	}
	return v
}
