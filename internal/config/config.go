package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY not set in environment")

// AdminConfig describes the bootstrap administrator account
type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Enabled reports whether enough is set to create the account
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

// Config is the server configuration. Values come from defaults, then the
// optional YAML file named by CONFIG_FILE, then the environment.
type Config struct {
	ServerPort     string      `yaml:"server_port"`
	GinMode        string      `yaml:"gin_mode"`
	StorageBackend string      `yaml:"storage_backend"`
	DB             DBConfig    `yaml:"db"`
	RedisURL       string      `yaml:"redis_url"`
	DataDir        string      `yaml:"data_dir"`
	JWTSecret      string      `yaml:"jwt_secret_key"`
	JWTExpiration  int         `yaml:"jwt_expiration_hours"`
	PasswordHasher string      `yaml:"password_hasher"`
	BcryptCost     int         `yaml:"bcrypt_cost"`
	Admin          AdminConfig `yaml:"admin"`
	StaticDir      string      `yaml:"static_dir"`
	LogLevel       string      `yaml:"log_level"`
	LogFormat      string      `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerPort:     "8080",
		GinMode:        "debug",
		StorageBackend: BackendPostgres,
		RedisURL:       "redis://localhost:6379/0",
		DataDir:        "data",
		JWTExpiration:  24,
		PasswordHasher: "bcrypt",
		BcryptCost:     10,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// TokenTTL returns the configured token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiration) * time.Hour
}

// Load reads .env (if present), the CONFIG_FILE yaml (if set) and the
// environment. It reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, dotenv, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, dotenv, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return cfg, dotenv, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.ServerPort, "SERVER_PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.StorageBackend, "STORAGE_BACKEND")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.PasswordHasher, "PASSWORD_HASHER")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	setString(&c.DB.URL, "DATABASE_URL")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")

	if err := setInt(&c.JWTExpiration, "JWT_EXPIRATION_HOURS"); err != nil {
		return err
	}
	return setInt(&c.BcryptCost, "BCRYPT_COST")
}

// Validate checks the values that have no usable default
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRATION_HOURS %d", c.JWTExpiration)
	}
	switch c.StorageBackend {
	case BackendPostgres, BackendRedis, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
