package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional YAML config file
const ConfigPathEnvVar = "CONFIG_PATH"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost  string `koanf:"server_host"`
	ServerPort  string `koanf:"server_port"`
	PublicURL   string `koanf:"public_url"`
	CORSOrigins string `koanf:"cors_origins"`

	// Database configuration
	DBDriver      string `koanf:"db_driver"`
	DBHost        string `koanf:"db_host"`
	DBPort        string `koanf:"db_port"`
	DBUser        string `koanf:"db_user"`
	DBPassword    string `koanf:"db_password"`
	DBName        string `koanf:"db_name"`
	DBSSLMode     string `koanf:"db_ssl_mode"`
	SQLitePath    string `koanf:"sqlite_path"`
	MigrationsDir string `koanf:"migrations_dir"`

	// Redis configuration
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Short links
	ShortLinkSalt      string `koanf:"shortlink_salt"`
	ShortLinkMinLength int    `koanf:"shortlink_min_length"`

	// Pagination
	PageSize    int `koanf:"page_size"`
	MaxPageSize int `koanf:"max_page_size"`

	// Image storage
	StorageBackend string `koanf:"storage_backend"`
	MediaRoot      string `koanf:"media_root"`
	MediaURL       string `koanf:"media_url"`
	S3BucketName   string `koanf:"s3_bucket_name"`
	AWSRegion      string `koanf:"aws_region"`
	MaxImageWidth  int    `koanf:"max_image_width"`

	// Rate limiting
	RecipeCreateLimit  int           `koanf:"recipe_create_limit"`
	RecipeCreateWindow time.Duration `koanf:"recipe_create_window"`
	LoginRatePerMinute int           `koanf:"login_rate_per_minute"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaultConfig() *Config {
	return &Config{
		ServerHost:         "0.0.0.0",
		ServerPort:         "8080",
		PublicURL:          "http://localhost:8080",
		CORSOrigins:        "http://localhost:3000",
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             "5432",
		DBUser:             "foodgram",
		DBName:             "foodgram",
		DBSSLMode:          "disable",
		SQLitePath:         "foodgram.db",
		MigrationsDir:      "migrations",
		RedisHost:          "localhost",
		RedisPort:          "6379",
		TokenTTL:           24 * time.Hour,
		ShortLinkSalt:      "foodgram",
		ShortLinkMinLength: 3,
		PageSize:           6,
		MaxPageSize:        100,
		StorageBackend:     "local",
		MediaRoot:          "media",
		MediaURL:           "/media",
		S3BucketName:       "foodgram-media",
		MaxImageWidth:      1280,
		RecipeCreateLimit:  30,
		RecipeCreateWindow: time.Hour,
		LoginRatePerMinute: 10,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// sensitive keys may be supplied as Docker secrets, which take precedence over the environment
var secretKeys = []string{
	"db_password",
	"jwt_secret",
	"redis_password",
	"shortlink_salt",
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// the environment (including a .env file) and Docker secrets, in that order.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, key := range secretKeys {
		if value := readSecret(key); value != "" {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("failed to apply secret %s: %w", key, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the YAML config path if one is configured or present
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, candidate := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
