package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// production refuses to start with these development defaults
var insecureDefaults = map[string]string{
	"shortlink_salt": "foodgram",
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			add("db_host", "postgres requires db_host and db_name")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("sqlite_path", "sqlite requires a database path")
		}
	default:
		add("db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			add("media_root", "local storage requires a media root")
		}
	case "s3":
		if cfg.S3BucketName == "" {
			add("s3_bucket_name", "s3 storage requires a bucket name")
		}
	default:
		add("storage_backend", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}

	if cfg.PageSize < 1 || cfg.MaxPageSize < cfg.PageSize {
		add("page_size", "must be at least 1 and not exceed max_page_size")
	}
	if cfg.ShortLinkMinLength < 0 {
		add("shortlink_min_length", "must not be negative")
	}

	if cfg.JWTSecret == "" {
		if env == Production || env == CI {
			add("jwt_secret", "secret is required")
		}
	}

	if env == Production {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
		if cfg.ShortLinkSalt == insecureDefaults["shortlink_salt"] {
			add("shortlink_salt", "must be changed from the development default")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
