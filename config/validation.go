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

// requirement is a single per-environment check.
type requirement struct {
	field string
	value func(*Config) string
}

var (
	common = []requirement{
		{"SERVER_PORT", func(c *Config) string { return c.ServerPort }},
		{"DB_DRIVER", func(c *Config) string { return c.DBDriver }},
		{"STORAGE_DRIVER", func(c *Config) string { return c.StorageDriver }},
	}

	requirements = map[Environment][]requirement{
		Production: {
			{"JWT_SECRET", func(c *Config) string { return c.JWTSecret }},
			{"DB_PASSWORD", func(c *Config) string { return c.DBPassword }},
		},
		CI: {
			{"JWT_SECRET", func(c *Config) string { return c.JWTSecret }},
		},
	}
)

// ValidateConfig checks the configuration against the requirements of its environment.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	checks := append([]requirement{}, common...)
	checks = append(checks, requirements[cfg.Environment]...)
	for _, r := range checks {
		if strings.TrimSpace(r.value(cfg)) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "is required"})
		}
	}

	switch cfg.DBDriver {
	case "postgres":
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"})
	}

	switch cfg.StorageDriver {
	case "local":
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "is required for s3 storage"})
		}
	case "minio":
		if cfg.MinIOEndpoint == "" {
			errs = append(errs, ValidationError{Field: "MINIO_ENDPOINT", Message: "is required for minio storage"})
		}
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_DRIVER", Message: "must be local, s3 or minio"})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{Field: "TOKEN_TTL", Message: "must be positive"})
	}

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
