// Package config provides configuration loading for sporelyd.
//
// Settings come from a YAML file overridden by SPORELY_* environment
// variables, with hardcoded defaults for everything else.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete sporelyd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Blob    BlobConfig    `koanf:"blob"`
	Verify  VerifyConfig  `koanf:"verify"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig selects and parameterizes the persistent store.
type StorageConfig struct {
	Driver      string `koanf:"driver"` // memory|sqlite|postgres
	SQLitePath  string `koanf:"sqlite_path"`
	PostgresDSN string `koanf:"postgres_dsn"`
}

// BlobConfig selects and parameterizes the attachment store.
type BlobConfig struct {
	Driver      string `koanf:"driver"` // fs|s3|memory
	FSRoot      string `koanf:"fs_root"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3PathStyle bool   `koanf:"s3_path_style"`
}

// VerifyConfig holds verification code settings. Webhook URLs point at the
// delivery gateways; when unset, codes are written to the process log.
type VerifyConfig struct {
	CodeTTL         time.Duration `koanf:"code_ttl"`
	EmailFrom       string        `koanf:"email_from"`
	SMSSender       string        `koanf:"sms_sender"`
	EmailWebhookURL string        `koanf:"email_webhook_url"`
	SMSWebhookURL   string        `koanf:"sms_webhook_url"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `koanf:"level"` // debug|info|warn|error
	Development bool   `koanf:"development"`
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "./sporely.db"
	}
	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = "fs"
	}
	if cfg.Blob.FSRoot == "" {
		cfg.Blob.FSRoot = "./blobdata"
	}
	if cfg.Verify.CodeTTL == 0 {
		cfg.Verify.CodeTTL = 10 * time.Minute
	}
	if cfg.Verify.EmailFrom == "" {
		cfg.Verify.EmailFrom = "no-reply@sporely.local"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks for unusable combinations after defaults are applied.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("blob.s3_bucket required when blob driver is s3")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Verify.CodeTTL < 0 {
		return fmt.Errorf("verify.code_ttl must be positive")
	}
	return nil
}
