package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "./sporely.db" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Verify.CodeTTL != 10*time.Minute {
		t.Fatalf("code ttl = %v", cfg.Verify.CodeTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := []byte("server:\n  addr: \":9999\"\nstorage:\n  driver: memory\nlogging:\n  level: debug\n  development: true\n")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Development {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SPORELY_SERVER_ADDR", ":7777")
	t.Setenv("SPORELY_BLOB_DRIVER", "memory")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Blob.Driver != "memory" {
		t.Fatalf("blob driver = %q", cfg.Blob.Driver)
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestValidateRejectsBadDriver(t *testing.T) {
	t.Setenv("SPORELY_STORAGE_DRIVER", "cassandra")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRequiresS3Bucket(t *testing.T) {
	t.Setenv("SPORELY_BLOB_DRIVER", "s3")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error for missing bucket")
	}
}
