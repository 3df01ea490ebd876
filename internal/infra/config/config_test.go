package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("OUTBOX_POLL_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("Env = %q, want %q", cfg.Env, "dev")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.StorageMode != "memory" {
		t.Fatalf("StorageMode = %q, want %q", cfg.StorageMode, "memory")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("SessionTTL = %v, want %v", cfg.SessionTTL, 24*time.Hour)
	}
	if cfg.S3PublicEndpoint != cfg.S3Endpoint {
		t.Fatalf("S3PublicEndpoint = %q, want fallback to %q", cfg.S3PublicEndpoint, cfg.S3Endpoint)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CORS_ORIGINS", "https://stays.example.com, https://admin.example.com")
	t.Setenv("SESSION_TTL", "72h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("KafkaBrokers = %v, want 2 brokers", cfg.KafkaBrokers)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.SessionTTL != 72*time.Hour {
		t.Fatalf("SessionTTL = %v, want 72h", cfg.SessionTTL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with mongo mode and no URI should fail")
	}

	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with invalid duration should fail")
	}

	t.Setenv("SESSION_TTL", "")
	t.Setenv("S3_USE_SSL", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with invalid boolean should fail")
	}
}
