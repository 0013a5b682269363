package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DEMO_MODE", "JWT_EXPIRY", "UPLOAD_MAX_BYTES", "KAFKA_BROKERS", "DATABASE_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := New()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DemoMode {
		t.Error("DemoMode should default to false")
	}
	if cfg.JWT.Expiry != 24*time.Hour {
		t.Errorf("JWT.Expiry = %v, want 24h", cfg.JWT.Expiry)
	}
	if cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Errorf("Upload.MaxBytes = %d", cfg.Upload.MaxBytes)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Kafka.Brokers = %v, want none", cfg.Kafka.Brokers)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPLOAD_MAX_BYTES", "not-a-number")

	cfg := New()

	if !cfg.DemoMode {
		t.Error("DemoMode should be true")
	}
	if cfg.JWT.Expiry != 90*time.Minute {
		t.Errorf("JWT.Expiry = %v", cfg.JWT.Expiry)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Errorf("invalid UPLOAD_MAX_BYTES should fall back to default, got %d", cfg.Upload.MaxBytes)
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "pub", Password: "secret", DBName: "publazer", SSLMode: "disable",
	}}
	want := "postgres://pub:secret@db:5432/publazer?sslmode=disable"
	if got := cfg.GetDatabaseURL(); got != want {
		t.Errorf("GetDatabaseURL() = %q, want %q", got, want)
	}

	cfg.Database.URL = "postgres://override"
	if got := cfg.GetDatabaseURL(); got != "postgres://override" {
		t.Errorf("DATABASE_URL should win, got %q", got)
	}
}
