package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Evaluator.DefaultPersistence != 0.98 {
		t.Errorf("DefaultPersistence = %v, want 0.98", cfg.Evaluator.DefaultPersistence)
	}
	if cfg.Evaluator.MaxListLength != 10000 {
		t.Errorf("MaxListLength = %d, want 10000", cfg.Evaluator.MaxListLength)
	}
	if cfg.Kafka.Topics.ComparisonEvents != "comparison-events" {
		t.Errorf("ComparisonEvents topic = %q", cfg.Kafka.Topics.ComparisonEvents)
	}
	if !cfg.RPC.Enabled || cfg.RPC.Port != 9091 {
		t.Errorf("RPC = %+v, want enabled on 9091", cfg.RPC)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
evaluator:
  defaultPersistence: 0.9
  cacheEnabled: false
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Evaluator.DefaultPersistence != 0.9 {
		t.Errorf("DefaultPersistence = %v, want 0.9", cfg.Evaluator.DefaultPersistence)
	}
	if cfg.Evaluator.CacheEnabled {
		t.Error("CacheEnabled = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.Evaluator.MaxListLength != 10000 {
		t.Errorf("MaxListLength = %d, want 10000", cfg.Evaluator.MaxListLength)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REP_SERVER_PORT", "7070")
	t.Setenv("REP_POSTGRES_HOST", "db.internal")
	t.Setenv("REP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REP_RPC_PORT", "7071")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.RPC.Port != 7071 {
		t.Errorf("RPC.Port = %d, want 7071", cfg.RPC.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "rankeval",
		User:     "u",
		Password: "pw",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=u password=pw dbname=rankeval sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
