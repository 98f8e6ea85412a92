package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
database:
  driver: postgres
  host: db.example.net
  port: "5432"
  user: garmin
  password: secret
  database: garmin_db
  sslmode: require
  schema: garmin
data_paths:
  raw_data: ./testdata/raw
tables:
  running_data: running_data
  sleep_data: sleep_data
dataset_patterns:
  running_data: "**/DI-Connect-Fitness/*summarizedActivities*.json"
  sleep_data: "**/DI-Connect-Wellness/*sleepData.json"
etl_settings:
  load_strategy: replace
  batch_size: 500
  datasets_to_process:
    - running_data
    - sleep_data
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Host != "db.example.net" {
		t.Errorf("Host: got %q", cfg.Database.Host)
	}
	if cfg.ETL.BatchSize != 500 {
		t.Errorf("BatchSize: got %d, want 500", cfg.ETL.BatchSize)
	}
	if len(cfg.ETL.Datasets) != 2 {
		t.Errorf("Datasets: got %d, want 2", len(cfg.ETL.Datasets))
	}

	table, ok := cfg.Table("sleep_data")
	if !ok || table != "sleep_data" {
		t.Errorf("Table(sleep_data): got %q, %v", table, ok)
	}
	if _, ok := cfg.Pattern("atl_data"); ok {
		t.Error("Pattern(atl_data) should be missing")
	}
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "from-env")
	t.Setenv("POSTGRES_HOST", "env-host")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("Password overlay: got %q", cfg.Database.Password)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("Host overlay: got %q", cfg.Database.Host)
	}
}

func TestLoadConfigRejectsBadStrategy(t *testing.T) {
	if _, err := Load(writeConfig(t, `
database:
  driver: postgres
data_paths:
  raw_data: ./raw
etl_settings:
  load_strategy: upsert
`)); err == nil {
		t.Error("expected error for unsupported load strategy")
	}
}

func TestLoadConfigRejectsBadDriver(t *testing.T) {
	if _, err := Load(writeConfig(t, `
database:
  driver: oracle
data_paths:
  raw_data: ./raw
`)); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "host=db.example.net port=5432 user=garmin password=secret dbname=garmin_db sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}

	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = "./garmin.db"
	if got := cfg.DSN(); got != "./garmin.db" {
		t.Errorf("sqlite DSN: got %q", got)
	}
}
