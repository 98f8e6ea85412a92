package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds connection settings for the load target. Driver is
// "postgres" or "sqlite"; Path is only used by the sqlite driver.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	Schema   string `yaml:"schema"`
	Path     string `yaml:"path"`
}

// DataPaths locates the raw export tree and optional snapshot outputs.
type DataPaths struct {
	RawData    string `yaml:"raw_data"`
	CSVDir     string `yaml:"csv_snapshots"`
	ParquetDir string `yaml:"parquet_snapshots"`
}

// ETLSettings controls the load behaviour of a run.
type ETLSettings struct {
	LoadStrategy string   `yaml:"load_strategy"` // replace | append | fail
	BatchSize    int      `yaml:"batch_size"`
	Datasets     []string `yaml:"datasets_to_process"`
}

// Config is the full pipeline configuration, loaded from YAML with
// credentials optionally overlaid from the environment.
type Config struct {
	Database        DatabaseConfig    `yaml:"database"`
	DataPaths       DataPaths         `yaml:"data_paths"`
	Tables          map[string]string `yaml:"tables"`
	DatasetPatterns map[string]string `yaml:"dataset_patterns"`
	ETL             ETLSettings       `yaml:"etl_settings"`
}

// Load reads the YAML config file, overlays database credentials from the
// environment (a .env file is honoured when present), and validates the
// result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "require"
	}
	if c.ETL.LoadStrategy == "" {
		c.ETL.LoadStrategy = "replace"
	}
	if c.ETL.BatchSize <= 0 {
		c.ETL.BatchSize = 1000
	}
}

func (c *Config) applyEnv() {
	c.Database.Host = getEnv("POSTGRES_HOST", c.Database.Host)
	c.Database.Port = getEnv("POSTGRES_PORT", c.Database.Port)
	c.Database.User = getEnv("POSTGRES_USER", c.Database.User)
	c.Database.Password = getEnv("POSTGRES_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("POSTGRES_DB", c.Database.Database)
	c.Database.SSLMode = getEnv("POSTGRES_SSLMODE", c.Database.SSLMode)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.ETL.LoadStrategy {
	case "replace", "append", "fail":
	default:
		return fmt.Errorf("config: unsupported load strategy %q", c.ETL.LoadStrategy)
	}
	if c.DataPaths.RawData == "" {
		return fmt.Errorf("config: data_paths.raw_data is required")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.Path
	}
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Database +
		" sslmode=" + c.Database.SSLMode
}

// Table returns the target table configured for a dataset.
func (c *Config) Table(dataset string) (string, bool) {
	t, ok := c.Tables[dataset]
	return t, ok
}

// Pattern returns the file glob configured for a dataset.
func (c *Config) Pattern(dataset string) (string, bool) {
	p, ok := c.DatasetPatterns[dataset]
	return p, ok
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
