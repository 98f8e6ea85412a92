package main

import (
	"flag"
	"os"
	"strings"

	"garmin-etl/config"
	"garmin-etl/extract"
	"garmin-etl/pipeline"
	"garmin-etl/services"
	"garmin-etl/storage"
	"garmin-etl/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the pipeline config file")
	datasets := flag.String("datasets", "", "comma-separated dataset names to process (default: config list)")
	testConn := flag.Bool("test-connection", false, "verify database connectivity and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := utils.NewLogger(*verbose)
	logger.Info("=== Garmin ETL Pipeline starting ===")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	logger.Info("Config — driver: %s | strategy: %s | batch: %d | raw data: %s",
		cfg.Database.Driver, cfg.ETL.LoadStrategy, cfg.ETL.BatchSize, cfg.DataPaths.RawData)

	loader, err := storage.NewSQLWriter(cfg.Database.Driver, cfg.DSN(), cfg.Database.Schema, cfg.ETL.BatchSize, logger)
	if err != nil {
		logger.Error("Failed to connect to %s: %v", cfg.Database.Driver, err)
		os.Exit(1)
	}
	defer loader.Close()

	if *testConn {
		if !loader.TestConnection() {
			logger.Error("Database connection test failed")
			os.Exit(1)
		}
		logger.Info("Database connection test passed")
		return
	}

	p := pipeline.New(
		cfg,
		extract.NewAggregator(cfg.DataPaths.RawData, logger),
		services.NewTransformer(logger),
		loader,
		storage.NewCSVWriter(logger),
		storage.NewParquetWriter(logger),
		logger,
	)

	result, err := p.Run(splitDatasets(*datasets))
	if err != nil {
		logger.Error("Pipeline aborted: %v", err)
		os.Exit(1)
	}
	os.Exit(result.ExitCode())
}

func splitDatasets(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
