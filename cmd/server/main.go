package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/testdesk/backend/internal/api"
	"github.com/testdesk/backend/internal/config"
	"github.com/testdesk/backend/internal/engine"
	"github.com/testdesk/backend/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "dup-detector")

	// 1. Config
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		entry.WithError(err).Warn("Failed to read .env file")
	}

	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			entry.Fatalf("Failed to load config: %v", err)
		}
		cfg = fileCfg
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		entry.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	entry.Info("Starting duplicate detection API service")

	// 2. Storage
	store, err := storage.NewFileStorage(cfg.Storage.DataDir)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// 3. Engine (similarity, search index, LLM)
	eng, err := engine.NewEngine(cfg, entry.WithField("component", "engine"), store, nil, nil)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}

	// 4. Search Index (Memory)
	count, err := eng.LoadIndex()
	if err != nil {
		entry.Fatalf("Failed to load search index: %v", err)
	}
	if count > 0 {
		entry.Infof("Pre-loaded %d bugs into search index", count)
	}

	// 5. API Server
	server := api.NewServer(eng, entry.WithField("component", "api"))

	entry.Infof("Duplicate detection API ready on %s", cfg.Server.Addr)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}
