package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/commercelens/backend/internal/infrastructure/config"
	"github.com/commercelens/backend/internal/infrastructure/learning"
	"github.com/commercelens/backend/internal/infrastructure/logger"
)

func main() {
	var (
		dbPath   string
		logLevel string
	)

	flag.StringVar(&dbPath, "db", "", "Path to the learning database (default: from config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal("Failed to load configuration", zap.Error(err))
		}
		dbPath = cfg.Learning.DBPath
	}

	db, err := learning.NewDatabase(dbPath)
	if err != nil {
		log.Fatal("Failed to open learning database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migration complete", zap.String("db", dbPath))
}
