package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-feedback-store/pkg/config"
	"github.com/noah-isme/sma-feedback-store/pkg/database"
	"github.com/noah-isme/sma-feedback-store/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var migrationDir string
	flag.StringVar(&migrationDir, "path", cfg.Migrations.Dir, "Path to migration files")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	m, err := migrate.New("file://"+migrationDir, database.URL(cfg.Database))
	if err != nil {
		logr.Fatal("migration failed to initialize", zap.String("path", migrationDir), zap.Error(err))
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("up failed", zap.Error(err))
		}
		logr.Info("migrated up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("down failed", zap.Error(err))
		}
		logr.Info("migrated down")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logr.Info("no migrations applied")
			return
		}
		if err != nil {
			logr.Fatal("version failed", zap.Error(err))
		}
		logr.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		if len(args) < 2 {
			logr.Fatal("force requires version argument")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			logr.Fatal("invalid version", zap.String("version", args[1]), zap.Error(err))
		}
		if err := m.Force(v); err != nil {
			logr.Fatal("force failed", zap.Error(err))
		}
		logr.Info("forced schema version", zap.Int("version", v))
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
