// Command migrate runs schema operations against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"devcircle/internal/config"
	"devcircle/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|down|auto|version>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(db, database.DirectionUp); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	case "down":
		if err := database.RunMigrations(db, database.DirectionDown); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "version":
		version, dirty, ok, err := database.MigrationVersion(db)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		if !ok {
			log.Println("no migrations applied")
			return nil
		}
		log.Printf("version=%d dirty=%t", version, dirty)
	default:
		return usage()
	}

	return nil
}
