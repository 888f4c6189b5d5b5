package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"graphite/backend/internal/demo"
	"graphite/backend/internal/graph"
	"graphite/backend/internal/ingest"
	"graphite/backend/pkg/config"
	"graphite/backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	reset := flag.Bool("reset", false, "Delete every node and relationship before seeding")
	withDemo := flag.Bool("demo", true, "Seed the bundled demo dataset")
	roster := flag.String("roster", "", "Roster file (.json or .yaml) to ingest")
	eventID := flag.String("event", "", "Event to ingest the roster into")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...", zap.String("uri", cfg.Neo4jURI))

	if *roster != "" && *eventID == "" {
		log.Fatal("--event is required with --roster")
	}

	ctx := context.Background()
	driver, err := graph.NewDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	defer repo.Close(context.Background())

	if *reset {
		if err := repo.Purge(ctx); err != nil {
			log.Fatal("Failed to reset database", zap.Error(err))
		}
	}

	// Create constraints
	log.Info("Creating constraints...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to create constraints", zap.Error(err))
	}

	if *withDemo {
		if err := demo.Seed(ctx, repo); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	if *roster != "" {
		records, err := readRoster(*roster)
		if err != nil {
			log.Fatal("Failed to read roster", zap.Error(err))
		}
		result, err := ingest.NewBuilder(repo, cfg.AutoConnectScope).BuildGraph(ctx, *eventID, records)
		if err != nil {
			log.Fatal("Failed to ingest roster", zap.Error(err))
		}
		log.Info("Roster ingested",
			zap.String("event_id", result.EventID),
			zap.Int("added", result.Added),
			zap.Int("skipped", result.Skipped),
			zap.Int("connections_created", result.ConnectionsCreated),
		)
	}

	snap, err := repo.Snapshot(ctx)
	if err != nil {
		log.Fatal("Failed to verify seeded data", zap.Error(err))
	}
	log.Info("Seeding completed successfully!",
		zap.Int("events", len(snap.Events)),
		zap.Int("people", len(snap.People)),
		zap.Int("companies", len(snap.Companies)),
		zap.Int("connections", len(snap.Acquaintances)),
	)
}

func readRoster(path string) ([]ingest.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records := []ingest.Record{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &records)
	} else {
		err = yaml.Unmarshal(raw, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}
