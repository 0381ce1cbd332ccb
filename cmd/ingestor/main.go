package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/postgres"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/config"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

// ingestor loads a route catalog into Postgres. With no argument the
// embedded Batangas City catalog is used; otherwise the named JSON file.
func main() {
	cfg, err := config.Load("jeepney-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	catalog, source := loadCatalog()
	log.Printf("jeepney ingestor: %d routes, %d landmarks from %s",
		len(catalog.Routes), len(catalog.Landmarks), source)

	// Refuse catalogs the planner would reject at startup.
	if _, err := network.New(catalog.Routes, catalog.Landmarks); err != nil {
		log.Fatalf("invalid catalog: %v", err)
	}
	if _, err := boarding.NewRules(catalog.BoardingZones, catalog.InvalidBoardings); err != nil {
		log.Fatalf("invalid boarding rules: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := ingest(ctx, postgres.NewNetworkRepo(db), catalog); err != nil {
		log.Fatalf("ingest: %v", err)
	}
	log.Println("ingestion complete")
}

func loadCatalog() (*seed.Catalog, string) {
	if len(os.Args) < 2 {
		c, err := seed.Batangas()
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		return c, "embedded seed"
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read catalog: %v", err)
	}
	c, err := seed.Parse(data)
	if err != nil {
		log.Fatalf("parse catalog: %v", err)
	}
	return c, os.Args[1]
}

func ingest(ctx context.Context, w ports.NetworkWriter, c *seed.Catalog) error {
	start := time.Now()
	if err := w.UpsertRoutes(ctx, c.Routes); err != nil {
		return err
	}
	log.Printf("  %d routes upserted", len(c.Routes))

	if err := w.UpsertLandmarks(ctx, c.Landmarks); err != nil {
		return err
	}
	log.Printf("  %d landmarks upserted", len(c.Landmarks))

	if err := w.ReplaceBoardingRules(ctx, c.BoardingZones, c.InvalidBoardings); err != nil {
		return err
	}
	log.Printf("  %d boarding zones, %d invalid boardings replaced (%s)",
		len(c.BoardingZones), len(c.InvalidBoardings), time.Since(start).Round(time.Millisecond))
	return nil
}
