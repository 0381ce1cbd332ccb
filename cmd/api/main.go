package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/http"
	natsadapter "github.com/ALfish152/Jeep-Route-Finder/internal/adapters/nats"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/nominatim"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/osrm"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/postgres"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/valkey"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/planner"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/config"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/logging"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/telemetry"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

func main() {
	cfg, err := config.Load("jeepney-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPAddr,
			Exporter:    cfg.Telemetry.Exporter,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Route catalog: embedded seed or Postgres
	var (
		db   *postgres.DB
		repo ports.NetworkRepository
	)
	switch cfg.Network.Source {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN(), 4)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewNetworkRepo(db)
		go reportPoolStats(ctx, db)
	default:
		catalog, err := seed.Batangas()
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		repo = catalog
	}

	net, rules, err := usecases.LoadCatalog(ctx, repo)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	stats := net.Stats()
	slog.Info("route network loaded", "source", cfg.Network.Source, "routes", stats.Routes, "landmarks", stats.Landmarks, "transfers", stats.Transfers)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "jeepney:")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// External geocoder and road router
	var geocoder ports.Geocoder
	if cfg.Geocoder.BaseURL != "" {
		geocoder = nominatim.New(nominatim.Config{
			BaseURL:    cfg.Geocoder.BaseURL,
			CitySuffix: cfg.Geocoder.CitySuffix,
			UserAgent:  cfg.Geocoder.UserAgent,
			Timeout:    time.Duration(cfg.Geocoder.Timeout) * time.Second,
		})
	}
	var snapper ports.PathSnapper
	if cfg.Router.BaseURL != "" {
		snapper = osrm.New(cfg.Router.BaseURL, time.Duration(cfg.Router.Timeout)*time.Second)
	}

	// Use cases
	table := traffic.DefaultTable()
	opts := planner.DefaultOptions()
	opts.MaxResults = cfg.Planner.MaxResults
	opts.MaxStartWalkDirect = cfg.Planner.MaxStartWalkDirect
	opts.MaxEndWalkDirect = cfg.Planner.MaxEndWalkDirect
	opts.MaxTotalMinutes = cfg.Planner.MaxTotalMinutes
	opts.MaxLegs = cfg.Planner.MaxLegs

	geocodeSvc := usecases.NewGeocodeService(net, geocoder, cacheSvc, usecases.GeocodeOptions{
		Fallback:       domain.GeoPoint{Lat: cfg.Geocoder.FallbackLat, Lon: cfg.Geocoder.FallbackLon},
		CacheTTL:       cfg.Geocoder.CacheTTL,
		LandmarkRadius: cfg.Geocoder.LandmarkNear,
	}, logger.With("component", "geocode"))
	p := planner.New(net, rules, table, opts, logger.With("component", "planner"))

	deps := &http.Dependencies{
		Plans:     usecases.NewPlanService(p, net, geocodeSvc, publisher, logger.With("component", "plans")),
		Routes:    usecases.NewRouteService(net),
		Geocode:   geocodeSvc,
		Geometry:  usecases.NewGeometryService(net, snapper, cacheSvc, table, cfg.Router.CacheTTL, logger.With("component", "geometry")),
		Traffic:   table,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		RateLimit: cfg.Server.RateLimit,
		DocsPath:  http.DefaultDocsPath,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Batangas Jeepney Planner",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
