package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/ALfish152/Jeep-Route-Finder/internal/adapters/nats"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/osrm"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/postgres"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/valkey"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/config"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/logging"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
	"github.com/ALfish152/Jeep-Route-Finder/internal/workflows"
)

func main() {
	warm := flag.Bool("warm", false, "start a full geometry refresh on startup")
	flag.Parse()

	cfg, err := config.Load("jeepney-snapper")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	net, err := loadNetwork(ctx, cfg)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	// Snapped geometry is only useful once it is cached for the API.
	cache, err := valkey.New(cfg.Valkey.Addr, "jeepney:")
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	snapper := osrm.New(cfg.Router.BaseURL, time.Duration(cfg.Router.Timeout)*time.Second)
	geometry := usecases.NewGeometryService(net, snapper, cache, traffic.DefaultTable(), cfg.Router.CacheTTL, logger.With("component", "geometry"))

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.WarmGeometryWorkflow)
	w.RegisterActivity(&workflows.GeometryActivities{
		Geometry: geometry,
		Logger:   logger.With("component", "activities"),
	})

	if *warm {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "warm-geometry-" + time.Now().UTC().Format("20060102T150405"),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.WarmGeometryWorkflow, workflows.WarmGeometryInput{Refresh: true})
		if err != nil {
			log.Fatalf("start warm workflow: %v", err)
		}
		slog.Info("geometry refresh started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	}

	// Warm the routes of freshly computed plans as they arrive.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, plan-driven warming disabled", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribePlanComputed(ctx, "geometry-warmer", func(ctx context.Context, ev *domain.PlanComputedEvent) error {
			return warmPlanRoutes(ctx, net, geometry, ev)
		})
		if err != nil {
			slog.Warn("plan subscription failed", "error", err)
		}
	}

	slog.Info("snapper worker started", "task_queue", cfg.Temporal.TaskQueue, "routes", net.Stats().Routes)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// warmPlanRoutes snaps the routes of a plan's best itinerary. Cached routes
// return immediately.
func warmPlanRoutes(ctx context.Context, net *network.Network, geometry *usecases.GeometryService, ev *domain.PlanComputedEvent) error {
	for _, name := range ev.BestRoutes {
		r, err := net.RouteByName(name)
		if err != nil {
			slog.Warn("plan event names unknown route", "plan_id", ev.ID, "route", name)
			continue
		}
		if _, err := geometry.Snap(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func loadNetwork(ctx context.Context, cfg *config.Config) (*network.Network, error) {
	var repo ports.NetworkRepository
	if cfg.Network.Source == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		repo = postgres.NewNetworkRepo(db)
	} else {
		catalog, err := seed.Batangas()
		if err != nil {
			return nil, err
		}
		repo = catalog
	}
	net, _, err := usecases.LoadCatalog(ctx, repo)
	return net, err
}
