package http

import (
	"github.com/nats-io/nats.go"

	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/postgres"
	"github.com/ALfish152/Jeep-Route-Finder/internal/adapters/valkey"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. NATS, DB and
// Cache are optional; a nil value means the backend is not configured.
type Dependencies struct {
	Plans    *usecases.PlanService
	Routes   *usecases.RouteService
	Geocode  *usecases.GeocodeService
	Geometry *usecases.GeometryService
	Traffic  *traffic.Table
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// RateLimit is requests per minute per IP; zero uses the default.
	RateLimit int
	// DocsPath is the OpenAPI document served at /docs/openapi.yaml.
	DocsPath string
}
