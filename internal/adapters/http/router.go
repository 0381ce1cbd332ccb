package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
)

const (
	requestTimeout   = 15 * time.Second
	defaultRateLimit = 120
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	rate := deps.RateLimit
	if rate <= 0 {
		rate = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Weak ETags for conditional GETs on catalog data
	app.Use(etag.New(etag.Config{Weak: true}))

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, internal checks only)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1 := app.Group("/v1")
	v1.Get("/plans", with(PlanHandler(deps)))
	v1.Get("/routes", with(ListRoutesHandler(deps)))
	v1.Get("/routes/nearest", with(NearestRoutesHandler(deps)))
	v1.Get("/routes/:id", with(GetRouteHandler(deps)))
	v1.Get("/routes/:id/geometry", with(RouteGeometryHandler(deps)))
	v1.Get("/landmarks", with(LandmarksHandler(deps)))
	v1.Get("/geocode", with(GeocodeHandler(deps)))
	v1.Get("/reverse-geocode", with(ReverseGeocodeHandler(deps)))
	v1.Get("/traffic", with(TrafficHandler(deps)))
	v1.Get("/network/stats", with(NetworkStatsHandler(deps)))

	// GraphQL
	app.Post("/graphql", with(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Plans, deps.NATS)))

	app.Use(func(c *fiber.Ctx) error {
		return errNotFound(c, "no route for "+c.Method()+" "+c.Path())
	})
}
