package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control header on successful GET
// responses. The route catalog never changes while the process runs, so
// catalog reads are cacheable for long; plans depend on the clock and are
// not.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != 200 {
			return err
		}
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		var ttl string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache"
		case path == "/metrics":
			ttl = "no-cache"
		case strings.HasPrefix(path, "/v1/plans"):
			ttl = "private, no-store"
		case strings.HasSuffix(path, "/geometry"):
			ttl = "public, max-age=300" // ETA depends on the hour
		case strings.HasPrefix(path, "/v1/routes/nearest"):
			ttl = "public, max-age=300"
		case strings.HasPrefix(path, "/v1/routes"),
			strings.HasPrefix(path, "/v1/landmarks"),
			path == "/v1/network/stats":
			ttl = "public, max-age=3600"
		case strings.HasPrefix(path, "/v1/geocode"),
			strings.HasPrefix(path, "/v1/reverse-geocode"):
			ttl = "public, max-age=86400"
		case strings.HasPrefix(path, "/v1/traffic"):
			ttl = "public, max-age=600"
		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
