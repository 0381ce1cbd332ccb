package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	geojson "github.com/paulmach/go.geojson"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
)

// PlanHandler returns ranked trip plans between two points.
//
// Each endpoint is either start_lat/start_lon (end_lat/end_lon) or free text
// in start (end). Optional: start_landmark, hour (0-23), day, discount.
func PlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := queryPoint(c, "start_lat", "start_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		end, err := queryPoint(c, "end_lat", "end_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		hour, err := queryHour(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		day, err := queryDay(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if len(c.Query("start")) > 200 || len(c.Query("end")) > 200 {
			return errBadRequest(c, "place names are limited to 200 characters")
		}

		res, err := deps.Plans.Plan(c.UserContext(), usecases.PlanQuery{
			Start:         start,
			End:           end,
			StartText:     c.Query("start"),
			EndText:       c.Query("end"),
			StartLandmark: c.Query("start_landmark"),
			Hour:          hour,
			Weekday:       day,
			Discount:      c.QueryBool("discount", false),
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// ListRoutesHandler returns the route catalog, optionally filtered by ?q=.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		return c.JSON(paginate(c, deps.Routes.List(q)))
	}
}

// GetRouteHandler returns a single route by ID.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Routes.GetByID(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(r)
	}
}

// nearestRouteView flattens a nearby route for JSON output.
type nearestRouteView struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Kind domain.RouteKind `json:"kind"`
	usecases.NearbyRoute
}

// NearestRoutesHandler returns up to five routes closest to ?lat=&lon=,
// widening the search radius until something is found.
func NearestRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if p == nil {
			return errBadRequest(c, "lat and lon are required")
		}

		res, err := deps.Routes.Nearest(*p)
		if err != nil {
			return errFromDomain(c, err)
		}

		routes := make([]nearestRouteView, len(res.Routes))
		for i, nr := range res.Routes {
			routes[i] = nearestRouteView{ID: nr.Route.ID, Name: nr.Route.Name, Kind: nr.Route.Kind, NearbyRoute: nr}
		}
		return c.JSON(fiber.Map{
			"radius_meters": res.RadiusMeters,
			"routes":        routes,
		})
	}
}

// RouteGeometryHandler returns a route's road-snapped geometry with a
// traffic-adjusted ETA. ?format=geojson returns the bare GeoJSON feature.
func RouteGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hour, err := queryHour(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		day, err := queryDay(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		h, d := clock(hour, day)

		g, err := deps.Geometry.RouteGeometry(c.UserContext(), c.Params("id"), h, d)
		if err != nil {
			return errFromDomain(c, err)
		}

		if c.Query("format") == "geojson" {
			data, err := g.Feature.MarshalJSON()
			if err != nil {
				return errInternal(c, "encode geojson")
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		}
		return c.JSON(g)
	}
}

// LandmarksHandler returns the gazetteer, optionally filtered by ?q=.
// ?format=geojson returns every match as a point FeatureCollection.
func LandmarksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		landmarks := deps.Routes.Landmarks(q)

		if c.Query("format") == "geojson" {
			fc := geojson.NewFeatureCollection()
			for _, l := range landmarks {
				fc.AddFeature(geospatial.PointFeature(l.Location, map[string]any{"name": l.Name}))
			}
			data, err := fc.MarshalJSON()
			if err != nil {
				return errInternal(c, "encode geojson")
			}
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.Send(data)
		}
		return c.JSON(paginate(c, landmarks))
	}
}

// GeocodeHandler resolves ?q= to a coordinate. The gazetteer is consulted
// before the external geocoder; on failure the city centroid is returned.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		res, err := deps.Geocode.Geocode(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// ReverseGeocodeHandler names the place at ?lat=&lon=.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if p == nil {
			return errBadRequest(c, "lat and lon are required")
		}

		name, err := deps.Geocode.ReverseGeocode(c.UserContext(), *p)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"location": p,
			"name":     name,
		})
	}
}

// TrafficHandler returns the traffic condition at ?hour=&day= (default now)
// and the full window table.
func TrafficHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hour, err := queryHour(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		day, err := queryDay(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		h, d := clock(hour, day)

		cond, err := deps.Traffic.Multiplier(h, d)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"hour":      h,
			"weekday":   d.String(),
			"condition": cond,
			"windows":   deps.Traffic.Windows(),
		})
	}
}

// NetworkStatsHandler returns catalog counts.
func NetworkStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Routes.Stats())
	}
}
