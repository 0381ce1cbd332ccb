package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

// planField resolves a field of the candidate embedded in a PlanView.
func planField(t graphql.Output, get func(v usecases.PlanView) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			v, ok := p.Source.(usecases.PlanView)
			if !ok {
				return nil, nil
			}
			return get(v), nil
		},
	}
}

func optionalPoint(args map[string]interface{}, latKey, lonKey string) *domain.GeoPoint {
	lat, ok1 := args[latKey].(float64)
	lon, ok2 := args[lonKey].(float64)
	if !ok1 || !ok2 {
		return nil
	}
	return &domain.GeoPoint{Lat: lat, Lon: lon}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":                    &graphql.Field{Type: graphql.String},
			"name":                  &graphql.Field{Type: graphql.String},
			"kind":                  &graphql.Field{Type: graphql.String},
			"color":                 &graphql.Field{Type: graphql.String},
			"fare_range":            &graphql.Field{Type: graphql.String},
			"base_duration_minutes": &graphql.Field{Type: graphql.Int},
			"stop_count":            &graphql.Field{Type: graphql.Int},
			"operator":              &graphql.Field{Type: graphql.String},
			"frequency":             &graphql.Field{Type: graphql.String},
			"description":           &graphql.Field{Type: graphql.String},
			"stop_points":           &graphql.Field{Type: graphql.NewList(geoPointType)},
			"shaping_points":        &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	landmarkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Landmark",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	nearbyRouteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyRoute",
		Fields: graphql.Fields{
			"route": &graphql.Field{
				Type: routeType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if nr, ok := p.Source.(usecases.NearbyRoute); ok {
						return nr.Route, nil
					}
					return nil, nil
				},
			},
			"closest_point":   &graphql.Field{Type: geoPointType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"walk_minutes":    &graphql.Field{Type: graphql.Int},
			"recommendation":  &graphql.Field{Type: graphql.String},
		},
	})

	trafficType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TrafficCondition",
		Fields: graphql.Fields{
			"window":     &graphql.Field{Type: graphql.String},
			"multiplier": &graphql.Field{Type: graphql.Float},
			"level":      &graphql.Field{Type: graphql.String},
		},
	})

	walkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Walk",
		Fields: graphql.Fields{
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"time_minutes":    &graphql.Field{Type: graphql.Int},
		},
	})

	transferType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransferPoint",
		Fields: graphql.Fields{
			"landmark_name":        &graphql.Field{Type: graphql.String},
			"label":                &graphql.Field{Type: graphql.String},
			"location":             &graphql.Field{Type: geoPointType},
			"walk_distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	etaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ETA",
		Fields: graphql.Fields{
			"minutes":               &graphql.Field{Type: graphql.Int},
			"base_minutes":          &graphql.Field{Type: graphql.Int},
			"traffic_delay_minutes": &graphql.Field{Type: graphql.Int},
			"traffic_level":         &graphql.Field{Type: graphql.String},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Leg",
		Fields: graphql.Fields{
			"route_id":              &graphql.Field{Type: graphql.String},
			"route_name":            &graphql.Field{Type: graphql.String},
			"kind":                  &graphql.Field{Type: graphql.String},
			"color":                 &graphql.Field{Type: graphql.String},
			"fare":                  &graphql.Field{Type: graphql.String},
			"base_duration_minutes": &graphql.Field{Type: graphql.Int},
			"frequency":             &graphql.Field{Type: graphql.String},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plan",
		Fields: graphql.Fields{
			"rank": &graphql.Field{Type: graphql.Int},
			"legs": &graphql.Field{Type: graphql.NewList(legType)},
			"kind": planField(graphql.String, func(v usecases.PlanView) interface{} { return string(v.Kind) }),
			"start_walk": planField(walkType, func(v usecases.PlanView) interface{} {
				if v.StartWalk == nil {
					return nil
				}
				return v.StartWalk
			}),
			"end_walk": planField(walkType, func(v usecases.PlanView) interface{} {
				if v.EndWalk == nil {
					return nil
				}
				return v.EndWalk
			}),
			"transfer_points":    planField(graphql.NewList(transferType), func(v usecases.PlanView) interface{} { return v.TransferPoints }),
			"total_fare":         planField(graphql.Int, func(v usecases.PlanView) interface{} { return v.TotalFare }),
			"total_time_minutes": planField(graphql.Int, func(v usecases.PlanView) interface{} { return v.TotalTimeMinutes }),
			"eta":                planField(etaType, func(v usecases.PlanView) interface{} { return v.ETA }),
			"confidence":         planField(graphql.String, func(v usecases.PlanView) interface{} { return v.Confidence.String() }),
			"boarding_tier":      planField(graphql.String, func(v usecases.PlanView) interface{} { return v.BoardingTier }),
			"score":              planField(graphql.Float, func(v usecases.PlanView) interface{} { return v.Score }),
		},
	})

	endpointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Endpoint",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: geoPointType},
			"label":    &graphql.Field{Type: graphql.String},
			"source":   &graphql.Field{Type: graphql.String},
		},
	})

	planResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanResult",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"start":          &graphql.Field{Type: endpointType},
			"end":            &graphql.Field{Type: endpointType},
			"start_landmark": &graphql.Field{Type: graphql.String},
			"hour":           &graphql.Field{Type: graphql.Int},
			"weekday":        &graphql.Field{Type: graphql.String},
			"traffic":        &graphql.Field{Type: trafficType},
			"plans":          &graphql.Field{Type: graphql.NewList(planType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"routes": &graphql.Field{
				Type:        graphql.NewList(routeType),
				Description: "List jeepney routes, optionally filtered by a search term",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					return deps.Routes.List(q), nil
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Get a route by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.GetByID(p.Args["id"].(string))
				},
			},
			"landmarks": &graphql.Field{
				Type:        graphql.NewList(landmarkType),
				Description: "Search the landmark gazetteer",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					return deps.Routes.Landmarks(q), nil
				},
			},
			"nearestRoutes": &graphql.Field{
				Type:        graphql.NewList(nearbyRouteType),
				Description: "Routes closest to a location",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Routes.Nearest(domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)})
					if err != nil {
						return nil, err
					}
					return res.Routes, nil
				},
			},
			"traffic": &graphql.Field{
				Type:        trafficType,
				Description: "Traffic condition at an hour and weekday (Sunday = 0)",
				Args: graphql.FieldConfigArgument{
					"hour": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"day":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Traffic.Multiplier(p.Args["hour"].(int), time.Weekday(p.Args["day"].(int)))
				},
			},
			"plan": &graphql.Field{
				Type:        planResultType,
				Description: "Ranked trip plans between two points or place names",
				Args: graphql.FieldConfigArgument{
					"startLat":      &graphql.ArgumentConfig{Type: graphql.Float},
					"startLon":      &graphql.ArgumentConfig{Type: graphql.Float},
					"endLat":        &graphql.ArgumentConfig{Type: graphql.Float},
					"endLon":        &graphql.ArgumentConfig{Type: graphql.Float},
					"start":         &graphql.ArgumentConfig{Type: graphql.String},
					"end":           &graphql.ArgumentConfig{Type: graphql.String},
					"startLandmark": &graphql.ArgumentConfig{Type: graphql.String},
					"hour":          &graphql.ArgumentConfig{Type: graphql.Int},
					"day":           &graphql.ArgumentConfig{Type: graphql.Int},
					"discount":      &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := usecases.PlanQuery{
						Start: optionalPoint(p.Args, "startLat", "startLon"),
						End:   optionalPoint(p.Args, "endLat", "endLon"),
					}
					q.StartText, _ = p.Args["start"].(string)
					q.EndText, _ = p.Args["end"].(string)
					q.StartLandmark, _ = p.Args["startLandmark"].(string)
					q.Discount, _ = p.Args["discount"].(bool)
					if h, ok := p.Args["hour"].(int); ok {
						q.Hour = &h
					}
					if d, ok := p.Args["day"].(int); ok {
						wd := time.Weekday(d)
						q.Weekday = &wd
					}
					return deps.Plans.Plan(p.Context, q)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
