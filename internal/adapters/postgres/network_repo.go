package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// NetworkRepo implements ports.NetworkRepository and ports.NetworkWriter.
// Point lists are stored as jsonb arrays of {lat, lon}.
type NetworkRepo struct {
	db *DB
}

func NewNetworkRepo(db *DB) *NetworkRepo { return &NetworkRepo{db: db} }

const upsertRouteSQL = `
	INSERT INTO routes (id, name, kind, color, stop_points, shaping_points, fare_range,
	                    base_duration_minutes, stop_count, operator, frequency, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, kind = EXCLUDED.kind, color = EXCLUDED.color,
	    stop_points = EXCLUDED.stop_points, shaping_points = EXCLUDED.shaping_points,
	    fare_range = EXCLUDED.fare_range, base_duration_minutes = EXCLUDED.base_duration_minutes,
	    stop_count = EXCLUDED.stop_count, operator = EXCLUDED.operator,
	    frequency = EXCLUDED.frequency, description = EXCLUDED.description,
	    updated_at = NOW()
`

// UpsertRoutes writes all routes in one batch.
func (r *NetworkRepo) UpsertRoutes(ctx context.Context, routes []domain.Route) error {
	batch := &pgx.Batch{}
	for _, rt := range routes {
		shaping := rt.ShapingPoints
		if shaping == nil {
			shaping = []domain.GeoPoint{}
		}
		batch.Queue(upsertRouteSQL, rt.ID, rt.Name, string(rt.Kind), rt.Color, rt.StopPoints, shaping,
			rt.FareRange, rt.BaseDurationMinutes, rt.StopCount, rt.Operator, rt.Frequency, rt.Description)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, rt := range routes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert route %s: %w", rt.ID, err)
		}
	}
	return nil
}

// UpsertLandmarks writes all landmarks in one batch.
func (r *NetworkRepo) UpsertLandmarks(ctx context.Context, landmarks []domain.Landmark) error {
	batch := &pgx.Batch{}
	for _, lm := range landmarks {
		batch.Queue(`
			INSERT INTO landmarks (name, lat, lon)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET lat = EXCLUDED.lat, lon = EXCLUDED.lon
		`, lm.Name, lm.Location.Lat, lm.Location.Lon)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, lm := range landmarks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert landmark %q: %w", lm.Name, err)
		}
	}
	return nil
}

// ReplaceBoardingRules swaps the boarding tables in a single transaction.
func (r *NetworkRepo) ReplaceBoardingRules(ctx context.Context, zones []domain.BoardingZone, invalid []domain.InvalidBoarding) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM boarding_zones`); err != nil {
		return fmt.Errorf("clear boarding zones: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invalid_boardings`); err != nil {
		return fmt.Errorf("clear invalid boardings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, z := range zones {
		batch.Queue(`
			INSERT INTO boarding_zones (route_name, primary_landmarks, secondary_landmarks, restricted_landmarks)
			VALUES ($1, $2, $3, $4)
		`, z.RouteName, nonNil(z.Primary), nonNil(z.Secondary), nonNil(z.Restricted))
	}
	for _, ib := range invalid {
		batch.Queue(`
			INSERT INTO invalid_boardings (landmark, route_names) VALUES ($1, $2)
		`, ib.Landmark, nonNil(ib.RouteNames))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert boarding rules: %w", err)
	}

	return tx.Commit(ctx)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *NetworkRepo) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, kind, color, stop_points, shaping_points, fare_range,
		       base_duration_minutes, stop_count, operator, frequency, description
		FROM routes ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var (
			rt   domain.Route
			kind string
		)
		if err := rows.Scan(&rt.ID, &rt.Name, &kind, &rt.Color, &rt.StopPoints, &rt.ShapingPoints,
			&rt.FareRange, &rt.BaseDurationMinutes, &rt.StopCount, &rt.Operator, &rt.Frequency,
			&rt.Description); err != nil {
			return nil, err
		}
		rt.Kind = domain.RouteKind(kind)
		if rt.ShapingPoints == nil {
			rt.ShapingPoints = []domain.GeoPoint{}
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *NetworkRepo) ListLandmarks(ctx context.Context) ([]domain.Landmark, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT name, lat, lon FROM landmarks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Landmark
	for rows.Next() {
		var lm domain.Landmark
		if err := rows.Scan(&lm.Name, &lm.Location.Lat, &lm.Location.Lon); err != nil {
			return nil, err
		}
		out = append(out, lm)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) ListBoardingZones(ctx context.Context) ([]domain.BoardingZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT route_name, primary_landmarks, secondary_landmarks, restricted_landmarks
		FROM boarding_zones ORDER BY route_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BoardingZone
	for rows.Next() {
		var z domain.BoardingZone
		if err := rows.Scan(&z.RouteName, &z.Primary, &z.Secondary, &z.Restricted); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) ListInvalidBoardings(ctx context.Context) ([]domain.InvalidBoarding, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT landmark, route_names FROM invalid_boardings ORDER BY landmark`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InvalidBoarding
	for rows.Next() {
		var ib domain.InvalidBoarding
		if err := rows.Scan(&ib.Landmark, &ib.RouteNames); err != nil {
			return nil, err
		}
		out = append(out, ib)
	}
	return out, rows.Err()
}
