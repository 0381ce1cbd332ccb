package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/ALfish152/Jeep-Route-Finder/internal/adapters/http"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/planner"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

// ---- Mock snapper ----

type mockSnapper struct {
	snapFn func(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error)
}

func (m *mockSnapper) SnapPath(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error) {
	if m.snapFn != nil {
		return m.snapFn(ctx, pts)
	}
	return nil, context.DeadlineExceeded
}

// ---- Test helpers ----

var centroid = domain.GeoPoint{Lat: 13.7565, Lon: 121.0583}

func makeDeps(t *testing.T) *handler.Dependencies {
	t.Helper()
	c, err := seed.Batangas()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	net, rules, err := usecases.LoadCatalog(context.Background(), c)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	table := traffic.DefaultTable()
	geocode := usecases.NewGeocodeService(net, nil, nil, usecases.GeocodeOptions{Fallback: centroid}, nil)
	p := planner.New(net, rules, table, planner.DefaultOptions(), nil)

	return &handler.Dependencies{
		Plans:    usecases.NewPlanService(p, net, nil, nil, nil),
		Routes:   usecases.NewRouteService(net),
		Geocode:  geocode,
		Geometry: usecases.NewGeometryService(net, &mockSnapper{}, nil, table, 60, nil),
		Traffic:  table,
		DocsPath: "../../../api/openapi.yaml",
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, b
}

func decode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func expectError(t *testing.T, app *fiber.App, target string, status int, code string) {
	t.Helper()
	got, body := get(t, app, target)
	if got != status {
		t.Fatalf("%s: expected %d, got %d (%s)", target, status, got, body)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != code || apiErr.Status != status {
		t.Errorf("%s: unexpected error body %+v", target, apiErr)
	}
	if apiErr.RequestID == "" {
		t.Errorf("%s: expected a request id", target)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/health")
	if status != 200 || !strings.Contains(string(body), `"healthy"`) {
		t.Fatalf("unexpected health response %d %s", status, body)
	}
}

func TestReady_WithoutBackends(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/ready")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, body, &res)
	if res.Checks["network"] != "ok" || res.Checks["database"] != "not configured" {
		t.Errorf("unexpected checks %+v", res.Checks)
	}
}

// ---- Plans ----

func TestPlans_ByPlaceName(t *testing.T) {
	app := setupApp(makeDeps(t))
	q := url.Values{}
	q.Set("start", "Batangas City Grand Terminal")
	q.Set("end", "BatStateU-Alangilan")
	q.Set("hour", "3")
	q.Set("day", "wednesday")

	status, body := get(t, app, "/v1/plans?"+q.Encode())
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res struct {
		ID      string `json:"id"`
		Weekday string `json:"weekday"`
		Traffic struct {
			Level string `json:"level"`
		} `json:"traffic"`
		Plans []struct {
			Rank int    `json:"rank"`
			Kind string `json:"kind"`
			Legs []struct {
				RouteName string `json:"route_name"`
			} `json:"legs"`
		} `json:"plans"`
	}
	decode(t, body, &res)
	if res.ID == "" || res.Weekday != "Wednesday" || res.Traffic.Level != "low" {
		t.Errorf("unexpected result header %+v", res)
	}
	if len(res.Plans) == 0 {
		t.Fatal("expected at least one plan")
	}
	if res.Plans[0].Rank != 1 || len(res.Plans[0].Legs) == 0 {
		t.Errorf("unexpected first plan %+v", res.Plans[0])
	}
}

func TestPlans_NoCandidatesIsEmptyList(t *testing.T) {
	app := setupApp(makeDeps(t))
	// Two points far outside the network.
	status, body := get(t, app, "/v1/plans?start_lat=14.5&start_lon=122.0&end_lat=14.6&end_lon=122.1&hour=10&day=1")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"plans":[]`) {
		t.Errorf("expected an empty plans array, got %s", body)
	}
}

func TestPlans_BadInput(t *testing.T) {
	app := setupApp(makeDeps(t))
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"missing end", "/v1/plans?start=Lawas", 400, "bad_request"},
		{"bad coordinate", "/v1/plans?start_lat=200&start_lon=121&end=Lawas", 400, "bad_request"},
		{"half coordinate", "/v1/plans?start_lat=13.7&end=Lawas", 400, "bad_request"},
		{"hour out of range", "/v1/plans?start=Lawas&end=Diversion&hour=24", 400, "bad_request"},
		{"hour not a number", "/v1/plans?start=Lawas&end=Diversion&hour=noon", 400, "bad_request"},
		{"bad day", "/v1/plans?start=Lawas&end=Diversion&day=someday", 400, "bad_request"},
		{"unknown place", "/v1/plans?start=Atlantis&end=Lawas", 404, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, app, tt.target, tt.status, tt.code)
		})
	}
}

// ---- Routes ----

func TestListRoutes_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/routes?offset=3&limit=3", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res struct {
		Data       []domain.Route     `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Pagination.Total != 10 || len(res.Data) != 3 || res.Pagination.Offset != 3 {
		t.Errorf("unexpected page %+v with %d routes", res.Pagination, len(res.Data))
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected prev and next links, got %q", link)
	}
	if resp.Header.Get("Cache-Control") != "public, max-age=3600" {
		t.Errorf("unexpected cache control %q", resp.Header.Get("Cache-Control"))
	}
}

func TestListRoutes_Search(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/routes?q=balagtas")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Data []domain.Route `json:"data"`
	}
	decode(t, body, &res)
	if len(res.Data) != 1 || res.Data[0].ID != "route_002" {
		t.Errorf("unexpected search result %+v", res.Data)
	}
}

func TestGetRoute(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/routes/route_003")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var r domain.Route
	decode(t, body, &r)
	if r.Name != "Batangas - Sta. Clara/Pier" || len(r.StopPoints) < 2 {
		t.Errorf("unexpected route %+v", r)
	}

	expectError(t, app, "/v1/routes/route_999", 404, "not_found")
}

func TestNearestRoutes(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/routes/nearest?lat=13.790637338793799&lon=121.06163057927537")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res struct {
		RadiusMeters float64 `json:"radius_meters"`
		Routes       []struct {
			ID             string `json:"id"`
			Recommendation string `json:"recommendation"`
		} `json:"routes"`
	}
	decode(t, body, &res)
	if res.RadiusMeters != 100 || len(res.Routes) == 0 || res.Routes[0].ID == "" {
		t.Errorf("unexpected nearest result %+v", res)
	}

	expectError(t, app, "/v1/routes/nearest", 400, "bad_request")
	expectError(t, app, "/v1/routes/nearest?lat=95&lon=121", 400, "bad_request")
}

func TestRouteGeometry_FallsBackToRawPath(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/routes/route_001/geometry?hour=8&day=1")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var g struct {
		Snapped bool       `json:"snapped"`
		ETA     domain.ETA `json:"eta"`
		Feature struct {
			Type string `json:"type"`
		} `json:"feature"`
	}
	decode(t, body, &g)
	if g.Snapped || g.Feature.Type != "Feature" || g.ETA.TrafficLevel != "high" {
		t.Errorf("unexpected geometry %+v", g)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/routes/route_001/geometry?format=geojson&hour=3", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}

	expectError(t, app, "/v1/routes/nope/geometry", 404, "not_found")
}

func TestLandmarks(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/landmarks?q=sm%20city")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Data []domain.Landmark `json:"data"`
	}
	decode(t, body, &res)
	if len(res.Data) == 0 || res.Data[0].Name != "SM City Batangas" {
		t.Errorf("unexpected landmarks %+v", res.Data)
	}
}

func TestLandmarks_GeoJSON(t *testing.T) {
	app := setupApp(makeDeps(t))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/landmarks?q=batstateu&format=geojson", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}
	// GeoJSON positions are [lon, lat]
	if c := fc.Features[0].Geometry.Coordinates; len(c) != 2 || c[0] < 121 || c[1] > 14 {
		t.Errorf("unexpected coordinates %v", c)
	}
}

// ---- Geocoding ----

func TestGeocode(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/geocode?q=SM%20City%20Batangas")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res domain.GeocodeResult
	decode(t, body, &res)
	if res.Source != usecases.SourceLandmark {
		t.Errorf("expected gazetteer hit, got %+v", res)
	}

	status, body = get(t, app, "/v1/geocode?q=Nowhere%20Street")
	decode(t, body, &res)
	if status != 200 || res.Source != usecases.SourceFallback || res.Location != centroid {
		t.Errorf("expected centroid fallback, got %d %+v", status, res)
	}

	expectError(t, app, "/v1/geocode", 400, "bad_request")
}

func TestReverseGeocode(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/reverse-geocode?lat=13.74&lon=121.03")
	if status != 200 || !strings.Contains(string(body), `"13.74000, 121.03000"`) {
		t.Errorf("unexpected reverse result %d %s", status, body)
	}
	expectError(t, app, "/v1/reverse-geocode?lat=13.74", 400, "bad_request")
}

// ---- Traffic & stats ----

func TestTraffic(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/traffic?hour=8&day=mon")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Weekday   string            `json:"weekday"`
		Condition traffic.Condition `json:"condition"`
		Windows   []traffic.Window  `json:"windows"`
	}
	decode(t, body, &res)
	if res.Condition.Window != "morning_rush" || res.Condition.Multiplier != 1.8 || res.Weekday != "Monday" {
		t.Errorf("unexpected condition %+v", res)
	}
	if len(res.Windows) != 4 {
		t.Errorf("expected 4 windows, got %d", len(res.Windows))
	}

	expectError(t, app, "/v1/traffic?hour=-1&day=1", 400, "bad_request")
}

func TestNetworkStats(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/v1/network/stats")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Routes int `json:"routes"`
	}
	decode(t, body, &res)
	if res.Routes != 10 {
		t.Errorf("expected 10 routes, got %d", res.Routes)
	}
}

// ---- Middleware ----

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps(t))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/network/stats", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	tag := resp.Header.Get("ETag")
	if !strings.HasPrefix(tag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", tag)
	}

	req := httptest.NewRequest("GET", "/v1/network/stats", nil)
	req.Header.Set("If-None-Match", tag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(makeDeps(t))
	expectError(t, app, "/v1/nothing-here", 404, "not_found")
}

func TestDocs(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, body := get(t, app, "/docs/openapi.yaml")
	if status != 200 || !strings.Contains(string(body), "Batangas Jeepney Planner API") {
		t.Errorf("unexpected docs response %d", status)
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(t))
	status, _ := get(t, app, "/ws")
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", status)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"0", time.Sunday, true},
		{"6", time.Saturday, true},
		{"Monday", time.Monday, true},
		{"tue", time.Tuesday, true},
		{"thurs", time.Thursday, true},
		{"7", 0, false},
		{"mo", 0, false},
		{"monsoon", 0, false},
	}
	for _, tt := range tests {
		got, err := handler.ParseWeekday(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseWeekday(%q) = %v, %v", tt.in, got, err)
		}
	}
}
