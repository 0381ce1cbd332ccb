package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

func TestLoadCatalog(t *testing.T) {
	net, rules := batangas(t)
	if got := net.Stats().Routes; got != 10 {
		t.Errorf("expected 10 routes, got %d", got)
	}
	if rules.CanBoard("Sta. Clara Elementary School", "Batangas - Alangilan") {
		t.Error("Alangilan should not board at Sta. Clara")
	}
}

func TestLoadCatalog_RepoError(t *testing.T) {
	c, _ := seed.Batangas()
	boom := errors.New("connection refused")
	_, _, err := usecases.LoadCatalog(context.Background(), &mockNetworkRepo{Catalog: c, routesErr: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestRouteService_GetByID(t *testing.T) {
	net, _ := batangas(t)
	svc := usecases.NewRouteService(net)

	r, err := svc.GetByID("route_003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Batangas - Sta. Clara/Pier" {
		t.Errorf("unexpected route %s", r.Name)
	}

	if _, err := svc.GetByID("route_999"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRouteService_List(t *testing.T) {
	net, _ := batangas(t)
	svc := usecases.NewRouteService(net)

	if got := len(svc.List("")); got != 10 {
		t.Errorf("expected all 10 routes, got %d", got)
	}
	found := svc.List("balagtas")
	if len(found) != 1 || found[0].ID != "route_002" {
		t.Errorf("unexpected search result %+v", found)
	}
}

func TestRouteService_Nearest(t *testing.T) {
	net, _ := batangas(t)
	svc := usecases.NewRouteService(net)

	terminal, _ := net.MatchLandmark("Batangas City Grand Terminal")
	res, err := svc.Nearest(terminal.Location)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RadiusMeters != 100 {
		t.Errorf("expected routes at the first radius, got %v", res.RadiusMeters)
	}
	if len(res.Routes) == 0 || len(res.Routes) > 5 {
		t.Fatalf("expected 1-5 routes, got %d", len(res.Routes))
	}
	for i, r := range res.Routes {
		if r.Recommendation != usecases.RecommendVeryClose {
			t.Errorf("route %d: expected very close, got %s", i, r.Recommendation)
		}
		if i > 0 && r.DistanceMeters < res.Routes[i-1].DistanceMeters {
			t.Errorf("routes not sorted by distance at %d", i)
		}
	}
}

func TestRouteService_NearestNone(t *testing.T) {
	net, _ := batangas(t)
	svc := usecases.NewRouteService(net)

	res, err := svc.Nearest(domain.GeoPoint{Lat: 14.5, Lon: 122.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Routes) != 0 || res.Routes == nil {
		t.Errorf("expected empty non-nil routes, got %#v", res.Routes)
	}

	if _, err := svc.Nearest(domain.GeoPoint{Lat: 91}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0, usecases.RecommendVeryClose},
		{300, usecases.RecommendVeryClose},
		{301, usecases.RecommendWalkable},
		{1000, usecases.RecommendWalkable},
		{1500, usecases.RecommendFar},
	}
	for _, tt := range tests {
		if got := usecases.Recommendation(tt.d); got != tt.want {
			t.Errorf("Recommendation(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
