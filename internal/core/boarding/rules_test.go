package boarding_test

import (
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

func seedRules(t *testing.T) *boarding.Rules {
	t.Helper()
	c, err := seed.Batangas()
	if err != nil {
		t.Fatal(err)
	}
	r, err := boarding.NewRules(c.BoardingZones, c.InvalidBoardings)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return r
}

func TestCanBoard_StaClaraRestrictedOnAlangilan(t *testing.T) {
	r := seedRules(t)

	if r.CanBoard("Sta. Clara Elementary School", "Batangas - Alangilan") {
		t.Error("expected Sta. Clara boarding on Alangilan to be denied")
	}
	v := r.BoardingMessageFor("Sta. Clara Elementary School", "Batangas - Alangilan")
	if v.Tier != boarding.TierRestricted {
		t.Errorf("expected restricted tier, got %s", v.Tier)
	}
}

func TestCanBoard_Precedence(t *testing.T) {
	zones := []domain.BoardingZone{{
		RouteName:  "R1",
		Primary:    []string{"Terminal"},
		Secondary:  []string{"Market"},
		Restricted: []string{"Port"},
	}}
	invalid := []domain.InvalidBoarding{
		{Landmark: "Port", RouteNames: []string{"R1"}},
		{Landmark: "Terminal", RouteNames: []string{"R2"}},
	}
	r, err := boarding.NewRules(zones, invalid)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		landmark, route string
		valid           bool
		tier            boarding.Tier
		confidence      domain.Confidence
	}{
		{"", "R1", true, boarding.TierUnresolved, domain.ConfidenceLow},
		{"Port", "R1", false, boarding.TierInvalid, domain.ConfidenceLow},
		{"Terminal", "R2", false, boarding.TierInvalid, domain.ConfidenceLow},
		{"Market", "R3", true, boarding.TierNoData, domain.ConfidenceLow},
		{"Terminal", "R1", true, boarding.TierPrimary, domain.ConfidenceHigh},
		{"Market", "R1", true, boarding.TierSecondary, domain.ConfidenceMedium},
		{"Plaza", "R1", true, boarding.TierUnknown, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		v := r.BoardingMessageFor(tt.landmark, tt.route)
		if v.Valid != tt.valid || v.Tier != tt.tier || v.Confidence != tt.confidence {
			t.Errorf("BoardingMessageFor(%q, %q) = %+v, want valid=%v tier=%s conf=%s",
				tt.landmark, tt.route, v, tt.valid, tt.tier, tt.confidence)
		}
		if got := r.CanBoard(tt.landmark, tt.route); got != tt.valid {
			t.Errorf("CanBoard(%q, %q) = %v, want %v", tt.landmark, tt.route, got, tt.valid)
		}
	}
}

func TestCanBoard_RestrictedAndInvalidAgree(t *testing.T) {
	r := seedRules(t)
	// Pier is restricted for Balagtas and also listed in the invalid table.
	if r.CanBoard("Pier/Port of Batangas", "Batangas - Balagtas") {
		t.Error("expected denial")
	}
	if v := r.BoardingMessageFor("Pier/Port of Batangas", "Batangas - Balagtas"); v.Tier != boarding.TierInvalid {
		t.Errorf("invalid table should be checked first, got %s", v.Tier)
	}
}

func TestCanBoard_UnlistedLandmarkAllowed(t *testing.T) {
	r := seedRules(t)
	if !r.CanBoard("Some Sari-Sari Store", "Batangas - Alangilan") {
		t.Error("landmark outside every zone should be allowed")
	}
}

func TestNewRules_RejectsOverlappingSets(t *testing.T) {
	_, err := boarding.NewRules([]domain.BoardingZone{{
		RouteName:  "R1",
		Primary:    []string{"Terminal"},
		Restricted: []string{"Terminal"},
	}}, nil)
	if err == nil {
		t.Error("expected error for landmark in two sets")
	}
}
