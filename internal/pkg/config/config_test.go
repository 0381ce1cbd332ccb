package config_test

import (
	"strings"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("jeepney-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Network.Source != "seed" {
		t.Errorf("expected seed source, got %q", cfg.Network.Source)
	}
	if cfg.Planner.MaxResults != 8 || cfg.Planner.MaxLegs != 3 || cfg.Planner.MaxTotalMinutes != 90 {
		t.Errorf("unexpected planner defaults %+v", cfg.Planner)
	}
	if cfg.Geocoder.FallbackLat != 13.7565 || cfg.Geocoder.FallbackLon != 121.0583 {
		t.Errorf("unexpected fallback %v,%v", cfg.Geocoder.FallbackLat, cfg.Geocoder.FallbackLon)
	}
	if cfg.Telemetry.ServiceName != "jeepney-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JEEPNEY_SERVER_PORT", "9090")
	t.Setenv("JEEPNEY_PLANNER_MAX_LEGS", "2")

	cfg, err := config.Load("jeepney-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected 9090, got %d", cfg.Server.Port)
	}
	if cfg.Planner.MaxLegs != 2 {
		t.Errorf("expected 2 legs, got %d", cfg.Planner.MaxLegs)
	}
}

func TestLoad_InvalidSource(t *testing.T) {
	t.Setenv("JEEPNEY_NETWORK_SOURCE", "csv")
	if _, err := config.Load("jeepney-test"); err == nil || !strings.Contains(err.Error(), "network.source") {
		t.Fatalf("expected network.source error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Network: config.NetworkConfig{Source: "postgres"},
		Planner: config.PlannerConfig{MaxLegs: 5},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"server.port", "database.host", "planner.max_legs", "nats.url", "valkey.addr"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
