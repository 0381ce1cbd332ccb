package telemetry_test

import (
	"context"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/telemetry"
)

func TestInitTracer_UnknownExporter(t *testing.T) {
	_, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName: "jeepney-test",
		Exporter:    "zipkin",
		SampleRatio: 1,
	})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestInitTracer_Stdout(t *testing.T) {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName: "jeepney-test",
		Exporter:    "stdout",
		SampleRatio: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer shutdown()

	_, span := telemetry.Tracer().Start(context.Background(), "test")
	span.SetAttributes(telemetry.AttrPlanID.String("p-1"))
	span.End()
}
