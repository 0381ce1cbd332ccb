package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/fare"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/planner"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/logging"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/telemetry"
)

// Manila is Philippine Standard Time, used when a request omits the hour.
var Manila = time.FixedZone("PHT", 8*60*60)

// PlanQuery is a planning request. Each endpoint is a coordinate or free
// text; coordinates win when both are set. Nil Hour and Weekday mean now.
type PlanQuery struct {
	Start         *domain.GeoPoint
	End           *domain.GeoPoint
	StartText     string
	EndText       string
	StartLandmark string
	Hour          *int
	Weekday       *time.Weekday
	Discount      bool
}

// Endpoint is a resolved start or end point.
type Endpoint struct {
	Location domain.GeoPoint `json:"location"`
	Label    string          `json:"label"`
	Source   string          `json:"source"`
}

// LegView describes one ride of a plan.
type LegView struct {
	RouteID             string           `json:"route_id"`
	RouteName           string           `json:"route_name"`
	Kind                domain.RouteKind `json:"kind"`
	Color               string           `json:"color"`
	Fare                string           `json:"fare"`
	BaseDurationMinutes int              `json:"base_duration_minutes"`
	Frequency           string           `json:"frequency,omitempty"`
}

// PlanView is one ranked itinerary.
type PlanView struct {
	Rank int       `json:"rank"`
	Legs []LegView `json:"legs"`
	domain.TripCandidate
}

// PlanResult is the response to a planning request.
type PlanResult struct {
	ID            string            `json:"id"`
	Start         Endpoint          `json:"start"`
	End           Endpoint          `json:"end"`
	StartLandmark string            `json:"start_landmark,omitempty"`
	Hour          int               `json:"hour"`
	Weekday       string            `json:"weekday"`
	Traffic       traffic.Condition `json:"traffic"`
	Plans         []PlanView        `json:"plans"`
	ComputedAt    time.Time         `json:"computed_at"`
}

// PlanService wraps the planner with endpoint resolution, events and
// instrumentation.
type PlanService struct {
	planner   *planner.Planner
	net       *network.Network
	geocoder  *GeocodeService
	publisher ports.EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewPlanService creates a PlanService. geocoder and publisher may be nil.
func NewPlanService(p *planner.Planner, net *network.Network, geocoder *GeocodeService, publisher ports.EventPublisher, logger *slog.Logger) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{planner: p, net: net, geocoder: geocoder, publisher: publisher, log: logger, now: time.Now}
}

// WithClock overrides the time source.
func (s *PlanService) WithClock(now func() time.Time) *PlanService {
	s.now = now
	return s
}

// Plan resolves the endpoints and returns ranked trip plans.
func (s *PlanService) Plan(ctx context.Context, q PlanQuery) (*PlanResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PlanService.Plan")
	defer span.End()

	start, err := s.resolve(ctx, q.Start, q.StartText)
	if err != nil {
		metrics.PlansComputed.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := s.resolve(ctx, q.End, q.EndText)
	if err != nil {
		metrics.PlansComputed.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("end: %w", err)
	}

	now := s.now().In(Manila)
	hour, day := now.Hour(), now.Weekday()
	if q.Hour != nil {
		hour = *q.Hour
	}
	if q.Weekday != nil {
		day = *q.Weekday
	}

	landmark := s.startLandmark(q.StartLandmark, start)

	began := time.Now()
	res, err := s.planner.PlanDetailed(planner.Request{
		Start:         start.Location,
		End:           end.Location,
		StartLandmark: landmark,
		Hour:          hour,
		Weekday:       day,
		Discount:      q.Discount,
	})
	metrics.PlanDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		metrics.PlansComputed.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for kind, n := range res.Generated {
		metrics.CandidatesGenerated.WithLabelValues(string(kind)).Add(float64(n))
	}
	outcome := "found"
	if len(res.Plans) == 0 {
		outcome = "empty"
	}
	metrics.PlansComputed.WithLabelValues(outcome).Inc()

	result := &PlanResult{
		ID:            uuid.NewString(),
		Start:         start,
		End:           end,
		StartLandmark: landmark,
		Hour:          hour,
		Weekday:       day.String(),
		Traffic:       res.Traffic,
		Plans:         make([]PlanView, len(res.Plans)),
		ComputedAt:    now.UTC(),
	}
	for i, c := range res.Plans {
		result.Plans[i] = toPlanView(i+1, c, q.Discount)
	}

	span.SetAttributes(
		telemetry.AttrPlanID.String(result.ID),
		telemetry.AttrCandidates.Int(len(result.Plans)),
		telemetry.AttrStartLandmark.String(landmark),
		telemetry.AttrHour.Int(hour),
	)
	logging.FromContext(ctx, s.log).Info("plan computed",
		"plan_id", result.ID,
		"candidates", len(result.Plans),
		"start_landmark", landmark,
		"hour", hour,
		"weekday", day.String(),
	)

	s.publish(ctx, result, day)
	return result, nil
}

func (s *PlanService) resolve(ctx context.Context, p *domain.GeoPoint, text string) (Endpoint, error) {
	if p != nil {
		if !p.Valid() {
			return Endpoint{}, domain.ErrInvalidCoordinate
		}
		return Endpoint{Location: *p, Label: FormatCoordinate(*p), Source: "coordinate"}, nil
	}
	if text == "" {
		return Endpoint{}, domain.ErrMissingEndpoint
	}
	if s.geocoder == nil {
		l, ok := s.net.MatchLandmark(text)
		if !ok {
			return Endpoint{}, fmt.Errorf("place %q: %w", text, domain.ErrNotFound)
		}
		return Endpoint{Location: l.Location, Label: l.Name, Source: SourceLandmark}, nil
	}
	res, err := s.geocoder.Geocode(ctx, text)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Location: res.Location, Label: res.DisplayName, Source: res.Source}, nil
}

// startLandmark picks the boarding landmark: an explicit name, the
// gazetteer entry the start was geocoded from, or the nearest landmark.
func (s *PlanService) startLandmark(explicit string, start Endpoint) string {
	if explicit != "" {
		if l, ok := s.net.MatchLandmark(explicit); ok {
			return l.Name
		}
		return explicit
	}
	if start.Source == SourceLandmark {
		return start.Label
	}
	if l, ok := s.net.LandmarkNear(start.Location, network.TransferLabelRadiusMeters); ok {
		return l.Name
	}
	return ""
}

func (s *PlanService) publish(ctx context.Context, r *PlanResult, day time.Weekday) {
	if s.publisher == nil {
		return
	}
	ev := &domain.PlanComputedEvent{
		ID:            r.ID,
		Start:         r.Start.Location,
		End:           r.End.Location,
		StartLandmark: r.StartLandmark,
		Hour:          r.Hour,
		Weekday:       int(day),
		Candidates:    len(r.Plans),
		ComputedAt:    r.ComputedAt,
	}
	if len(r.Plans) > 0 {
		ev.BestKind = string(r.Plans[0].Kind)
		ev.BestRoutes = r.Plans[0].LegNames()
	}
	if err := s.publisher.PublishPlanComputed(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		s.log.Warn("publish plan event failed", "plan_id", r.ID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func toPlanView(rank int, c domain.TripCandidate, discounted bool) PlanView {
	legs := make([]LegView, len(c.Legs))
	for i, r := range c.Legs {
		legs[i] = LegView{
			RouteID:             r.ID,
			RouteName:           r.Name,
			Kind:                r.Kind,
			Color:               r.Color,
			Fare:                fare.FormatRange(r.FareRange, discounted),
			BaseDurationMinutes: r.BaseDurationMinutes,
			Frequency:           r.Frequency,
		}
	}
	return PlanView{Rank: rank, Legs: legs, TripCandidate: c}
}
