package workflows

import (
	"sort"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// WarmGeometryInput selects the routes to snap. An empty RouteIDs warms the
// whole catalog. Refresh drops cached geometry first.
type WarmGeometryInput struct {
	RouteIDs []string
	Refresh  bool
}

// WarmGeometryResult summarises a warming run.
type WarmGeometryResult struct {
	Snapped []string
	Failed  []string
}

// WarmGeometryWorkflow snaps route geometry to the road network and stores
// it in the cache so map requests never wait on the routing engine.
// Routes are snapped in parallel; one failing route does not fail the run.
func WarmGeometryWorkflow(ctx workflow.Context, input WarmGeometryInput) (*WarmGeometryResult, error) {
	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	ids := input.RouteIDs
	if len(ids) == 0 {
		if err := workflow.ExecuteActivity(ctx, "ListRouteIDs").Get(ctx, &ids); err != nil {
			return nil, err
		}
	}
	logger.Info("Warming route geometry", "routes", len(ids), "refresh", input.Refresh)

	if input.Refresh {
		for _, id := range ids {
			if err := workflow.ExecuteActivity(ctx, "InvalidateGeometry", id).Get(ctx, nil); err != nil {
				logger.Warn("invalidate failed", "route", id, "error", err)
			}
		}
	}

	futures := make(map[string]workflow.Future, len(ids))
	for _, id := range ids {
		futures[id] = workflow.ExecuteActivity(ctx, "SnapRoute", id)
	}

	res := &WarmGeometryResult{Snapped: []string{}, Failed: []string{}}
	for _, id := range ids {
		var out SnapOutcome
		if err := futures[id].Get(ctx, &out); err != nil {
			logger.Warn("route snap failed", "route", id, "error", err)
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Snapped = append(res.Snapped, id)
	}
	sort.Strings(res.Snapped)
	sort.Strings(res.Failed)

	logger.Info("Geometry warming finished", "snapped", len(res.Snapped), "failed", len(res.Failed))
	return res, nil
}
