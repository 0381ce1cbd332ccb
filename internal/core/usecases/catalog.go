package usecases

import (
	"context"
	"fmt"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
)

// LoadCatalog reads the route catalog from repo and builds the immutable
// network and boarding rules.
func LoadCatalog(ctx context.Context, repo ports.NetworkRepository) (*network.Network, *boarding.Rules, error) {
	routes, err := repo.ListRoutes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list routes: %w", err)
	}
	landmarks, err := repo.ListLandmarks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list landmarks: %w", err)
	}
	zones, err := repo.ListBoardingZones(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list boarding zones: %w", err)
	}
	invalid, err := repo.ListInvalidBoardings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list invalid boardings: %w", err)
	}

	net, err := network.New(routes, landmarks)
	if err != nil {
		return nil, nil, fmt.Errorf("build network: %w", err)
	}
	rules, err := boarding.NewRules(zones, invalid)
	if err != nil {
		return nil, nil, fmt.Errorf("build boarding rules: %w", err)
	}
	return net, rules, nil
}
