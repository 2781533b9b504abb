package domain

import "context"

// Registry resolves senders to their subscribed route and reference data.
// Reference data is read-only here; provisioning lives in another service.
type Registry interface {
	// RouteForSender returns the route and subscription for a phone number.
	RouteForSender(ctx context.Context, phone string) (Route, Subscription, error)
}

// ForecastSource serves normalized forecast series per grid cell. Units and
// elevation baselines are already normalized by the ingestion service.
type ForecastSource interface {
	// Series returns the current forecast series for one cell of a region.
	Series(ctx context.Context, region string, cell GridCell) (CellSeries, error)
}

// TerrainSource resolves ground elevation for ad-hoc GPS targets that have
// no registered waypoint elevation.
type TerrainSource interface {
	// ElevationM returns the terrain elevation in meters above sea level.
	ElevationM(ctx context.Context, lat, lon float64) (float64, error)
}
