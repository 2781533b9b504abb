// Command validate checks reference data integrity in the service database:
// route shape, waypoint codes and coordinates, subscription links, and
// forecast coverage for every waypoint cell. Run it after provisioning
// changes or an ingestion incident.
//
// Usage:
//
//	go run ./cmd/validate -database-url postgres://localhost:5432/forecast_sms
//	go run ./cmd/validate -database-url ... -max-age 2h
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

func main() {
	databaseURL := flag.String("database-url", "", "Postgres connection string")
	maxAge := flag.Duration("max-age", 6*time.Hour, "maximum forecast age before a cell counts as stale")
	flag.Parse()

	if *databaseURL == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*databaseURL, *maxAge); code != 0 {
		os.Exit(code)
	}
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type cellForecast struct {
	region    string
	cell      domain.GridCell
	samples   int
	updatedAt time.Time
}

func run(databaseURL string, maxAge time.Duration) int {
	ctx := context.Background()

	fmt.Println("=== Forecast SMS Reference Data Validation ===")
	fmt.Println()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: connect: %v\n", err)
		return 1
	}
	defer pool.Close()

	// ── Load all data sources ──

	routes, err := loadRoutes(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load routes: %v\n", err)
		return 1
	}

	subs, err := loadSubscriptions(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load subscriptions: %v\n", err)
		return 1
	}

	cells, err := loadCellForecasts(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cell forecasts: %v\n", err)
		return 1
	}

	// ── Run validation phases ──

	phases := []*phase{
		validateRoutes(routes),
		validateWaypoints(routes),
		validateSubscriptions(subs, routes),
		validateForecastCoverage(routes, cells, maxAge, time.Now()),
	}

	// ── Report results ──

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	waypointCount := 0
	for _, r := range routes {
		waypointCount += len(r.Waypoints)
	}
	fmt.Println()
	fmt.Printf("Data: %d routes, %d waypoints, %d subscriptions, %d forecast cells\n",
		len(routes), waypointCount, len(subs), len(cells))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadRoutes(ctx context.Context, pool *pgxpool.Pool) ([]domain.Route, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, code, name, ref_lat, ref_lon, timezone, region
		FROM routes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var r domain.Route
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.RefLat, &r.RefLon, &r.Timezone, &r.Region); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range routes {
		wps, err := loadWaypoints(ctx, pool, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Waypoints = wps
	}
	return routes, nil
}

func loadWaypoints(ctx context.Context, pool *pgxpool.Pool, routeID int64) ([]domain.Waypoint, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, code, name, kind, lat, lon, elevation_m
		FROM waypoints WHERE route_id = $1 ORDER BY position`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wps []domain.Waypoint
	for rows.Next() {
		var w domain.Waypoint
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Kind, &w.Lat, &w.Lon, &w.ElevationM); err != nil {
			return nil, err
		}
		wps = append(wps, w)
	}
	return wps, rows.Err()
}

func loadSubscriptions(ctx context.Context, pool *pgxpool.Pool) ([]domain.Subscription, error) {
	rows, err := pool.Query(ctx, `
		SELECT phone, route_id, tier, billing_region
		FROM subscriptions WHERE active ORDER BY phone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.Phone, &s.RouteID, &s.Tier, &s.BillingRegion); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func loadCellForecasts(ctx context.Context, pool *pgxpool.Pool) ([]cellForecast, error) {
	rows, err := pool.Query(ctx, `
		SELECT region, cell_row, cell_col, samples, updated_at
		FROM cell_forecasts ORDER BY region, cell_row, cell_col`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []cellForecast
	for rows.Next() {
		var (
			cf  cellForecast
			raw []byte
		)
		if err := rows.Scan(&cf.region, &cf.cell.Row, &cf.cell.Col, &raw, &cf.updatedAt); err != nil {
			return nil, err
		}
		var samples []domain.ForecastSample
		if err := json.Unmarshal(raw, &samples); err != nil {
			return nil, fmt.Errorf("cell %s/%s: decode samples: %w", cf.region, cf.cell, err)
		}
		cf.samples = len(samples)
		cells = append(cells, cf)
	}
	return cells, rows.Err()
}

// ── Validation phases ──

func validateRoutes(routes []domain.Route) *phase {
	p := &phase{name: "Route shape"}

	for _, r := range routes {
		if r.Code == "" {
			p.errorf("route %d has an empty code", r.ID)
		}
		region, ok := domain.RegionByName(r.Region)
		if !ok {
			p.errorf("route %s references unknown region %q", r.Code, r.Region)
			continue
		}
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			p.errorf("route %s has unloadable timezone %q", r.Code, r.Timezone)
		}
		if !region.Contains(r.RefLat, r.RefLon) {
			p.errorf("route %s reference point %.4f,%.4f is outside region %s",
				r.Code, r.RefLat, r.RefLon, r.Region)
		}
		if len(r.Waypoints) == 0 {
			p.errorf("route %s has no waypoints", r.Code)
		}
	}
	return p
}

func validateWaypoints(routes []domain.Route) *phase {
	p := &phase{name: "Waypoint codes and coordinates"}

	for _, r := range routes {
		region, ok := domain.RegionByName(r.Region)
		if !ok {
			continue // already reported by the route phase
		}

		seen := make(map[string]bool, len(r.Waypoints))
		for _, w := range r.Waypoints {
			switch {
			case w.Code == "":
				p.errorf("route %s waypoint %d has an empty code", r.Code, w.ID)
			case len(w.Code) > 6:
				p.errorf("route %s code %q exceeds 6 characters", r.Code, w.Code)
			case w.Code != strings.ToUpper(w.Code):
				p.errorf("route %s code %q is not uppercase", r.Code, w.Code)
			}
			if seen[w.Code] {
				p.errorf("route %s code %q is duplicated", r.Code, w.Code)
			}
			seen[w.Code] = true

			if _, err := region.Resolve(w.Lat, w.Lon); err != nil {
				p.errorf("route %s waypoint %s at %.4f,%.4f is outside region %s",
					r.Code, w.Code, w.Lat, w.Lon, r.Region)
			}
			if w.ElevationM < 0 || w.ElevationM > 9000 {
				p.errorf("route %s waypoint %s has implausible elevation %.0f m",
					r.Code, w.Code, w.ElevationM)
			}
			switch w.Kind {
			case domain.WaypointCamp, domain.WaypointPeak, domain.WaypointPOI:
			default:
				p.errorf("route %s waypoint %s has unknown kind %q", r.Code, w.Code, w.Kind)
			}
		}
	}
	return p
}

func validateSubscriptions(subs []domain.Subscription, routes []domain.Route) *phase {
	p := &phase{name: "Subscription links"}

	routeIDs := make(map[int64]bool, len(routes))
	for _, r := range routes {
		routeIDs[r.ID] = true
	}

	for _, s := range subs {
		if !strings.HasPrefix(s.Phone, "+") || len(s.Phone) < 8 {
			p.errorf("subscription %q is not an E.164 phone number", s.Phone)
		}
		if !routeIDs[s.RouteID] {
			p.errorf("subscription %s references missing route %d", s.Phone, s.RouteID)
		}
		switch s.Tier {
		case domain.TierCautious, domain.TierStandard, domain.TierExpert:
		default:
			p.errorf("subscription %s has unknown tier %q", s.Phone, s.Tier)
		}
	}
	return p
}

func validateForecastCoverage(routes []domain.Route, cells []cellForecast, maxAge time.Duration, now time.Time) *phase {
	p := &phase{name: "Forecast coverage"}

	type cellKey struct {
		region string
		cell   domain.GridCell
	}
	byCell := make(map[cellKey]cellForecast, len(cells))
	for _, cf := range cells {
		byCell[cellKey{cf.region, cf.cell}] = cf
	}

	for _, r := range routes {
		region, ok := domain.RegionByName(r.Region)
		if !ok {
			continue
		}
		for _, w := range r.Waypoints {
			cell, err := region.Resolve(w.Lat, w.Lon)
			if err != nil {
				continue // already reported by the waypoint phase
			}
			cf, ok := byCell[cellKey{r.Region, cell}]
			if !ok {
				p.errorf("route %s waypoint %s: no forecast stored for cell %s", r.Code, w.Code, cell)
				continue
			}
			if cf.samples == 0 {
				p.errorf("route %s waypoint %s: cell %s has an empty series", r.Code, w.Code, cell)
			}
			if age := now.Sub(cf.updatedAt); age > maxAge {
				p.errorf("route %s waypoint %s: cell %s is stale (%s old)",
					r.Code, w.Code, cell, age.Round(time.Minute))
			}
		}
	}
	return p
}
