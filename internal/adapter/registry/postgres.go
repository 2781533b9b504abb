package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Postgres serves route, waypoint, and subscription reference data. The
// service only reads these tables; provisioning tooling owns the writes.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a registry backed by a pgx connection pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// RouteForSender returns the route and subscription for a phone number.
// Senders without an active subscription get domain.ErrUnknownSender.
func (p *Postgres) RouteForSender(ctx context.Context, phone string) (domain.Route, domain.Subscription, error) {
	row := p.db.QueryRow(ctx, `
		SELECT s.phone, s.route_id, s.tier, s.billing_region,
		       r.id, r.code, r.name, r.ref_lat, r.ref_lon, r.timezone, r.region
		FROM subscriptions s
		JOIN routes r ON r.id = s.route_id
		WHERE s.phone = $1 AND s.active`,
		phone,
	)

	var (
		sub   domain.Subscription
		route domain.Route
	)
	err := row.Scan(
		&sub.Phone, &sub.RouteID, &sub.Tier, &sub.BillingRegion,
		&route.ID, &route.Code, &route.Name, &route.RefLat, &route.RefLon, &route.Timezone, &route.Region,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Route{}, domain.Subscription{}, domain.ErrUnknownSender
		}
		return domain.Route{}, domain.Subscription{}, fmt.Errorf("query subscription: %w", err)
	}

	route.Waypoints, err = p.routeWaypoints(ctx, route.ID)
	if err != nil {
		return domain.Route{}, domain.Subscription{}, err
	}
	return route, sub, nil
}

// routeWaypoints loads a route's waypoints in route order.
func (p *Postgres) routeWaypoints(ctx context.Context, routeID int64) ([]domain.Waypoint, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, code, name, kind, lat, lon, elevation_m
		FROM waypoints
		WHERE route_id = $1
		ORDER BY position`,
		routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query waypoints: %w", err)
	}
	defer rows.Close()

	var waypoints []domain.Waypoint
	for rows.Next() {
		var w domain.Waypoint
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Kind, &w.Lat, &w.Lon, &w.ElevationM); err != nil {
			return nil, fmt.Errorf("scan waypoint: %w", err)
		}
		waypoints = append(waypoints, w)
	}
	return waypoints, rows.Err()
}

// EnsureSchema creates the registry tables when they do not exist yet,
// keeping local and test databases usable without provisioning tooling.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routes (
            id BIGSERIAL PRIMARY KEY,
            code TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            ref_lat DOUBLE PRECISION NOT NULL,
            ref_lon DOUBLE PRECISION NOT NULL,
            timezone TEXT NOT NULL,
            region TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS waypoints (
            id BIGSERIAL PRIMARY KEY,
            route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            code TEXT NOT NULL,
            name TEXT NOT NULL,
            kind TEXT NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            elevation_m DOUBLE PRECISION NOT NULL,
            UNIQUE (route_id, code),
            UNIQUE (route_id, position)
        )`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            phone TEXT PRIMARY KEY,
            route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
            tier TEXT NOT NULL DEFAULT 'standard',
            billing_region TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure registry schema: %w", err)
		}
	}
	return nil
}

// Seed inserts one route with its waypoints and subscriptions. Intended for
// tests and local development only.
func Seed(ctx context.Context, db *pgxpool.Pool, route domain.Route, subs []domain.Subscription) (int64, error) {
	var routeID int64
	err := db.QueryRow(ctx, `
		INSERT INTO routes (code, name, ref_lat, ref_lon, timezone, region)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		route.Code, route.Name, route.RefLat, route.RefLon, route.Timezone, route.Region,
	).Scan(&routeID)
	if err != nil {
		return 0, fmt.Errorf("insert route: %w", err)
	}

	for i, w := range route.Waypoints {
		if _, err := db.Exec(ctx, `
			INSERT INTO waypoints (route_id, position, code, name, kind, lat, lon, elevation_m)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			routeID, i, w.Code, w.Name, string(w.Kind), w.Lat, w.Lon, w.ElevationM,
		); err != nil {
			return 0, fmt.Errorf("insert waypoint %s: %w", w.Code, err)
		}
	}

	for _, s := range subs {
		if _, err := db.Exec(ctx, `
			INSERT INTO subscriptions (phone, route_id, tier, billing_region)
			VALUES ($1, $2, $3, $4)`,
			s.Phone, routeID, string(s.Tier), s.BillingRegion,
		); err != nil {
			return 0, fmt.Errorf("insert subscription %s: %w", s.Phone, err)
		}
	}
	return routeID, nil
}
