package forecaststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Postgres reads normalized per-cell forecast series written by the external
// ingestion service. Samples are stored as one JSONB document per cell and
// replaced wholesale on each model run.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a forecast store backed by a pgx connection pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Series returns the stored series for one cell. A cell with no stored row
// yields an empty series and no error; callers treat empty as unavailable.
func (p *Postgres) Series(ctx context.Context, region string, cell domain.GridCell) (domain.CellSeries, error) {
	row := p.db.QueryRow(ctx, `
		SELECT elevation_m, samples
		FROM cell_forecasts
		WHERE region = $1 AND cell_row = $2 AND cell_col = $3`,
		region, cell.Row, cell.Col,
	)

	var (
		elevation float64
		samples   []byte
	)
	if err := row.Scan(&elevation, &samples); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CellSeries{Cell: cell}, nil
		}
		return domain.CellSeries{}, fmt.Errorf("query cell forecast %s/%s: %w", region, cell, err)
	}

	cs := domain.CellSeries{Cell: cell, ElevationM: elevation}
	if err := json.Unmarshal(samples, &cs.Samples); err != nil {
		return domain.CellSeries{}, fmt.Errorf("decode samples for %s/%s: %w", region, cell, err)
	}
	return cs, nil
}

// Put upserts one cell series. Only tests and local tooling write through
// this; production rows come from the ingestion service.
func (p *Postgres) Put(ctx context.Context, region string, cs domain.CellSeries) error {
	samples, err := json.Marshal(cs.Samples)
	if err != nil {
		return fmt.Errorf("encode samples for %s/%s: %w", region, cs.Cell, err)
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO cell_forecasts (region, cell_row, cell_col, elevation_m, samples, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (region, cell_row, cell_col)
		DO UPDATE SET elevation_m = EXCLUDED.elevation_m, samples = EXCLUDED.samples, updated_at = NOW()`,
		region, cs.Cell.Row, cs.Cell.Col, cs.ElevationM, samples,
	)
	if err != nil {
		return fmt.Errorf("upsert cell forecast %s/%s: %w", region, cs.Cell, err)
	}
	return nil
}

// EnsureSchema creates the forecast table when it does not exist yet,
// keeping local and test databases usable without the ingestion service.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cell_forecasts (
            region TEXT NOT NULL,
            cell_row INTEGER NOT NULL,
            cell_col INTEGER NOT NULL,
            elevation_m DOUBLE PRECISION NOT NULL,
            samples JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (region, cell_row, cell_col)
        )`)
	if err != nil {
		return fmt.Errorf("ensure forecast schema: %w", err)
	}
	return nil
}
