package forecaststore

import (
	"context"
	"sync"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Memory is an in-process forecast store for cmd/preview and tests.
type Memory struct {
	mu     sync.RWMutex
	series map[cellKey]domain.CellSeries
}

type cellKey struct {
	region string
	cell   domain.GridCell
}

// NewMemory creates an empty in-memory forecast store.
func NewMemory() *Memory {
	return &Memory{series: make(map[cellKey]domain.CellSeries)}
}

// Put stores one cell series, replacing any existing one.
func (m *Memory) Put(region string, cs domain.CellSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[cellKey{region: region, cell: cs.Cell}] = cs
}

// Series returns the stored series for one cell. Missing cells yield an
// empty series and no error, matching the Postgres store.
func (m *Memory) Series(_ context.Context, region string, cell domain.GridCell) (domain.CellSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cs, ok := m.series[cellKey{region: region, cell: cell}]
	if !ok {
		return domain.CellSeries{Cell: cell}, nil
	}
	return cs, nil
}
