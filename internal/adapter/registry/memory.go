package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Memory is an in-process registry for cmd/preview and tests.
type Memory struct {
	mu     sync.RWMutex
	routes map[int64]domain.Route
	subs   map[string]domain.Subscription
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		routes: make(map[int64]domain.Route),
		subs:   make(map[string]domain.Subscription),
	}
}

// AddRoute registers a route under its ID, replacing any existing one.
func (m *Memory) AddRoute(route domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
}

// Subscribe links a phone number to a route.
func (m *Memory) Subscribe(sub domain.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.Phone] = sub
}

// RouteForSender returns the route and subscription for a phone number.
func (m *Memory) RouteForSender(_ context.Context, phone string) (domain.Route, domain.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subs[phone]
	if !ok {
		return domain.Route{}, domain.Subscription{}, domain.ErrUnknownSender
	}
	route, ok := m.routes[sub.RouteID]
	if !ok {
		return domain.Route{}, domain.Subscription{}, fmt.Errorf("subscription for %s references missing route %d", phone, sub.RouteID)
	}
	return route, sub, nil
}
