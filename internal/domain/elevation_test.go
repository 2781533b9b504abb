package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustTempRange(t *testing.T) {
	t.Run("waypoint above grid elevation cools", func(t *testing.T) {
		// 300 m higher at 0.65 °C/100 m shifts both endpoints down 1.95.
		got := AdjustTempRange(TempRange{Lo: 10, Hi: 10}, 800, 1100, DefaultLapseRate)
		assert.InDelta(t, 8.05, got.Lo, 1e-9)
		assert.InDelta(t, 8.05, got.Hi, 1e-9)
	})

	t.Run("waypoint below grid elevation warms", func(t *testing.T) {
		got := AdjustTempRange(TempRange{Lo: 4, Hi: 10}, 1500, 900, DefaultLapseRate)
		assert.InDelta(t, 7.9, got.Lo, 1e-9)
		assert.InDelta(t, 13.9, got.Hi, 1e-9)
	})

	t.Run("equal elevations is a no-op", func(t *testing.T) {
		// A failed terrain lookup falls back to the grid's own elevation,
		// so the adjustment must pass the range through untouched.
		r := TempRange{Lo: -3.2, Hi: 6.8}
		assert.Equal(t, r, AdjustTempRange(r, 2100, 2100, DefaultLapseRate))
	})

	t.Run("ordering preserved for any delta", func(t *testing.T) {
		ranges := []TempRange{{Lo: -10, Hi: -2}, {Lo: -1, Hi: 1}, {Lo: 3, Hi: 17}}
		deltas := []float64{-1200, -300, 0, 250, 900, 2000}
		for _, r := range ranges {
			for _, d := range deltas {
				got := AdjustTempRange(r, 1000, 1000+d, DefaultLapseRate)
				assert.LessOrEqual(t, got.Lo, got.Hi, "range %v delta %v", r, d)
			}
		}
	})
}

func TestFreezingLevelM(t *testing.T) {
	tests := []struct {
		name     string
		baseElev float64
		baseTemp float64
		want     float64
	}{
		{"positive base temp", 800, 10, 2338.4615384615},
		{"warm summer day", 1200, 18, 3969.2307692308},
		{"zero base temp", 800, 0, 800},
		{"below freezing at grid level", 800, -5, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreezingLevelM(tt.baseElev, tt.baseTemp, DefaultLapseRate)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestDisplayHundreds(t *testing.T) {
	tests := []struct {
		name   string
		meters float64
		want   int
	}{
		{"floors partial hundreds", 2338.46, 23},
		{"just below a boundary", 99.9, 0},
		{"exact boundary", 2400, 24},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayHundreds(tt.meters))
		})
	}
}
