package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoute() Route {
	return Route{
		ID:       1,
		Code:     "JMT-N",
		Name:     "John Muir North",
		RefLat:   37.85,
		RefLon:   -119.55,
		Timezone: "America/Los_Angeles",
		Region:   "sierra",
		Waypoints: []Waypoint{
			{ID: 1, Code: "TRAILH", Name: "Trailhead", Kind: WaypointPOI, Lat: 37.85, Lon: -119.55, ElevationM: 1200},
			{ID: 2, Code: "LAKEVE", Name: "Lake View East", Kind: WaypointCamp, Lat: 37.80, Lon: -119.45, ElevationM: 2400},
			{ID: 3, Code: "LAKEVU", Name: "Lake Vue Camp", Kind: WaypointCamp, Lat: 37.78, Lon: -119.43, ElevationM: 2500},
			{ID: 4, Code: "BEARPK", Name: "Bear Peak", Kind: WaypointPeak, Lat: 37.75, Lon: -119.40, ElevationM: 3300},
		},
	}
}

func TestWaypointByCode(t *testing.T) {
	r := testRoute()

	t.Run("exact match", func(t *testing.T) {
		w, ok := r.WaypointByCode("BEARPK")
		require.True(t, ok)
		assert.Equal(t, "Bear Peak", w.Name)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, ok := r.WaypointByCode("RIDGEC")
		assert.False(t, ok)
	})

	t.Run("lookup is case sensitive", func(t *testing.T) {
		_, ok := r.WaypointByCode("bearpk")
		assert.False(t, ok)
	})
}

func TestCodesWithPrefix(t *testing.T) {
	r := testRoute()

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"shared five char prefix", "LAKEV", []string{"LAKEVE", "LAKEVU"}},
		{"full code resolves alone", "LAKEVE", []string{"LAKEVE"}},
		{"unique prefix", "BEAR", []string{"BEARPK"}},
		{"no match", "RIDGE", nil},
		{"empty prefix matches everything", "", []string{"TRAILH", "LAKEVE", "LAKEVU", "BEARPK"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.CodesWithPrefix(tt.prefix))
		})
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []string{"TRAILH", "LAKEVE", "LAKEVU", "BEARPK"}, testRoute().Codes())
}
