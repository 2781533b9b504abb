package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZoneThresholds() ZoneThresholds {
	return ZoneThresholds{TempC: 2, PrecipMM: 2, WindKmh: 5}
}

// zoneSample builds an enriched sample whose three grouping metrics are the
// given values.
func zoneSample(tempMid, precipMid, windAvg float64) EnrichedSample {
	return EnrichedSample{
		ForecastSample: ForecastSample{
			Precip:     MMRange{Lo: precipMid, Hi: precipMid},
			WindAvgKmh: windAvg,
		},
		AdjustedTemp: TempRange{Lo: tempMid, Hi: tempMid},
	}
}

func zoneMember(code string, samples ...EnrichedSample) WaypointSeries {
	return WaypointSeries{Waypoint: Waypoint{Code: code}, Samples: samples}
}

func TestGroupZones(t *testing.T) {
	th := testZoneThresholds()

	t.Run("identical members form one zone", func(t *testing.T) {
		s := zoneSample(10, 1, 15)
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", s),
			zoneMember("LAKEVE", s),
			zoneMember("BEARPK", s),
		}, th)

		require.Len(t, zones, 1)
		assert.Equal(t, 1, zones[0].ID)
		assert.Equal(t, []string{"TRAILH", "LAKEVE", "BEARPK"}, zones[0].Codes)
	})

	t.Run("temperature break opens a new zone", func(t *testing.T) {
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", zoneSample(10, 1, 15)),
			zoneMember("BEARPK", zoneSample(13, 1, 15)),
		}, th)

		require.Len(t, zones, 2)
		assert.Equal(t, []string{"TRAILH"}, zones[0].Codes)
		assert.Equal(t, []string{"BEARPK"}, zones[1].Codes)
		assert.Equal(t, 2, zones[1].ID)
	})

	t.Run("any single metric past threshold splits", func(t *testing.T) {
		base := zoneSample(10, 1, 15)

		tests := []struct {
			name string
			next EnrichedSample
		}{
			{"temp", zoneSample(12.5, 1, 15)},
			{"precip", zoneSample(10, 3.5, 15)},
			{"wind", zoneSample(10, 1, 21)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				zones := GroupZones([]WaypointSeries{
					zoneMember("TRAILH", base),
					zoneMember("BEARPK", tt.next),
				}, th)
				assert.Len(t, zones, 2)
			})
		}
	})

	t.Run("gradual drift chains into one zone", func(t *testing.T) {
		// Each waypoint is compared to its immediate predecessor, so a
		// slow drift joins even when first and last differ by more than
		// the threshold.
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", zoneSample(10, 1, 15)),
			zoneMember("LAKEVE", zoneSample(12, 1, 15)),
			zoneMember("BEARPK", zoneSample(14, 1, 15)),
		}, th)

		require.Len(t, zones, 1)
		assert.Equal(t, []string{"TRAILH", "LAKEVE", "BEARPK"}, zones[0].Codes)
	})

	t.Run("no lookback past the predecessor", func(t *testing.T) {
		// BEARPK is within threshold of TRAILH but not of LAKEVE, its
		// route predecessor, so it starts a new zone.
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", zoneSample(10, 1, 15)),
			zoneMember("LAKEVE", zoneSample(12, 1, 15)),
			zoneMember("BEARPK", zoneSample(9.5, 1, 15)),
		}, th)

		require.Len(t, zones, 2)
		assert.Equal(t, []string{"TRAILH", "LAKEVE"}, zones[0].Codes)
		assert.Equal(t, []string{"BEARPK"}, zones[1].Codes)
	})

	t.Run("all time steps must match", func(t *testing.T) {
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", zoneSample(10, 1, 15), zoneSample(8, 1, 15)),
			zoneMember("BEARPK", zoneSample(10, 1, 15), zoneSample(4, 1, 15)),
		}, th)

		assert.Len(t, zones, 2)
	})

	t.Run("series length mismatch splits", func(t *testing.T) {
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", zoneSample(10, 1, 15), zoneSample(10, 1, 15)),
			zoneMember("BEARPK", zoneSample(10, 1, 15)),
		}, th)

		assert.Len(t, zones, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, GroupZones(nil, th))
	})
}

func TestGroupZonesPartition(t *testing.T) {
	th := testZoneThresholds()

	members := []WaypointSeries{
		zoneMember("TRAILH", zoneSample(10, 1, 15)),
		zoneMember("LAKEVE", zoneSample(11, 1, 16)),
		zoneMember("LAKEVU", zoneSample(15, 4, 30)),
		zoneMember("RIDGEC", zoneSample(15.5, 4, 31)),
		zoneMember("BEARPK", zoneSample(6, 0, 50)),
	}

	zones := GroupZones(members, th)

	assert.LessOrEqual(t, len(zones), len(members))

	var got []string
	for i, z := range zones {
		assert.Equal(t, i+1, z.ID)
		assert.NotEmpty(t, z.Codes)
		got = append(got, z.Codes...)
	}
	want := make([]string, 0, len(members))
	for _, m := range members {
		want = append(want, m.Waypoint.Code)
	}
	// Every waypoint lands in exactly one zone, in route order.
	assert.Equal(t, want, got)
}

func TestZoneWorstCaseRepresentative(t *testing.T) {
	th := testZoneThresholds()

	cloudLow, cloudHigh := 1800.0, 2600.0
	a := EnrichedSample{
		ForecastSample: ForecastSample{
			Temp:          TempRange{Lo: 2, Hi: 10},
			RainProbPct:   30,
			Precip:        MMRange{Lo: 0.5, Hi: 1},
			PrecipType:    PrecipRain,
			WindAvgKmh:    15,
			WindGustKmh:   40,
			CloudCoverPct: 50,
			CAPEJPerKg:    150,
		},
		AdjustedTemp:      TempRange{Lo: 0, Hi: 8},
		FreezingLevelM:    2600,
		FreezingLevel100M: 26,
		CloudBaseM:        cloudHigh,
		CloudBase100M:     26,
		CloudBaseKnown:    true,
		Danger:            Danger1,
		Thunder:           ThunderNone,
	}
	b := EnrichedSample{
		ForecastSample: ForecastSample{
			Temp:          TempRange{Lo: 3, Hi: 12},
			RainProbPct:   60,
			Precip:        MMRange{Lo: 1, Hi: 2},
			PrecipType:    PrecipSnow,
			WindAvgKmh:    18,
			WindGustKmh:   55,
			CloudCoverPct: 80,
			CAPEJPerKg:    250,
		},
		AdjustedTemp:      TempRange{Lo: 1, Hi: 9},
		FreezingLevelM:    2200,
		FreezingLevel100M: 22,
		CloudBaseM:        cloudLow,
		CloudBase100M:     18,
		CloudBaseKnown:    true,
		Danger:            Danger2,
		Thunder:           ThunderPossible,
	}

	zones := GroupZones([]WaypointSeries{
		zoneMember("TRAILH", a),
		zoneMember("LAKEVE", b),
	}, th)

	require.Len(t, zones, 1)
	require.Len(t, zones[0].Series, 1)

	want := EnrichedSample{
		ForecastSample: ForecastSample{
			Temp:          TempRange{Lo: 2, Hi: 12},
			RainProbPct:   60,
			Precip:        MMRange{Lo: 1, Hi: 2},
			PrecipType:    PrecipMixed,
			WindAvgKmh:    18,
			WindGustKmh:   55,
			CloudCoverPct: 80,
			CAPEJPerKg:    250,
		},
		AdjustedTemp:      TempRange{Lo: 0, Hi: 9},
		FreezingLevelM:    2200,
		FreezingLevel100M: 22,
		CloudBaseM:        cloudLow,
		CloudBase100M:     18,
		CloudBaseKnown:    true,
		Danger:            Danger2,
		Thunder:           ThunderPossible,
	}
	if diff := cmp.Diff(want, zones[0].Series[0]); diff != "" {
		t.Fatalf("worst case mismatch (-want +got):\n%s", diff)
	}
}

func TestCollapse(t *testing.T) {
	t.Run("folds worst case across time", func(t *testing.T) {
		mild := zoneSample(12, 0.5, 10)
		mild.Danger = Danger1
		rough := zoneSample(4, 3, 25)
		rough.WindGustKmh = 70
		rough.Thunder = ThunderPossible

		c, ok := Collapse([]EnrichedSample{mild, rough})

		require.True(t, ok)
		assert.Equal(t, TempRange{Lo: 4, Hi: 12}, c.AdjustedTemp)
		assert.Equal(t, 70.0, c.WindGustKmh)
		assert.Equal(t, Danger1, c.Danger)
		assert.Equal(t, ThunderPossible, c.Thunder)
	})

	t.Run("empty series", func(t *testing.T) {
		_, ok := Collapse(nil)
		assert.False(t, ok)
	})
}

func TestZoneCloudBaseFromReportingMembers(t *testing.T) {
	th := testZoneThresholds()

	known := zoneSample(10, 1, 15)
	known.CloudBaseM = 2200
	known.CloudBase100M = 22
	known.CloudBaseKnown = true
	unknown := zoneSample(10, 1, 15)

	t.Run("one reporting member keeps the base known", func(t *testing.T) {
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", unknown),
			zoneMember("LAKEVE", known),
		}, th)

		require.Len(t, zones, 1)
		rep := zones[0].Series[0]
		assert.True(t, rep.CloudBaseKnown)
		assert.Equal(t, 2200.0, rep.CloudBaseM)
	})

	t.Run("no reporting members stays unavailable", func(t *testing.T) {
		zones := GroupZones([]WaypointSeries{
			zoneMember("TRAILH", unknown),
			zoneMember("LAKEVE", unknown),
		}, th)

		require.Len(t, zones, 1)
		assert.False(t, zones[0].Series[0].CloudBaseKnown)
	})
}
