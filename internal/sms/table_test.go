package sms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

func tableSample() domain.EnrichedSample {
	return domain.EnrichedSample{
		ForecastSample: domain.ForecastSample{
			ValidAt:     time.Date(2025, 8, 26, 6, 0, 0, 0, time.UTC),
			RainProbPct: 20.4,
			Precip:      domain.MMRange{Lo: 0, Hi: 0},
			PrecipType:  domain.PrecipNone,
			WindAvgKmh:  15.2,
			WindGustKmh: 30.4,
		},
		AdjustedTemp:      domain.TempRange{Lo: 3.2, Hi: 13.4},
		FreezingLevelM:    2338.46,
		FreezingLevel100M: 23,
		CloudBaseM:        2000,
		CloudBase100M:     20,
		CloudBaseKnown:    true,
	}
}

func TestForecastRow(t *testing.T) {
	t.Run("calm hour", func(t *testing.T) {
		row := ForecastRow(tableSample(), time.UTC)
		assert.Equal(t, "06|3/13|r20|p0.0|w15/30|f23c20", row)
	})

	t.Run("flagged hour", func(t *testing.T) {
		e := tableSample()
		e.ValidAt = time.Date(2025, 8, 26, 15, 0, 0, 0, time.UTC)
		e.PrecipType = domain.PrecipSnow
		e.RainProbPct = 80
		e.Precip = domain.MMRange{Lo: 2, Hi: 4.5}
		e.WindAvgKmh = 25
		e.WindGustKmh = 65
		e.Danger = domain.Danger2
		e.Thunder = domain.ThunderPossible
		e.CloudBaseKnown = false

		row := ForecastRow(e, time.UTC)
		assert.Equal(t, "15|3/13|s80|p4.5|w25/65|D2T?f23c--", row)
	})

	t.Run("negative temperatures", func(t *testing.T) {
		e := tableSample()
		e.AdjustedTemp = domain.TempRange{Lo: -2.5, Hi: 5.5}

		row := ForecastRow(e, time.UTC)
		assert.Equal(t, "06|-3/6|r20|p0.0|w15/30|f23c20", row)
	})

	t.Run("hour renders in the given zone", func(t *testing.T) {
		e := tableSample()
		pacific := time.FixedZone("PDT", -7*3600)

		row := ForecastRow(e, pacific)
		// 06:00 UTC is 23:00 the previous evening in PDT.
		assert.Equal(t, "23", row[:2])
	})

	t.Run("worst case row fits the line budget", func(t *testing.T) {
		e := tableSample()
		e.AdjustedTemp = domain.TempRange{Lo: -22.4, Hi: -15.2}
		e.PrecipType = domain.PrecipMixed
		e.RainProbPct = 100
		e.Precip = domain.MMRange{Lo: 10, Hi: 12.5}
		e.WindAvgKmh = 120
		e.WindGustKmh = 180
		e.Danger = domain.Danger3
		e.Thunder = domain.ThunderLikely
		e.CloudBaseKnown = false

		row := ForecastRow(e, time.UTC)
		assert.LessOrEqual(t, len(row), DefaultBudget().LineChars)
	})
}

func TestSummaryRow(t *testing.T) {
	t.Run("collapses the series to worst case", func(t *testing.T) {
		calm := tableSample()
		rough := tableSample()
		rough.AdjustedTemp = domain.TempRange{Lo: 1.6, Hi: 9.4}
		rough.RainProbPct = 45.2
		rough.PrecipType = domain.PrecipMixed
		rough.WindGustKmh = 48.7
		rough.Danger = domain.Danger3
		rough.Thunder = domain.ThunderLikely

		z := domain.Zone{
			ID:     1,
			Codes:  []string{"BEARPK"},
			Series: []domain.EnrichedSample{calm, rough},
		}

		assert.Equal(t, "BEARPK|2/13|m45|w49|D3T!", SummaryRow(z))
	})

	t.Run("no flags column when nothing flagged", func(t *testing.T) {
		z := domain.Zone{
			ID:     1,
			Codes:  []string{"TRAILH", "LAKEVE"},
			Series: []domain.EnrichedSample{tableSample()},
		}

		assert.Equal(t, "TRAILH+LAKEVE|3/13|r20|w30", SummaryRow(z))
	})
}

func TestZoneLabel(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  string
	}{
		{"single member", []string{"TRAILH"}, "TRAILH"},
		{"pair", []string{"TRAILH", "LAKEVE"}, "TRAILH+LAKEVE"},
		{"run of three", []string{"TRAILH", "LAKEVE", "BEARPK"}, "TRAILH-BEARPK"},
		{"long run", []string{"A", "B", "C", "D", "E"}, "A-E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZoneLabel(domain.Zone{Codes: tt.codes}))
		})
	}
}

func TestTitleLine(t *testing.T) {
	pacific := time.FixedZone("PDT", -7*3600)
	date := time.Date(2025, 8, 26, 10, 0, 0, 0, pacific)

	t.Run("with light hours", func(t *testing.T) {
		light := domain.LightHours{
			Dawn:  time.Date(2025, 8, 26, 5, 42, 0, 0, pacific),
			Dusk:  time.Date(2025, 8, 26, 19, 51, 0, 0, pacific),
			Known: true,
		}

		assert.Equal(t, "Bear Peak 26Aug 0542-1951", TitleLine("Bear Peak", date, light))
	})

	t.Run("without light hours", func(t *testing.T) {
		assert.Equal(t, "Bear Peak 26Aug", TitleLine("Bear Peak", date, domain.LightHours{}))
	})

	t.Run("single digit day", func(t *testing.T) {
		d := time.Date(2025, 8, 5, 10, 0, 0, 0, pacific)
		assert.Equal(t, "Bear Peak 5Aug", TitleLine("Bear Peak", d, domain.LightHours{}))
	})

	t.Run("name is transliterated", func(t *testing.T) {
		got := TitleLine("Peña – Alta", date, domain.LightHours{})
		assert.Equal(t, "Peña - Alta 26Aug", got)
	})
}

func TestUnavailableNotice(t *testing.T) {
	assert.Equal(t, "1 location unavailable", UnavailableNotice(1))
	assert.Equal(t, "3 locations unavailable", UnavailableNotice(3))
}

func TestWrapCodes(t *testing.T) {
	codes := []string{"TRAILH", "LAKEVE", "LAKEVU", "BEARPK", "RIDGEC"}

	t.Run("wraps at width", func(t *testing.T) {
		lines := WrapCodes(codes, 13)
		assert.Equal(t, []string{"TRAILH LAKEVE", "LAKEVU BEARPK", "RIDGEC"}, lines)
	})

	t.Run("single line when it fits", func(t *testing.T) {
		lines := WrapCodes(codes[:2], 42)
		assert.Equal(t, []string{"TRAILH LAKEVE"}, lines)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, WrapCodes(nil, 42))
	})
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ABCDE", Fit("ABCDEFGH", 5))
	assert.Equal(t, "AB", Fit("AB", 5))
	require.Equal(t, "Peñ", Fit("Peña", 3))
}
