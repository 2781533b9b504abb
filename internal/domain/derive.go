package domain

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// civilTwilightDeg is the solar elevation defining civil twilight; light
// hours run from the morning to the evening crossing.
const civilTwilightDeg = -6.0

// Thresholds bundles the injectable hazard and derived-value parameters. The
// zero value is not usable; build from config defaults.
type Thresholds struct {
	// LapseRate is the temperature decrease in °C per 100 m.
	LapseRate float64

	// CAPE bands for the thunderstorm indicator, J/kg.
	CAPEPossible float64
	CAPELikely   float64

	// BlindCloudCoverPct is the minimum cloud cover for the blind factor
	// when the waypoint sits above cloud base.
	BlindCloudCoverPct float64

	// WindDangerKmh is the gust speed that counts the wind factor; resolved
	// per subscriber tier before rating. WindSevereKmh forces level 3
	// outright.
	WindDangerKmh float64
	WindSevereKmh float64

	// PrecipRainMM and PrecipSnowCM must both be met simultaneously for the
	// precipitation factor (heavy mixed events).
	PrecipRainMM float64
	PrecipSnowCM float64
}

// ClassifyThunder maps CAPE to the thunderstorm indicator using the
// configured bands.
func ClassifyThunder(capeJPerKg float64, t Thresholds) ThunderIndicator {
	switch {
	case capeJPerKg >= t.CAPELikely:
		return ThunderLikely
	case capeJPerKg >= t.CAPEPossible:
		return ThunderPossible
	default:
		return ThunderNone
	}
}

// EnrichSample derives the waypoint-level view of one grid sample: elevation
// adjustment, freezing level, cloud base, danger level, and thunderstorm
// indicator. cellElevM is the model terrain elevation the sample is valid at;
// targetElevM is the waypoint (or ad-hoc GPS terrain) elevation.
func EnrichSample(s ForecastSample, cellElevM, targetElevM float64, t Thresholds) EnrichedSample {
	e := EnrichedSample{ForecastSample: s}

	e.AdjustedTemp = AdjustTempRange(s.Temp, cellElevM, targetElevM, t.LapseRate)

	e.FreezingLevelM = FreezingLevelM(cellElevM, s.Temp.Mid(), t.LapseRate)
	e.FreezingLevel100M = DisplayHundreds(e.FreezingLevelM)

	// Cloud base is a provider field: pass through when present, otherwise
	// mark unavailable. Never estimated.
	if s.CloudBaseAGLM != nil {
		e.CloudBaseM = cellElevM + *s.CloudBaseAGLM
		e.CloudBase100M = DisplayHundreds(e.CloudBaseM)
		e.CloudBaseKnown = true
	}

	e.Danger, e.Thunder = Rate(e, targetElevM, t)
	return e
}

// EnrichSeries enriches every sample of a cell series for one target
// elevation.
func EnrichSeries(cs CellSeries, targetElevM float64, t Thresholds) []EnrichedSample {
	out := make([]EnrichedSample, len(cs.Samples))
	for i, s := range cs.Samples {
		out[i] = EnrichSample(s, cs.ElevationM, targetElevM, t)
	}
	return out
}

// ComputeLightHours returns the civil-twilight window at the reference
// location for the given date, expressed in loc. Known is false when the sun
// never crosses civil twilight that day (polar edge cases).
func ComputeLightHours(lat, lon float64, date time.Time, loc *time.Location) LightHours {
	y, m, d := date.In(loc).Date()
	dawn, dusk := sunrise.TimeOfElevation(lat, lon, civilTwilightDeg, y, m, d)
	if dawn.IsZero() || dusk.IsZero() {
		return LightHours{}
	}
	return LightHours{Dawn: dawn.In(loc), Dusk: dusk.In(loc), Known: true}
}
