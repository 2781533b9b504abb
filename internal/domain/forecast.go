package domain

import "time"

// PrecipType classifies the dominant precipitation phase of a sample.
type PrecipType string

const (
	PrecipNone  PrecipType = "none"
	PrecipRain  PrecipType = "rain"
	PrecipSnow  PrecipType = "snow"
	PrecipMixed PrecipType = "mixed"
)

// DangerLevel is the discrete hazard severity reported to the hiker.
// Zero value means no flagged hazard.
type DangerLevel int

const (
	DangerNone DangerLevel = iota
	Danger1
	Danger2
	Danger3
)

// ThunderIndicator classifies convective potential from CAPE.
type ThunderIndicator string

const (
	ThunderNone     ThunderIndicator = "none"
	ThunderPossible ThunderIndicator = "possible"
	ThunderLikely   ThunderIndicator = "likely"
)

// TempRange is a low/high temperature pair in °C. Lo <= Hi always holds for
// ranges produced by this package.
type TempRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Mid returns the range midpoint.
func (r TempRange) Mid() float64 { return (r.Lo + r.Hi) / 2 }

// MMRange is a low/high precipitation amount pair in millimeters of water
// equivalent.
type MMRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Mid returns the range midpoint.
func (r MMRange) Mid() float64 { return (r.Lo + r.Hi) / 2 }

// ForecastSample is one normalized time step of grid-cell model output, as
// written by the ingestion service. Read-only here.
type ForecastSample struct {
	ValidAt       time.Time  `json:"valid_at"`
	Temp          TempRange  `json:"temp_c"`
	RainProbPct   float64    `json:"rain_probability_pct"`
	Precip        MMRange    `json:"precip_mm"`
	PrecipType    PrecipType `json:"precip_type"`
	WindAvgKmh    float64    `json:"wind_avg_kmh"`
	WindGustKmh   float64    `json:"wind_gust_kmh"`
	WindDirection string     `json:"wind_direction"`
	CloudCoverPct float64    `json:"cloud_cover_pct"`
	CAPEJPerKg    float64    `json:"cape_j_per_kg"`

	// CloudBaseAGLM is meters above ground level; nil when the provider did
	// not report one. Never fabricated downstream.
	CloudBaseAGLM *float64 `json:"cloud_base_agl_m,omitempty"`

	SourceProvider string `json:"source_provider"`
}

// RainMM is the upper-bound liquid rain amount of the sample in millimeters.
// Hazard checks use the upper bound; understating precipitation is worse
// than overstating it.
func (s ForecastSample) RainMM() float64 {
	switch s.PrecipType {
	case PrecipRain, PrecipMixed:
		return s.Precip.Hi
	default:
		return 0
	}
}

// SnowCM is the upper-bound snow accumulation in centimeters, converted at
// one centimeter per millimeter of water equivalent.
func (s ForecastSample) SnowCM() float64 {
	switch s.PrecipType {
	case PrecipSnow, PrecipMixed:
		return s.Precip.Hi
	default:
		return 0
	}
}

// CellSeries is the forecast time series for one grid cell, plus the model
// terrain elevation the samples are valid at.
type CellSeries struct {
	Cell       GridCell
	ElevationM float64
	Samples    []ForecastSample
}

// EnrichedSample is a ForecastSample after elevation adjustment, derived-value
// computation, and danger rating for a specific waypoint. Recomputed per
// request, never persisted.
type EnrichedSample struct {
	ForecastSample

	// AdjustedTemp is the grid temperature range corrected from the cell's
	// terrain elevation to the waypoint's elevation.
	AdjustedTemp TempRange

	// FreezingLevelM is the meter-precision freezing level above sea level,
	// used for hazard comparisons. FreezingLevel100M is the same value in
	// whole hundreds of meters, floored, used for display.
	FreezingLevelM    float64
	FreezingLevel100M int

	// CloudBaseM is the cloud base above sea level (cell elevation plus the
	// provider's above-ground value); CloudBase100M is the floored display
	// form. Both are valid only when CloudBaseKnown is true.
	CloudBaseM     float64
	CloudBase100M  int
	CloudBaseKnown bool

	Danger  DangerLevel
	Thunder ThunderIndicator
}

// LightHours is the civil-twilight daylight window at the route's reference
// location, in the route's local time zone.
type LightHours struct {
	Dawn time.Time
	Dusk time.Time

	// Known is false at extreme latitudes/dates where the sun never crosses
	// civil twilight; dawn/dusk are zero then.
	Known bool
}
