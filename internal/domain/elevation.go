package domain

import "math"

// DefaultLapseRate is the temperature decrease in °C per 100 m of elevation
// gain, the standard environmental lapse rate.
const DefaultLapseRate = 0.65

// AdjustTempRange corrects a grid-level temperature range from the cell's
// terrain elevation to a target elevation using the given lapse rate
// (°C per 100 m). The correction applies to both endpoints independently, so
// the range width is preserved and AdjustTempRange(r, e, e, l) == r exactly.
func AdjustTempRange(r TempRange, baseElevM, targetElevM, lapseRate float64) TempRange {
	delta := (targetElevM - baseElevM) / 100 * lapseRate
	return TempRange{Lo: r.Lo - delta, Hi: r.Hi - delta}
}

// FreezingLevelM computes the elevation where temperature crosses 0 °C,
// extrapolating from the grid-level base temperature with the lapse rate.
// When the base temperature is at or below freezing the freezing level is the
// base elevation itself: the whole column above is frozen.
func FreezingLevelM(baseElevM, baseTempC, lapseRate float64) float64 {
	if baseTempC <= 0 {
		return baseElevM
	}
	return baseElevM + baseTempC/lapseRate*100
}

// DisplayHundreds floors a meter value to whole hundreds of meters, the
// compact display unit used in rendered rows ("f28" = 2800-2899 m).
func DisplayHundreds(m float64) int {
	return int(math.Floor(m / 100))
}
