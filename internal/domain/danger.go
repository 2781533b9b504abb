package domain

// Rate scores one enriched sample against the section's peak elevation.
// Four independent factors each contribute at most one to the hazard count:
//
//   - ice: the peak rises above the freezing level
//   - blind: the peak rises above cloud base while cover is near-total
//   - wind: gusts at or above the tier's danger speed
//   - precip: heavy rain and heavy snow at the same time
//
// Count 0 is no rating, 1 and 2 map to levels 1 and 2, three or more is
// level 3. Gusts at or above the severe speed force level 3 outright. The
// thunderstorm indicator is derived independently from CAPE and augments the
// level rather than feeding the count.
func Rate(e EnrichedSample, peakElevM float64, t Thresholds) (DangerLevel, ThunderIndicator) {
	thunder := ClassifyThunder(e.CAPEJPerKg, t)

	if e.WindGustKmh >= t.WindSevereKmh {
		return Danger3, thunder
	}

	count := 0
	if peakElevM > e.FreezingLevelM {
		count++
	}
	// Blind requires a reported cloud base; an unavailable base never counts.
	if e.CloudBaseKnown && peakElevM > e.CloudBaseM && e.CloudCoverPct >= t.BlindCloudCoverPct {
		count++
	}
	if e.WindGustKmh >= t.WindDangerKmh {
		count++
	}
	if e.RainMM() >= t.PrecipRainMM && e.SnowCM() >= t.PrecipSnowCM {
		count++
	}

	switch {
	case count >= 3:
		return Danger3, thunder
	case count == 2:
		return Danger2, thunder
	case count == 1:
		return Danger1, thunder
	default:
		return DangerNone, thunder
	}
}
