package domain

// ZoneThresholds are the per-time-step deltas under which two adjacent
// waypoints count as the same weather.
type ZoneThresholds struct {
	TempC    float64
	PrecipMM float64
	WindKmh  float64
}

// WaypointSeries pairs a waypoint with its enriched forecast series for one
// request.
type WaypointSeries struct {
	Waypoint Waypoint
	Samples  []EnrichedSample
}

// Zone is a run of consecutive route waypoints whose forecasts are close
// enough to report as one row. Codes keeps route order. Series is the
// element-wise worst case across members, never an average.
type Zone struct {
	ID     int
	Codes  []string
	Series []EnrichedSample
}

// GroupZones partitions the members into zones with a single pass in route
// order. Each waypoint is compared against its route predecessor only, which
// is the member most recently added to the open zone. It joins when every
// time step stays inside all three thresholds at once, otherwise it opens a
// new zone. Searching earlier zones would change the reported zone counts,
// so the pass never looks further back.
func GroupZones(members []WaypointSeries, t ZoneThresholds) []Zone {
	if len(members) == 0 {
		return nil
	}

	zones := []Zone{newZone(1, members[0])}
	prev := members[0]
	for _, m := range members[1:] {
		if seriesClose(prev.Samples, m.Samples, t) {
			last := &zones[len(zones)-1]
			last.Codes = append(last.Codes, m.Waypoint.Code)
			mergeWorstCase(last.Series, m.Samples)
		} else {
			zones = append(zones, newZone(len(zones)+1, m))
		}
		prev = m
	}
	return zones
}

func newZone(id int, m WaypointSeries) Zone {
	series := make([]EnrichedSample, len(m.Samples))
	copy(series, m.Samples)
	return Zone{ID: id, Codes: []string{m.Waypoint.Code}, Series: series}
}

// seriesClose reports whether two series match within thresholds at every
// time step. Series of different lengths never match.
func seriesClose(a, b []EnrichedSample, t ZoneThresholds) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if abs(a[i].AdjustedTemp.Mid()-b[i].AdjustedTemp.Mid()) > t.TempC {
			return false
		}
		if abs(a[i].Precip.Mid()-b[i].Precip.Mid()) > t.PrecipMM {
			return false
		}
		if abs(a[i].WindAvgKmh-b[i].WindAvgKmh) > t.WindKmh {
			return false
		}
	}
	return true
}

// mergeWorstCase folds src into dst element by element, keeping the riskier
// value of every reported field at each time step.
func mergeWorstCase(dst []EnrichedSample, src []EnrichedSample) {
	for i := range dst {
		mergeSampleWorstCase(&dst[i], src[i])
	}
}

// mergeSampleWorstCase keeps the riskier value of every reported field.
// Temperature ranges widen, amounts and severities take the maximum, and
// ceilings (freezing level, cloud base) take the minimum.
func mergeSampleWorstCase(d *EnrichedSample, s EnrichedSample) {
	d.AdjustedTemp.Lo = min(d.AdjustedTemp.Lo, s.AdjustedTemp.Lo)
	d.AdjustedTemp.Hi = max(d.AdjustedTemp.Hi, s.AdjustedTemp.Hi)
	d.Temp.Lo = min(d.Temp.Lo, s.Temp.Lo)
	d.Temp.Hi = max(d.Temp.Hi, s.Temp.Hi)

	d.RainProbPct = max(d.RainProbPct, s.RainProbPct)
	d.Precip.Lo = max(d.Precip.Lo, s.Precip.Lo)
	d.Precip.Hi = max(d.Precip.Hi, s.Precip.Hi)
	d.PrecipType = mergePrecipType(d.PrecipType, s.PrecipType)

	d.WindAvgKmh = max(d.WindAvgKmh, s.WindAvgKmh)
	d.WindGustKmh = max(d.WindGustKmh, s.WindGustKmh)
	d.CloudCoverPct = max(d.CloudCoverPct, s.CloudCoverPct)
	d.CAPEJPerKg = max(d.CAPEJPerKg, s.CAPEJPerKg)

	if s.FreezingLevelM < d.FreezingLevelM {
		d.FreezingLevelM = s.FreezingLevelM
		d.FreezingLevel100M = s.FreezingLevel100M
	}
	// Cloud base stays known as long as any member reports one.
	if s.CloudBaseKnown && (!d.CloudBaseKnown || s.CloudBaseM < d.CloudBaseM) {
		d.CloudBaseM = s.CloudBaseM
		d.CloudBase100M = s.CloudBase100M
		d.CloudBaseKnown = true
	}

	if s.Danger > d.Danger {
		d.Danger = s.Danger
	}
	if thunderRank(s.Thunder) > thunderRank(d.Thunder) {
		d.Thunder = s.Thunder
	}
}

// Collapse folds a series into a single worst-case sample across its time
// steps, for one-row-per-zone summaries. Returns false for an empty series.
func Collapse(series []EnrichedSample) (EnrichedSample, bool) {
	if len(series) == 0 {
		return EnrichedSample{}, false
	}
	out := series[0]
	for _, s := range series[1:] {
		mergeSampleWorstCase(&out, s)
	}
	return out, true
}

// mergePrecipType keeps the phase that covers both inputs.
func mergePrecipType(a, b PrecipType) PrecipType {
	switch {
	case a == b:
		return a
	case a == PrecipNone:
		return b
	case b == PrecipNone:
		return a
	default:
		return PrecipMixed
	}
}

func thunderRank(t ThunderIndicator) int {
	switch t {
	case ThunderLikely:
		return 2
	case ThunderPossible:
		return 1
	default:
		return 0
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
