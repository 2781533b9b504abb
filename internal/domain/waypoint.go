package domain

// WaypointKind distinguishes the flavors of route reference points.
type WaypointKind string

const (
	WaypointCamp WaypointKind = "camp"
	WaypointPeak WaypointKind = "peak"
	WaypointPOI  WaypointKind = "poi"
)

// Waypoint is immutable route reference data. Code is the canonical
// identifier hikers text in, at most 6 characters and unique per route.
type Waypoint struct {
	ID         int64
	Code       string
	Name       string
	Kind       WaypointKind
	Lat        float64
	Lon        float64
	ElevationM float64
}

// Route is an ordered set of waypoints plus the reference location used for
// light hours and the region whose grid covers it.
type Route struct {
	ID       int64
	Code     string
	Name     string
	RefLat   float64
	RefLon   float64
	Timezone string
	Region   string

	// Waypoints are in route order; the zone grouper depends on this order.
	Waypoints []Waypoint
}

// WaypointByCode returns the waypoint with the exact code, if any.
func (r Route) WaypointByCode(code string) (Waypoint, bool) {
	for _, w := range r.Waypoints {
		if w.Code == code {
			return w, true
		}
	}
	return Waypoint{}, false
}

// CodesWithPrefix returns, in route order, the codes the given prefix
// matches. An exact code match returns only that code.
func (r Route) CodesWithPrefix(prefix string) []string {
	var matches []string
	for _, w := range r.Waypoints {
		if w.Code == prefix {
			return []string{w.Code}
		}
		if len(prefix) < len(w.Code) && w.Code[:len(prefix)] == prefix {
			matches = append(matches, w.Code)
		}
	}
	return matches
}

// Codes returns all waypoint codes in route order.
func (r Route) Codes() []string {
	codes := make([]string, len(r.Waypoints))
	for i, w := range r.Waypoints {
		codes[i] = w.Code
	}
	return codes
}

// ExperienceTier selects the wind danger threshold applied for a subscriber.
type ExperienceTier string

const (
	TierCautious ExperienceTier = "cautious"
	TierStandard ExperienceTier = "standard"
	TierExpert   ExperienceTier = "expert"
)

// Subscription links a sender phone number to a route and the hazard
// thresholds appropriate to their experience.
type Subscription struct {
	Phone   string
	RouteID int64
	Tier    ExperienceTier

	// BillingRegion keys the per-segment cost table; empty falls back to the
	// table's default entry.
	BillingRegion string
}
