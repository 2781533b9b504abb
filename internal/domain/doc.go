// Package domain models route weather forecasts and their compilation into
// SMS-deliverable form.
//
// # Data Source
//
// Forecast samples originate from the upstream ingestion service, which pulls
// gridded model output (temperature, precipitation, wind, cloud, CAPE) from
// the weather providers, normalizes units and elevation baselines, and writes
// one time series per grid cell to the forecast store. This package never
// talks to a weather provider; it consumes normalized samples and reference
// data (routes, waypoints, subscriptions) supplied by collaborators.
//
// # Grid Convention
//
// A region is a fixed rectangle of the model grid anchored at its north-west
// corner. Cell indices are derived, never stored:
//
//	row = floor((origin_lat - lat) / spacing)   rows grow southward
//	col = floor((lon - origin_lon) / spacing)   cols grow eastward
//
// floor is toward negative infinity, so points exactly on the north or west
// edge belong to row/col 0 and a point epsilon north of the origin is row -1,
// which is out of range. Coordinates outside the region fail with
// [ErrCoordinateOutOfRange]; they are never clamped to the nearest cell.
//
// # Elevation Convention
//
// Grid-level values are valid at the cell's model terrain elevation.
// Temperatures are adjusted to waypoint elevation with a configurable lapse
// rate (default 0.65 °C per 100 m), applied to both endpoints of the range so
// a range never collapses to a point. Ad-hoc GPS requests resolve their
// target elevation through the terrain source; when that lookup fails the
// cell's own elevation stands in, which makes the adjustment a no-op.
//
// Freezing level:
//
//	base_elev + (base_temp / lapse) * 100   when base_temp > 0
//	base_elev                               otherwise
//
// where base_temp is the midpoint of the grid-level temperature range.
// Displayed in hundreds of meters, floored: 2850 m → "f28".
//
// Cloud base is a provider field passed through when present and marked
// unavailable when absent; it is never estimated here. Stored above ground
// level, compared and displayed above sea level (cell elevation added).
//
// # Danger Rating
//
// Four independent hazard factors each contribute at most 1 to a count:
//
//	ice     waypoint elevation above the freezing level
//	blind   waypoint elevation above cloud base with cloud cover >= 90%
//	wind    gust at or above the subscriber tier's danger threshold
//	precip  heavy rain and heavy snow simultaneously (mixed events)
//
// Count 0 → none, 1 → level 1, 2 → level 2, >=3 → level 3. A gust at or
// above the severe threshold forces level 3 regardless of count. The
// thunderstorm indicator is classified from CAPE (>=400 J/kg likely, 200-399
// possible) and rides alongside the level without ever replacing it. All
// thresholds are injected configuration.
//
// # Zones
//
// Multi-waypoint summaries group consecutive waypoints whose forecasts are
// near-identical. Grouping is a single pass in route order: each waypoint may
// join only the immediately preceding zone, and only if temperature midpoint,
// precipitation midpoint, and average wind all stay within thresholds against
// its route-order predecessor at every time step. A zone's representative
// series is the element-wise worst case across members (widest temperature
// range, highest precipitation and wind, lowest freezing level and cloud
// base), never an average: understating risk to a hiker is not acceptable.
//
// # Waypoint Codes
//
// Codes are canonical identifiers of at most 6 characters, unique per route
// (e.g. BEARPK, LAKEVE). Senders may shorten them; a prefix matching exactly
// one code resolves, a prefix matching several opens a disambiguation
// exchange listing each candidate with its distinguishing character.
package domain
