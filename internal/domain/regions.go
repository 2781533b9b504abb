package domain

// regions is the catalog of supported forecast grids. Adding a region means
// adding its grid geometry here and pointing the ingestion service at it.
var regions = map[string]Region{
	"sierra": {
		Name:       "sierra",
		OriginLat:  38.50,
		OriginLon:  -120.00,
		SpacingDeg: 0.05,
		Rows:       80,
		Cols:       60,
	},
	"cascades": {
		Name:       "cascades",
		OriginLat:  49.00,
		OriginLon:  -122.50,
		SpacingDeg: 0.05,
		Rows:       120,
		Cols:       50,
	},
}

// RegionByName looks up a supported region's grid geometry.
func RegionByName(name string) (Region, bool) {
	r, ok := regions[name]
	return r, ok
}
