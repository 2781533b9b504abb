package domain

import (
	"fmt"
	"math"
)

// GridCell is a weather-model grid index within a region. Row grows
// southward from the region's north edge, col eastward from its west edge.
type GridCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c GridCell) String() string { return fmt.Sprintf("r%dc%d", c.Row, c.Col) }

// Region is the fixed-origin grid covering one supported route area. Origin
// is the north-west corner; SpacingDeg is the cell size in degrees for both
// axes.
type Region struct {
	Name       string
	OriginLat  float64
	OriginLon  float64
	SpacingDeg float64
	Rows       int
	Cols       int
}

// Resolve maps coordinates to the containing grid cell using floor toward
// negative infinity, so the north and west edges belong to index 0 and a
// point on the south or east boundary is already out of range. Coordinates
// outside the region fail with [ErrCoordinateOutOfRange]; they are never
// clamped.
func (rg Region) Resolve(lat, lon float64) (GridCell, error) {
	row := int(math.Floor((rg.OriginLat - lat) / rg.SpacingDeg))
	col := int(math.Floor((lon - rg.OriginLon) / rg.SpacingDeg))

	if row < 0 || row >= rg.Rows || col < 0 || col >= rg.Cols {
		return GridCell{}, fmt.Errorf("%w: %.4f,%.4f not in %s", ErrCoordinateOutOfRange, lat, lon, rg.Name)
	}
	return GridCell{Row: row, Col: col}, nil
}

// CellCenter returns the center coordinates of a cell, the point sampled for
// terrain lookups.
func (rg Region) CellCenter(cell GridCell) (lat, lon float64) {
	lat = rg.OriginLat - (float64(cell.Row)+0.5)*rg.SpacingDeg
	lon = rg.OriginLon + (float64(cell.Col)+0.5)*rg.SpacingDeg
	return lat, lon
}

// Contains reports whether coordinates fall inside the region's bounding box.
func (rg Region) Contains(lat, lon float64) bool {
	_, err := rg.Resolve(lat, lon)
	return err == nil
}
