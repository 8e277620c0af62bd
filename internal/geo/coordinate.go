// Package geo handles geographic coordinates and their projection onto the tile grid.
package geo

import (
	"strconv"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Point returns the coordinate as an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// BoundingBox is an area of interest given by two opposite corners.
// Corner1 is expected to be the north-west corner; projecting the corners in
// the other order yields an empty tile rectangle.
type BoundingBox struct {
	Corner1 Coordinate `yaml:"coord1" json:"coord1"`
	Corner2 Coordinate `yaml:"coord2" json:"coord2"`
}

// Bound returns the order-insensitive extent of the box.
func (b BoundingBox) Bound() orb.Bound {
	p := b.Corner1.Point()
	return orb.Bound{Min: p, Max: p}.Extend(b.Corner2.Point())
}

// InRange reports whether both corners lie within valid WGS84 ranges.
func (b BoundingBox) InRange() bool {
	bound := b.Bound()
	return bound.Min.Lat() >= -90 && bound.Max.Lat() <= 90 &&
		bound.Min.Lon() >= -180 && bound.Max.Lon() <= 180
}
