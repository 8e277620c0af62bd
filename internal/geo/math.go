package geo

import (
	"errors"
	"fmt"
	"math"
)

// TileSize is the edge of one raster tile in pixels.
const TileSize = 256

// WGS84 ellipsoid axes in meters.
const (
	SemiMajorAxis = 6378137.0
	SemiMinorAxis = 6356752.3142
)

var (
	// ErrProjection is returned when the projection produced a non-finite value.
	ErrProjection = errors.New("geo: coordinate cannot be projected")
	// ErrZoom is returned for negative zoom levels.
	ErrZoom = errors.New("geo: invalid zoom level")
)

const degToRad = math.Pi / 180.0

// eccentricity of the WGS84 ellipsoid, ~0.0818191908426.
var eccentricity = func() float64 {
	f := (SemiMajorAxis - SemiMinorAxis) / SemiMajorAxis
	return math.Sqrt(2*f - f*f)
}()

// CoordinateToTile converts a geographic coordinate to tile indexes at the given zoom.
//
// Longitude maps linearly onto the 2^zoom columns. Latitude goes through the
// ellipsoidal (WGS84) Mercator projection using the conformal latitude, so rows
// differ from the spherical Web Mercator grid at the same zoom. Poles are not
// special-cased: a non-finite intermediate value is reported as ErrProjection.
func CoordinateToTile(c Coordinate, zoom int) (x, y int, err error) {
	if zoom < 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrZoom, zoom)
	}

	n := math.Ldexp(1, zoom)
	tx := (c.Lon + 180.0) / 360.0 * n

	pixelY := toPixelY(MercatorY(c.Lat), zoom)
	ty := pixelY / TileSize

	if !finite(tx) || !finite(ty) {
		return 0, 0, fmt.Errorf("%w: %s at zoom %d", ErrProjection, c, zoom)
	}

	return int(math.Floor(tx)), int(math.Floor(ty)), nil
}

// MercatorY returns the ellipsoidal Mercator northing in meters for a latitude in degrees.
func MercatorY(lat float64) float64 {
	rLat := lat * degToRad
	e := eccentricity

	m := math.Tan(math.Pi/4+rLat/2) /
		math.Pow(math.Tan(math.Pi/4+math.Asin(e*math.Sin(rLat))/2), e)

	return SemiMajorAxis * math.Log(m)
}

// toPixelY converts a Mercator northing to a global pixel row at zoom.
func toPixelY(mercY float64, zoom int) float64 {
	circumference := 2 * math.Pi * SemiMajorAxis
	half := circumference / 2.0
	scale := math.Ldexp(1, zoom+8) * (1.0 / circumference)

	return (half - mercY) * scale
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
