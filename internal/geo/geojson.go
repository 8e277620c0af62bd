package geo

import (
	"github.com/paulmach/orb/geojson"
)

// Feature returns the box as a GeoJSON polygon with a copy of props.
func (b BoundingBox) Feature(props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(b.Bound().ToPolygon())
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}
