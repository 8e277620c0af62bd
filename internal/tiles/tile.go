package tiles

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/satloader/internal/download"

	"github.com/paulmach/orb/maptile"
)

// LayerSatellite is the only layer with a known URL scheme.
const LayerSatellite = "sat"

// MaxZoom is the deepest supported zoom level.
const MaxZoom = 30

var (
	// ErrUnsupportedLayer is returned when a URL is requested for an unknown layer.
	ErrUnsupportedLayer = errors.New("tiles: unsupported layer")
	// ErrInvalidTile is returned when a tile string cannot be parsed.
	ErrInvalidTile = errors.New("tiles: invalid tile")
)

// Tile is one cell of a Map.
type Tile struct {
	X, Y, Z int
	Layer   string
	Version string

	m *Map
}

// Key returns the grid address of the tile.
func (t Tile) Key() maptile.Tile {
	return maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Z))
}

// URL returns the provider URL of the tile.
func (t Tile) URL() (string, error) {
	if t.Layer != LayerSatellite {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLayer, t.Layer)
	}

	return fmt.Sprintf("https://%s/tiles?l=%s&v=%s&x=%d&y=%d&z=%d&scale=1&lang=%s",
		t.m.cfg.Host, t.Layer, t.Version, t.X, t.Y, t.Z, t.m.cfg.Locale), nil
}

// Destination returns the file the tile is stored in.
func (t Tile) Destination() string {
	return filepath.Join(t.m.Path(), strconv.Itoa(t.X)+"-"+strconv.Itoa(t.Y)+".jpg")
}

// Status inspects the filesystem. It is never cached.
func (t Tile) Status() Status {
	dest := t.Destination()

	exists, err := download.FileExists(dest)
	if err != nil {
		return StatusError
	}
	if exists {
		return StatusDownloaded
	}

	o, ok, err := download.ReadMarker(dest)
	switch {
	case err != nil:
		return StatusError
	case !ok:
		return StatusQueued
	case o.NotFound():
		return StatusNotFound
	default:
		return StatusError
	}
}

func (t Tile) String() string {
	return fmt.Sprintf("%d,%d,%d@%s", t.X, t.Y, t.Z, t.Layer)
}

// ParseTile parses "x,y,z,layer" into a tile of a one-tile map described by cfg.
// Zoom and layer of cfg are replaced by the parsed values; the layer may be
// omitted, in which case cfg.Layer is kept.
func ParseTile(s string, cfg Config) (Tile, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 3 || len(parts) > 4 {
		return Tile{}, fmt.Errorf("%w: %q, expected x,y,z,layer", ErrInvalidTile, s)
	}

	var nums [3]uint32
	for i := range nums {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 32)
		if err != nil {
			return Tile{}, fmt.Errorf("%w: %q: bad number %q", ErrInvalidTile, s, parts[i])
		}
		nums[i] = uint32(n)
	}

	if nums[2] > MaxZoom {
		return Tile{}, fmt.Errorf("%w: %q: zoom above %d", ErrInvalidTile, s, MaxZoom)
	}
	x, y := int(nums[0]), int(nums[1])

	cfg.Zoom = int(nums[2])
	if len(parts) == 4 {
		cfg.Layer = strings.TrimSpace(parts[3])
	}

	t := newMap(cfg.withDefaults(), x, y, x+1, y+1).tiles[0]
	if !t.Key().Valid() {
		return Tile{}, fmt.Errorf("%w: %q is outside the zoom %d grid", ErrInvalidTile, s, cfg.Zoom)
	}
	return t, nil
}
