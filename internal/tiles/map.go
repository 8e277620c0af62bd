// Package tiles models a rectangular set of map tiles and their on-disk state.
package tiles

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"

	"github.com/woozymasta/satloader/internal/download"
	"github.com/woozymasta/satloader/internal/geo"
)

// Provider defaults.
const (
	DefaultRoot   = "maps"
	DefaultHost   = "core-sat.maps.yandex.net"
	DefaultLocale = "ru_RU"
)

// ErrInvalidBounds is returned when a bounding box projects to an empty tile rectangle.
var ErrInvalidBounds = errors.New("tiles: invalid bounds")

// Config describes a map to build.
type Config struct {
	Name    string
	Bounds  geo.BoundingBox
	Zoom    int
	Layer   string
	Version string

	// Root is the directory all maps are stored under.
	Root string
	// Host and Locale are used in tile URLs.
	Host   string
	Locale string
}

func (c Config) withDefaults() Config {
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Layer == "" {
		c.Layer = LayerSatellite
	}
	return c
}

// Map is the immutable set of tiles covering a bounding box at one zoom.
type Map struct {
	cfg   Config
	rect  image.Rectangle
	tiles []Tile
}

// NewMap projects both corners of cfg.Bounds and enumerates the tiles between them.
func NewMap(cfg Config) (*Map, error) {
	cfg = cfg.withDefaults()

	x1, y1, err := geo.CoordinateToTile(cfg.Bounds.Corner1, cfg.Zoom)
	if err != nil {
		return nil, fmt.Errorf("map %s: corner1: %w", cfg.Name, err)
	}
	x2, y2, err := geo.CoordinateToTile(cfg.Bounds.Corner2, cfg.Zoom)
	if err != nil {
		return nil, fmt.Errorf("map %s: corner2: %w", cfg.Name, err)
	}

	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("%w: map %s: tiles (%d,%d)-(%d,%d) at zoom %d",
			ErrInvalidBounds, cfg.Name, x1, y1, x2, y2, cfg.Zoom)
	}

	return newMap(cfg, x1, y1, x2, y2), nil
}

func newMap(cfg Config, x1, y1, x2, y2 int) *Map {
	m := &Map{
		cfg:  cfg,
		rect: image.Rect(x1, y1, x2, y2),
	}

	m.tiles = make([]Tile, 0, m.rect.Dx()*m.rect.Dy())
	for x := x1; x < x2; x++ {
		for y := y1; y < y2; y++ {
			m.tiles = append(m.tiles, Tile{
				X:       x,
				Y:       y,
				Z:       cfg.Zoom,
				Layer:   cfg.Layer,
				Version: cfg.Version,
				m:       m,
			})
		}
	}

	return m
}

// Name returns the map name.
func (m *Map) Name() string { return m.cfg.Name }

// Zoom returns the zoom level of every tile.
func (m *Map) Zoom() int { return m.cfg.Zoom }

// Layer returns the provider layer id.
func (m *Map) Layer() string { return m.cfg.Layer }

// Len returns the number of tiles.
func (m *Map) Len() int { return len(m.tiles) }

// Width returns the number of tile columns.
func (m *Map) Width() int { return m.rect.Dx() }

// Height returns the number of tile rows.
func (m *Map) Height() int { return m.rect.Dy() }

// Rect returns the tile rectangle [x1,x2)x[y1,y2).
func (m *Map) Rect() image.Rectangle { return m.rect }

// Path returns the directory tiles are stored in: <root>/<name>/<zoom>.
func (m *Map) Path() string {
	return filepath.Join(m.cfg.Root, m.cfg.Name, strconv.Itoa(m.cfg.Zoom))
}

// Tiles returns the tiles in row-major order (x outer, y inner).
func (m *Map) Tiles() []Tile {
	out := make([]Tile, len(m.tiles))
	copy(out, m.tiles)
	return out
}

// Tile returns the tile at x, y.
func (m *Map) Tile(x, y int) (Tile, bool) {
	if !image.Pt(x, y).In(m.rect) {
		return Tile{}, false
	}
	return m.tiles[(x-m.rect.Min.X)*m.rect.Dy()+(y-m.rect.Min.Y)], true
}

// Objects returns the tiles as download objects, in the same order as Tiles.
func (m *Map) Objects() []download.Downloadable {
	objs := make([]download.Downloadable, len(m.tiles))
	for i, t := range m.tiles {
		objs[i] = t
	}
	return objs
}

// Summary counts tiles per status by inspecting the filesystem.
func (m *Map) Summary() Summary {
	var s Summary
	for _, t := range m.tiles {
		s.add(t.Status())
	}
	return s
}
