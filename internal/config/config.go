// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/woozymasta/satloader/internal/download"
	"github.com/woozymasta/satloader/internal/fetch"
	"github.com/woozymasta/satloader/internal/geo"
	"github.com/woozymasta/satloader/internal/tiles"

	"gopkg.in/yaml.v3"
)

// DefaultVersion is the provider tile version used when none is configured.
const DefaultVersion = "3.1064.0"

// ErrNoMaps is returned by Validate when nothing is configured.
var ErrNoMaps = errors.New("config: no maps configured")

// Config represents the root configuration file structure.
type Config struct {
	// Inline single map, accepted for files describing one map at top level.
	Map `yaml:",inline"`

	Maps    []Map  `yaml:"maps,omitempty"`
	Root    string `yaml:"root,omitempty"`
	Version string `yaml:"version,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Locale  string `yaml:"locale,omitempty"`

	Fetch  Fetch  `yaml:"fetch,omitempty"`
	Pacing Pacing `yaml:"pacing,omitempty"`
}

// Map represents a single area to download.
type Map struct {
	Name   string         `yaml:"name,omitempty"`
	Coord1 geo.Coordinate `yaml:"coord1,omitempty"`
	Coord2 geo.Coordinate `yaml:"coord2,omitempty"`
	Zoom   int            `yaml:"zoom,omitempty"`
	Layer  string         `yaml:"layer,omitempty"`
}

// Fetch configures the tile HTTP client.
type Fetch struct {
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Pacing configures pauses between chunks of successful fetches.
type Pacing struct {
	ChunkMin int           `yaml:"chunk_min,omitempty"`
	ChunkMax int           `yaml:"chunk_max,omitempty"`
	PauseMin time.Duration `yaml:"pause_min,omitempty"`
	PauseMax time.Duration `yaml:"pause_max,omitempty"`
}

// Default returns a Config with provider defaults and no maps.
func Default() Config {
	pacer := download.DefaultRandomPacer()

	return Config{
		Map:     Map{Zoom: 13, Layer: tiles.LayerSatellite},
		Root:    tiles.DefaultRoot,
		Version: DefaultVersion,
		Host:    tiles.DefaultHost,
		Locale:  tiles.DefaultLocale,
		Fetch:   Fetch{Timeout: fetch.DefaultOptions().Timeout},
		Pacing: Pacing{
			ChunkMin: pacer.MinSize,
			ChunkMax: pacer.MaxSize,
			PauseMin: pacer.MinPause,
			PauseMax: pacer.MaxPause,
		},
	}
}

// Load reads and parses the YAML (or JSON) configuration file from the specified path.
// Unset values keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.normalize()
	return &cfg, nil
}

// LoadOrDefault is Load, but a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		def := Default()
		return &def, nil
	}
	return cfg, err
}

// normalize moves an inline top-level map into Maps and fills per-map defaults.
func (c *Config) normalize() {
	if c.Map.Name != "" {
		c.Maps = append([]Map{c.Map}, c.Maps...)
	}

	for i := range c.Maps {
		m := &c.Maps[i]
		if m.Zoom <= 0 {
			m.Zoom = c.Map.Zoom
		}
		if m.Layer == "" {
			m.Layer = c.Map.Layer
		}
	}
}

// Validate checks the configuration for values the loader cannot work with.
func (c *Config) Validate() error {
	if len(c.Maps) == 0 {
		return ErrNoMaps
	}

	seen := make(map[string]bool, len(c.Maps))
	for _, m := range c.Maps {
		if m.Name == "" {
			return errors.New("config: map name is required")
		}
		if seen[m.Name] {
			return fmt.Errorf("config: duplicate map %q", m.Name)
		}
		seen[m.Name] = true

		if !m.Bounds().InRange() {
			return fmt.Errorf("config: map %q: coordinates out of range", m.Name)
		}
		if m.Zoom < 0 || m.Zoom > tiles.MaxZoom {
			return fmt.Errorf("config: map %q: zoom %d out of range", m.Name, m.Zoom)
		}
	}

	if c.Fetch.Timeout <= 0 {
		return errors.New("config: fetch.timeout must be positive")
	}
	if c.Pacing.ChunkMin <= 0 || c.Pacing.ChunkMax < c.Pacing.ChunkMin {
		return errors.New("config: pacing chunk bounds must satisfy 0 < chunk_min <= chunk_max")
	}
	if c.Pacing.PauseMin < 0 || c.Pacing.PauseMax < c.Pacing.PauseMin {
		return errors.New("config: pacing pause bounds must satisfy 0 <= pause_min <= pause_max")
	}

	return nil
}

// SetZoom overrides the zoom of every map.
func (c *Config) SetZoom(zoom int) error {
	if zoom < 0 || zoom > tiles.MaxZoom {
		return fmt.Errorf("config: zoom %d out of range 0-%d", zoom, tiles.MaxZoom)
	}
	for i := range c.Maps {
		c.Maps[i].Zoom = zoom
	}
	return nil
}

// Find returns the map with the given name.
func (c *Config) Find(name string) (Map, bool) {
	for _, m := range c.Maps {
		if m.Name == name {
			return m, true
		}
	}
	return Map{}, false
}

// Bounds returns the bounding box of the map.
func (m Map) Bounds() geo.BoundingBox {
	return geo.BoundingBox{Corner1: m.Coord1, Corner2: m.Coord2}
}

// TileConfig converts a map entry into the tile model configuration,
// taking provider settings from c.
func (m Map) TileConfig(c *Config) tiles.Config {
	return tiles.Config{
		Name:    m.Name,
		Bounds:  m.Bounds(),
		Zoom:    m.Zoom,
		Layer:   m.Layer,
		Version: c.Version,
		Root:    c.Root,
		Host:    c.Host,
		Locale:  c.Locale,
	}
}

// FetchOptions returns the HTTP client options.
func (c *Config) FetchOptions() fetch.Options {
	opts := fetch.DefaultOptions()
	if c.Fetch.Timeout > 0 {
		opts.Timeout = c.Fetch.Timeout
	}
	if len(c.Fetch.Headers) > 0 {
		opts.Headers = fetch.MergeHeaders(opts.Headers, c.Fetch.Headers)
	}
	return opts
}

// Pacer returns the random pacer described by the pacing section.
func (c *Config) Pacer() *download.RandomPacer {
	p := c.Pacing
	return download.NewRandomPacer(p.ChunkMin, p.ChunkMax, p.PauseMin, p.PauseMax, nil)
}
