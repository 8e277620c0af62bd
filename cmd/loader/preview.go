package main

import (
	"errors"

	"github.com/woozymasta/satloader/internal/preview"
	"github.com/woozymasta/satloader/internal/tiles"
)

// PreviewCommand renders one status image per map.
type PreviewCommand struct {
	Limit  []string `short:"l" long:"limit"  env:"LIMIT_NAMES" env-delim:"," description:"Limit processing to specific map names"`
	Output string   `short:"o" long:"output" description:"Output directory" default:"previews"`
	Format string   `short:"f" long:"format" description:"Image format" choice:"png" choice:"webp" default:"png"`
	Scale  int      `short:"s" long:"scale"  description:"Pixels per tile" default:"1"`

	root *Options
}

// Execute implements flags.Commander.
func (c *PreviewCommand) Execute(_ []string) error {
	log := c.root.log

	cfg, err := c.root.loadConfig()
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range selectMaps(cfg, c.Limit, log) {
		m, err := tiles.NewMap(entry.TileConfig(cfg))
		if err != nil {
			log.Error().Err(err).Str("map", entry.Name).Msg("Failed to build map")
			errs = append(errs, err)
			continue
		}

		path, err := preview.WriteFile(m, c.Output, c.Format, c.Scale)
		if err != nil {
			log.Error().Err(err).Str("map", m.Name()).Msg("Failed to write preview")
			errs = append(errs, err)
			continue
		}

		s := m.Summary()
		log.Info().
			Str("map", m.Name()).
			Str("path", path).
			Int("downloaded", s.Downloaded).
			Int("queued", s.Queued).
			Msg("Preview written")
	}

	return errors.Join(errs...)
}
