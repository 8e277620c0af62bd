package main

import (
	"errors"

	"github.com/woozymasta/satloader/internal/download"
	"github.com/woozymasta/satloader/internal/fetch"
	"github.com/woozymasta/satloader/internal/policy"
	"github.com/woozymasta/satloader/internal/tiles"
)

// DownloadCommand downloads whole maps with pacing.
type DownloadCommand struct {
	Limit []string `short:"l" long:"limit" env:"LIMIT_NAMES" env-delim:"," description:"Limit processing to specific map names"`
	Zoom  int      `short:"z" long:"zoom"  env:"ZOOM"        description:"Override the zoom of every selected map"`

	root *Options
}

// Execute implements flags.Commander.
func (c *DownloadCommand) Execute(_ []string) error {
	ctx, log := c.root.ctx, c.root.log

	cfg, err := c.root.loadConfig()
	if err != nil {
		return err
	}

	if c.Zoom != 0 {
		if err := cfg.SetZoom(c.Zoom); err != nil {
			return err
		}
	}

	maps := selectMaps(cfg, c.Limit, log)

	log.Info().
		Int("maps_total", len(cfg.Maps)).
		Int("maps_queued", len(maps)).
		Msg("Starting loader")

	client := fetch.NewClient(cfg.FetchOptions(), log)
	files := policy.NewFiles(log)

	var errs []error
	for _, entry := range maps {
		m, err := tiles.NewMap(entry.TileConfig(cfg))
		if err != nil {
			log.Error().Err(err).Str("map", entry.Name).Msg("Failed to build map")
			errs = append(errs, err)
			continue
		}

		mlog := log.With().Str("map", m.Name()).Int("zoom", m.Zoom()).Logger()
		mlog.Info().
			Int("width", m.Width()).
			Int("height", m.Height()).
			Int("tiles", m.Len()).
			Str("path", m.Path()).
			Msg("Map built")

		_, err = download.Paced(client, files, cfg.Pacer(), mlog).Run(ctx, m.Objects())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			errs = append(errs, err)
		}

		s := m.Summary()
		mlog.Info().
			Int("downloaded", s.Downloaded).
			Int("not_found", s.NotFound).
			Int("error", s.Error).
			Int("queued", s.Queued).
			Msg("Map status")
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info().Msg("Loader finished successfully")
	return nil
}
