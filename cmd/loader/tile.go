package main

import (
	"github.com/woozymasta/satloader/internal/config"
	"github.com/woozymasta/satloader/internal/download"
	"github.com/woozymasta/satloader/internal/fetch"
	"github.com/woozymasta/satloader/internal/policy"
	"github.com/woozymasta/satloader/internal/tiles"
)

// TileCommand downloads one tile without pacing.
type TileCommand struct {
	Name string `short:"n" long:"name" description:"Map directory the tile is stored under" default:"tile"`

	Args struct {
		Tile string `positional-arg-name:"x,y,z[,layer]" description:"Tile address"`
	} `positional-args:"yes" required:"yes"`

	root *Options
}

// Execute implements flags.Commander.
func (c *TileCommand) Execute(_ []string) error {
	ctx, log := c.root.ctx, c.root.log

	cfg, err := config.LoadOrDefault(c.root.ConfigFile)
	if err != nil {
		return err
	}

	tile, err := tiles.ParseTile(c.Args.Tile, tiles.Config{
		Name:    c.Name,
		Layer:   cfg.Map.Layer,
		Version: cfg.Version,
		Root:    cfg.Root,
		Host:    cfg.Host,
		Locale:  cfg.Locale,
	})
	if err != nil {
		return err
	}

	scheduler := download.Unpaced(fetch.NewClient(cfg.FetchOptions(), log), policy.NewFiles(log), log)
	if _, err := scheduler.Run(ctx, []download.Downloadable{tile}); err != nil {
		return err
	}

	log.Info().
		Str("tile", tile.String()).
		Str("path", tile.Destination()).
		Stringer("status", tile.Status()).
		Msg("Tile processed")
	return nil
}
