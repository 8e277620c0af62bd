package server

import (
	"sort"

	"github.com/woozymasta/satloader/internal/config"
	"github.com/woozymasta/satloader/internal/tiles"

	"github.com/rs/zerolog"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Maps  map[string]*tiles.Map
	Names []string

	log zerolog.Logger
}

// NewServerContext builds a tile map for every configured entry.
// Entries that do not project to a valid tile rectangle are skipped.
func NewServerContext(cfg *config.Config, log zerolog.Logger) *ServerContext {
	log.Info().Int("config_maps_count", len(cfg.Maps)).Msg("Initializing server context")

	s := &ServerContext{
		Maps: make(map[string]*tiles.Map, len(cfg.Maps)),
		log:  log,
	}

	for _, entry := range cfg.Maps {
		m, err := tiles.NewMap(entry.TileConfig(cfg))
		if err != nil {
			log.Warn().
				Err(err).
				Str("map", entry.Name).
				Msg("Skipping map: invalid bounds")
			continue
		}

		log.Debug().
			Str("map", m.Name()).
			Int("zoom", m.Zoom()).
			Int("tiles", m.Len()).
			Str("path", m.Path()).
			Msg("Map added to context")

		s.Maps[m.Name()] = m
		s.Names = append(s.Names, m.Name())
	}

	sort.Strings(s.Names)

	log.Info().
		Int("valid_maps_count", len(s.Names)).
		Msg("Server context initialized successfully")

	return s
}
