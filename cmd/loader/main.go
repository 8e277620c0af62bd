package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/satloader/internal/config"
	"github.com/woozymasta/satloader/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`

	Download DownloadCommand `command:"download" description:"Download every tile of the configured maps"`
	Tile     TileCommand     `command:"tile"     description:"Download a single tile"`
	Preview  PreviewCommand  `command:"preview"  description:"Render tile status previews"`

	ctx context.Context
	log zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &Options{ctx: ctx, log: zerolog.Nop()}
	opts.Download.root = opts
	opts.Tile.root = opts
	opts.Preview.root = opts

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.log = opts.Logger.Setup()
		return cmd.Execute(args)
	}

	_, err := parser.Parse()
	if err == nil {
		return
	}

	var flagsErr *flags.Error
	switch {
	case errors.As(err, &flagsErr):
		if flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, flagsErr.Message)
		os.Exit(2)
	case errors.Is(err, context.Canceled):
		opts.log.Warn().Msg("Interrupted")
		stop()
		os.Exit(130)
	default:
		opts.log.Fatal().Err(err).Msg("Loader failed")
	}
}

// loadConfig reads and validates the configuration file.
func (o *Options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectMaps filters maps by name, keeping the order of limit.
// Unknown and repeated names are logged and ignored.
func selectMaps(cfg *config.Config, limit []string, log zerolog.Logger) []config.Map {
	if len(limit) == 0 {
		return cfg.Maps
	}

	selected := make([]config.Map, 0, len(limit))
	seen := make(map[string]bool, len(limit))

	for _, name := range limit {
		if seen[name] {
			continue
		}
		seen[name] = true

		if m, ok := cfg.Find(name); ok {
			selected = append(selected, m)
		} else {
			log.Error().
				Str("name", name).
				Msg("Map specified in --limit not found in configuration")
		}
	}

	return selected
}
