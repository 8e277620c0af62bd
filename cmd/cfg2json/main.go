package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/woozymasta/satloader/internal/config"
	"github.com/woozymasta/satloader/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}

	fc := collect(cfg)

	outputData, err := marshal(fc, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully exported %d maps to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

// collect builds one polygon feature per configured map. Maps with valid
// bounds carry their tile rectangle; invalid ones carry the error instead.
func collect(cfg *config.Config) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, entry := range cfg.Maps {
		props := map[string]any{
			"name":  entry.Name,
			"zoom":  entry.Zoom,
			"layer": entry.Layer,
		}

		m, err := tiles.NewMap(entry.TileConfig(cfg))
		if err != nil {
			props["error"] = err.Error()
		} else {
			r := m.Rect()
			props["tiles"] = m.Len()
			props["width"] = m.Width()
			props["height"] = m.Height()
			props["x1"], props["y1"] = r.Min.X, r.Min.Y
			props["x2"], props["y2"] = r.Max.X, r.Max.Y
			props["path"] = m.Path()
		}

		fc.Append(entry.Bounds().Feature(props))
	}

	return fc
}

func marshal(fc *geojson.FeatureCollection, format string) ([]byte, error) {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil || format != "yaml" {
		return data, err
	}

	// JSON is valid YAML; round trip it to get a YAML document.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
