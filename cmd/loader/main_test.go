package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/woozymasta/satloader/internal/config"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
)

func names(maps []config.Map) []string {
	out := make([]string, len(maps))
	for i, m := range maps {
		out[i] = m.Name
	}
	return out
}

func TestSelectMaps(t *testing.T) {
	cfg := &config.Config{Maps: []config.Map{{Name: "moscow"}, {Name: "spb"}, {Name: "kazan"}}}

	tests := []struct {
		limit []string
		want  []string
	}{
		{nil, []string{"moscow", "spb", "kazan"}},
		{[]string{"kazan"}, []string{"kazan"}},
		{[]string{"spb", "moscow", "spb"}, []string{"spb", "moscow"}},
		{[]string{"nowhere"}, []string{}},
	}

	for _, tt := range tests {
		got := names(selectMaps(cfg, tt.limit, zerolog.Nop()))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("limit %v: got %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func TestParseCommands(t *testing.T) {
	var executed flags.Commander

	opts := &Options{}
	opts.Download.root = opts
	opts.Tile.root = opts
	opts.Preview.root = opts

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, _ []string) error {
		executed = cmd
		return nil
	}

	if _, err := parser.ParseArgs([]string{"-c", "maps.yaml", "download", "-l", "moscow", "-l", "spb", "-z", "14"}); err != nil {
		t.Fatalf("parse download: %v", err)
	}
	if executed != &opts.Download {
		t.Errorf("expected download command, got %T", executed)
	}
	if opts.ConfigFile != "maps.yaml" || opts.Download.Zoom != 14 || len(opts.Download.Limit) != 2 {
		t.Errorf("unexpected options %+v", opts.Download)
	}

	if _, err := parser.ParseArgs([]string{"tile", "4949,2566,13,sat", "--name", "single"}); err != nil {
		t.Fatalf("parse tile: %v", err)
	}
	if opts.Tile.Args.Tile != "4949,2566,13,sat" || opts.Tile.Name != "single" {
		t.Errorf("unexpected tile options %+v", opts.Tile)
	}

	if _, err := parser.ParseArgs([]string{"preview", "-f", "gif"}); err == nil {
		t.Error("expected invalid format choice to fail")
	}
}

func TestDownloadRejectsZoomOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
root: ` + filepath.Join(dir, "maps") + `
maps:
  - name: moscow
    coord1: { lat: 55.80, lon: 37.50 }
    coord2: { lat: 55.70, lon: 37.70 }
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &Options{ConfigFile: path, ctx: context.Background(), log: zerolog.Nop()}
	cmd := &DownloadCommand{Zoom: 40, root: opts}

	err := cmd.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "zoom 40 out of range") {
		t.Fatalf("expected zoom range error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "maps")); !os.IsNotExist(err) {
		t.Errorf("expected nothing to be written, stat err = %v", err)
	}
}
