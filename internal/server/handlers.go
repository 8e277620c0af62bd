// Package server serves downloaded tiles, map status and previews over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/satloader/internal/preview"
	"github.com/woozymasta/satloader/internal/tiles"
)

const etagCap = 64

// MapInfo is one entry of the map list.
type MapInfo struct {
	Name   string        `json:"name"`
	Layer  string        `json:"layer"`
	Zoom   int           `json:"zoom"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Tiles  int           `json:"tiles"`
	Status tiles.Summary `json:"status"`
}

// HandleMapsList serves the JSON list of maps with per-status tile counts.
func (s *ServerContext) HandleMapsList(w http.ResponseWriter, r *http.Request) {
	list := make([]MapInfo, 0, len(s.Names))
	for _, name := range s.Names {
		m := s.Maps[name]
		list = append(list, MapInfo{
			Name:   m.Name(),
			Layer:  m.Layer(),
			Zoom:   m.Zoom(),
			Width:  m.Width(),
			Height: m.Height(),
			Tiles:  m.Len(),
			Status: m.Summary(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(list)
}

// HandleMap serves tiles and previews of a single map.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	// Path: /maps/{name}/{file}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		http.NotFound(w, r)
		return
	}

	m, ok := s.Maps[parts[1]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	file := parts[2]
	switch file {
	case "preview.png":
		s.servePreview(w, m, preview.FormatPNG)
		return
	case "preview.webp":
		s.servePreview(w, m, preview.FormatWebP)
		return
	}

	x, y, ok := parseTileName(file)
	if !ok {
		http.NotFound(w, r)
		return
	}
	tile, ok := m.Tile(x, y)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, tile.Destination(), "image/jpeg") {
		http.NotFound(w, r)
	}
}

// parseTileName parses "{x}-{y}.jpg".
func parseTileName(name string) (x, y int, ok bool) {
	base, found := strings.CutSuffix(name, ".jpg")
	if !found {
		return 0, 0, false
	}
	xs, ys, found := strings.Cut(base, "-")
	if !found {
		return 0, 0, false
	}

	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

func (s *ServerContext) servePreview(w http.ResponseWriter, m *tiles.Map, format string) {
	img := preview.Scale(preview.Render(m), previewScale(m))

	w.Header().Set("Content-Type", "image/"+format)
	w.Header().Set("Cache-Control", "no-store")
	if err := preview.Encode(w, img, format); err != nil {
		s.log.Error().Err(err).Str("map", m.Name()).Msg("Failed to encode preview")
	}
}

// previewScale picks a factor that makes small maps at least 256px wide.
func previewScale(m *tiles.Map) int {
	side := max(m.Width(), m.Height())
	if side >= 256 {
		return 1
	}
	return 256 / side
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
