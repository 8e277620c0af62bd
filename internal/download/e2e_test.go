package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/woozymasta/satloader/internal/download"
	"github.com/woozymasta/satloader/internal/fetch"
	"github.com/woozymasta/satloader/internal/geo"
	"github.com/woozymasta/satloader/internal/policy"
	"github.com/woozymasta/satloader/internal/tiles"

	"github.com/rs/zerolog"
)

// tileServer answers 404 for tiles listed in missing and a fake JPEG otherwise.
type tileServer struct {
	mu       sync.Mutex
	requests []string
	missing  map[string]bool
}

func (s *tileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("x") + "-" + q.Get("y")

	s.mu.Lock()
	s.requests = append(s.requests, key)
	s.mu.Unlock()

	if r.URL.Path != "/tiles" || q.Get("l") != "sat" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.missing[key] {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte("\xff\xd8\xff jpeg " + key))
}

func (s *tileServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type sleeps struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *sleeps) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
	return nil
}

func setup(t *testing.T, handler *tileServer) (tiles.Config, *fetch.Client) {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	cfg := tiles.Config{
		Name: "moscow",
		Bounds: geo.BoundingBox{
			Corner1: geo.Coordinate{Lat: 55.80, Lon: 37.50},
			Corner2: geo.Coordinate{Lat: 55.70, Lon: 37.70},
		},
		Zoom:    13,
		Version: "3.1064.0",
		Root:    t.TempDir(),
		Host:    u.Host,
	}

	opts := fetch.DefaultOptions()
	opts.Transport = srv.Client().Transport
	return cfg, fetch.NewClient(opts, zerolog.Nop())
}

func TestMapDownloadIsIdempotent(t *testing.T) {
	handler := &tileServer{missing: map[string]bool{"4950-2567": true}}
	cfg, client := setup(t, handler)

	m, err := tiles.NewMap(cfg)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if m.Width() <= 0 || m.Height() <= 0 {
		t.Fatalf("empty map %dx%d", m.Width(), m.Height())
	}

	var pauses sleeps
	scheduler := download.Paced(client, policy.NewFiles(zerolog.Nop()),
		download.FixedPacer{Size: 5, Pause: time.Second}, zerolog.Nop()).WithSleep(pauses.sleep)

	stats, err := scheduler.Run(context.Background(), m.Objects())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != m.Len()-1 || stats.Failed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if handler.count() != m.Len() {
		t.Errorf("expected %d requests, got %d", m.Len(), handler.count())
	}
	// 15 successes in chunks of 5: two pauses, none after the last chunk.
	if len(pauses.calls) != 2 {
		t.Errorf("expected 2 pauses, got %v", pauses.calls)
	}

	summary := m.Summary()
	if summary.Downloaded != m.Len()-1 || summary.NotFound != 1 || summary.Queued != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}

	missing, _ := m.Tile(4950, 2567)
	if missing.Status() != tiles.StatusNotFound {
		t.Errorf("missing tile status = %s", missing.Status())
	}
	data, err := os.ReadFile(missing.Destination() + download.MarkerSuffix)
	if err != nil || string(data) != "ERROR,404" {
		t.Errorf("marker = %q, %v", data, err)
	}

	// Second run: nothing left worth fetching.
	before := handler.count()
	stats, err = scheduler.Run(context.Background(), m.Objects())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if handler.count() != before {
		t.Errorf("second run made %d requests", handler.count()-before)
	}
	if stats.Skipped != m.Len() || stats.Downloaded != 0 {
		t.Errorf("unexpected second run stats %+v", stats)
	}
}

func TestMapDownloadRetriesRetriable(t *testing.T) {
	handler := &tileServer{}
	cfg, client := setup(t, handler)

	m, err := tiles.NewMap(cfg)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	retry, _ := m.Tile(4949, 2566)
	final, _ := m.Tile(4949, 2567)
	if err := download.WriteMarker(retry.Destination(), download.Error(download.CodeTimeout)); err != nil {
		t.Fatal(err)
	}
	if err := download.WriteMarker(final.Destination(), download.StatusError(http.StatusNotFound)); err != nil {
		t.Fatal(err)
	}

	stats, err := download.Unpaced(client, policy.NewFiles(zerolog.Nop()), zerolog.Nop()).
		Run(context.Background(), m.Objects())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != m.Len()-1 || stats.Skipped != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if retry.Status() != tiles.StatusDownloaded {
		t.Errorf("retried tile status = %s", retry.Status())
	}
	if _, err := os.Stat(retry.Destination() + download.MarkerSuffix); !os.IsNotExist(err) {
		t.Errorf("expected marker of retried tile to be removed, stat err = %v", err)
	}
	if final.Status() != tiles.StatusNotFound {
		t.Errorf("not found tile status = %s", final.Status())
	}
}

func TestSingleTile(t *testing.T) {
	handler := &tileServer{}
	cfg, client := setup(t, handler)
	cfg.Name = "single"

	tile, err := tiles.ParseTile("4952,2568,13,sat", cfg)
	if err != nil {
		t.Fatalf("ParseTile: %v", err)
	}

	var pauses sleeps
	stats, err := download.Unpaced(client, policy.NewFiles(zerolog.Nop()), zerolog.Nop()).
		WithSleep(pauses.sleep).
		Run(context.Background(), []download.Downloadable{tile})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Downloaded != 1 || handler.count() != 1 || len(pauses.calls) != 0 {
		t.Errorf("stats %+v, requests %d, pauses %d", stats, handler.count(), len(pauses.calls))
	}
	if handler.requests[0] != "4952-2568" {
		t.Errorf("requested %s", handler.requests[0])
	}

	data, err := os.ReadFile(tile.Destination())
	if err != nil {
		t.Fatalf("read tile: %v", err)
	}
	if !strings.HasSuffix(string(data), "4952-2568") {
		t.Errorf("unexpected tile content %q", data)
	}
}
