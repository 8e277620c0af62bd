package download

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{Success(), "DOWNLOADED"},
		{Exists(), "EXISTS"},
		{Error(""), "ERROR"},
		{Error(CodeTimeout), "ERROR,timeout"},
		{StatusError(404), "ERROR,404"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("ERROR,connection_error\n")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	if o.Result != Failed || o.Code != CodeConnection {
		t.Errorf("unexpected outcome: %+v", o)
	}

	o, err = ParseOutcome("ERROR")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	if o.Result != Failed || o.Code != "" {
		t.Errorf("unexpected outcome: %+v", o)
	}

	if _, err := ParseOutcome("BROKEN,1"); !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("expected ErrInvalidMarker, got %v", err)
	}
}

func TestRetriable(t *testing.T) {
	tests := []struct {
		marker    string
		retriable bool
	}{
		{"ERROR,400", true},
		{"ERROR,timeout", true},
		{"ERROR,connection_error", true},
		{"ERROR,404", false},
		{"ERROR,403", false},
		{"ERROR,500", false},
		{"ERROR,protocol_error", false},
		{"ERROR", false},
		{"DOWNLOADED", false},
	}

	for _, tt := range tests {
		o, err := ParseOutcome(tt.marker)
		if err != nil {
			t.Fatalf("ParseOutcome(%q): %v", tt.marker, err)
		}
		if got := o.Retriable(); got != tt.retriable {
			t.Errorf("%q.Retriable() = %v, want %v", tt.marker, got, tt.retriable)
		}
	}
}

func TestMarkerLifecycle(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "13", "1-2.jpg")

	if _, ok, err := ReadMarker(dest); err != nil || ok {
		t.Fatalf("ReadMarker on empty dir = (%v, %v), want (false, nil)", ok, err)
	}

	if err := WriteMarker(dest, StatusError(400)); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	data, err := os.ReadFile(dest + ".error")
	if err != nil {
		t.Fatalf("read marker file: %v", err)
	}
	if string(data) != "ERROR,400" {
		t.Errorf("marker content = %q, want %q", data, "ERROR,400")
	}

	// Overwrite.
	if err := WriteMarker(dest, Error(CodeProtocol)); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	o, ok, err := ReadMarker(dest)
	if err != nil || !ok {
		t.Fatalf("ReadMarker = (%v, %v)", ok, err)
	}
	if o.Code != CodeProtocol {
		t.Errorf("expected protocol_error, got %q", o.Code)
	}

	removed, err := RemoveMarker(dest)
	if err != nil || !removed {
		t.Fatalf("RemoveMarker = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = RemoveMarker(dest)
	if err != nil || removed {
		t.Fatalf("second RemoveMarker = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestReadMarkerCorrupt(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "1-1.jpg")
	if err := os.WriteFile(MarkerPath(dest), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := ReadMarker(dest)
	if !ok || !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("ReadMarker = (%v, %v), want (true, ErrInvalidMarker)", ok, err)
	}
}

func TestRandomPacerBounds(t *testing.T) {
	p := NewRandomPacer(100, 200, 5*time.Second, 10*time.Second, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 1000; i++ {
		c := p.Next()
		if c.Size < 100 || c.Size > 200 {
			t.Fatalf("chunk size %d out of range", c.Size)
		}
		if c.Pause < 5*time.Second || c.Pause > 10*time.Second {
			t.Fatalf("pause %v out of range", c.Pause)
		}
	}
}

func TestRandomPacerNormalizesBounds(t *testing.T) {
	p := NewRandomPacer(3, 0, time.Second, 0, nil)
	if p.MinSize != 1 || p.MaxSize != 3 {
		t.Errorf("unexpected size bounds %d..%d", p.MinSize, p.MaxSize)
	}
	if p.MinPause != 0 || p.MaxPause != time.Second {
		t.Errorf("unexpected pause bounds %v..%v", p.MinPause, p.MaxPause)
	}
}
