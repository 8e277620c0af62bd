// Package policy decides whether a tile is fetched based on what is already on disk.
package policy

import (
	"fmt"

	"github.com/woozymasta/satloader/internal/download"

	"github.com/rs/zerolog"
)

// Files is the filesystem-backed download policy.
//
// A destination file means done. Otherwise a marker beside it holds the last
// failed outcome, and only retriable outcomes are attempted again. The
// decision is re-derived from disk on every call.
type Files struct {
	log zerolog.Logger
}

// NewFiles creates the policy.
func NewFiles(log zerolog.Logger) *Files {
	return &Files{log: log}
}

// BeforeDownload implements download.Policy.
func (p *Files) BeforeDownload(obj download.Downloadable) (bool, error) {
	dest := obj.Destination()

	exists, err := download.FileExists(dest)
	if err != nil {
		return false, fmt.Errorf("%s: stat destination: %w", obj, err)
	}
	if exists {
		return false, nil
	}

	o, ok, err := download.ReadMarker(dest)
	if err != nil {
		return false, fmt.Errorf("%s: %w", obj, err)
	}
	if !ok {
		return true, nil
	}

	p.log.Trace().
		Str("object", obj.String()).
		Str("marker", o.String()).
		Bool("retriable", o.Retriable()).
		Msg("Found failure marker")

	return o.Retriable(), nil
}

// AfterDownload implements download.Policy.
//
// Failures (over)write the marker. Successes write nothing, but a marker left
// by an earlier retriable failure is removed so that a destination and its
// marker never coexist.
func (p *Files) AfterDownload(obj download.Downloadable, o download.Outcome) error {
	dest := obj.Destination()

	if o.IsFailure() {
		if err := download.WriteMarker(dest, o); err != nil {
			return fmt.Errorf("%s: %w", obj, err)
		}
		return nil
	}

	removed, err := download.RemoveMarker(dest)
	if err != nil {
		return fmt.Errorf("%s: stale marker: %w", obj, err)
	}
	if removed {
		p.log.Warn().
			Str("object", obj.String()).
			Str("outcome", o.String()).
			Msg("Removed failure marker of a tile that is now present")
	}

	return nil
}
