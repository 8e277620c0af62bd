package download

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MarkerSuffix is appended to a destination path to form its failure marker.
const MarkerSuffix = ".error"

// MarkerPath returns the failure marker path for a destination.
func MarkerPath(destination string) string {
	return destination + MarkerSuffix
}

// FileExists reports whether path exists. Errors other than "not exist" are returned.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadMarker loads the outcome stored beside destination.
// The boolean is false when no marker exists.
func ReadMarker(destination string) (Outcome, bool, error) {
	data, err := os.ReadFile(MarkerPath(destination))
	if errors.Is(err, fs.ErrNotExist) {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, fmt.Errorf("read marker: %w", err)
	}

	o, err := ParseOutcome(string(data))
	if err != nil {
		return Outcome{}, true, err
	}
	return o, true, nil
}

// WriteMarker (over)writes the marker of destination with the serialized outcome.
func WriteMarker(destination string, o Outcome) error {
	path := MarkerPath(destination)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create marker dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(o.String()), 0644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

// RemoveMarker deletes the marker of destination. The boolean reports whether one existed.
func RemoveMarker(destination string) (bool, error) {
	err := os.Remove(MarkerPath(destination))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove marker: %w", err)
	}
	return true, nil
}
