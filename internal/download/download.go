// Package download drives tile fetching: it defines the capabilities a
// scheduler needs (something to download, something that downloads it and a
// policy deciding whether to try) and the outcome values passed between them.
//
// All cross-run state lives on disk. A destination file means the object is
// done; a sidecar marker (destination + ".error") records the last failure.
// Nothing is kept in memory between runs, so a killed process can simply be
// started again.
package download

import (
	"context"
	"fmt"
)

// Downloadable is an object with a source URL and a destination path.
type Downloadable interface {
	fmt.Stringer
	URL() (string, error)
	Destination() string
}

// Downloader performs one fetch and classifies it. Network failures are
// reported as Outcome values; the error is reserved for local filesystem
// failures and context cancellation.
type Downloader interface {
	Download(ctx context.Context, url, destination string) (Outcome, error)
}

// Policy decides whether an object is attempted and records the result.
type Policy interface {
	BeforeDownload(obj Downloadable) (bool, error)
	AfterDownload(obj Downloadable, o Outcome) error
}
