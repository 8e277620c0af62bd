package download

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Stats summarizes one scheduler run.
type Stats struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
	Pauses     int
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scheduler visits objects one at a time: it asks the policy, fetches,
// lets the policy settle the outcome and, in paced mode, pauses after every
// chunk of successful fetches.
type Scheduler struct {
	downloader Downloader
	policy     Policy
	pacer      Pacer
	sleep      SleepFunc
	log        zerolog.Logger
}

// Unpaced creates a scheduler that never pauses. Meant for small ad-hoc batches.
func Unpaced(d Downloader, p Policy, log zerolog.Logger) *Scheduler {
	return &Scheduler{downloader: d, policy: p, sleep: Sleep, log: log}
}

// Paced creates a scheduler that pauses between chunks drawn from pacer.
func Paced(d Downloader, p Policy, pacer Pacer, log zerolog.Logger) *Scheduler {
	s := Unpaced(d, p, log)
	s.pacer = pacer
	return s
}

// WithSleep replaces the pause implementation.
func (s *Scheduler) WithSleep(fn SleepFunc) *Scheduler {
	s.sleep = fn
	return s
}

// Run processes objs in order. Each object passes the policy gate exactly once.
//
// Per-object filesystem failures are logged and joined into the returned
// error without stopping the run. An object without a URL or a cancelled
// context stops the run immediately.
func (s *Scheduler) Run(ctx context.Context, objs []Downloadable) (Stats, error) {
	stats := Stats{Total: len(objs)}

	if len(objs) == 0 {
		s.log.Warn().Msg("Nothing to download: the object list is empty")
		return stats, nil
	}

	s.log.Info().
		Int("objects", len(objs)).
		Bool("paced", s.pacer != nil).
		Msg("Starting download")

	var chunk Chunk
	if s.pacer != nil {
		chunk = s.nextChunk()
	}

	var errs []error
	inChunk := 0

	for _, obj := range objs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		l := s.log.With().Str("object", obj.String()).Logger()

		attempt, err := s.policy.BeforeDownload(obj)
		if err != nil {
			l.Error().Err(err).Msg("Failed to check download policy")
			errs = append(errs, err)
			stats.Failed++
			continue
		}
		if !attempt {
			l.Debug().Msg("Skipping because of the policy")
			stats.Skipped++
			continue
		}

		url, err := obj.URL()
		if err != nil {
			return stats, err
		}

		if s.pacer != nil && inChunk >= chunk.Size {
			l.Info().Dur("pause", chunk.Pause).Int("chunk", chunk.Size).Msg("Chunk complete, pausing")
			if err := s.sleep(ctx, chunk.Pause); err != nil {
				return stats, err
			}
			stats.Pauses++
			chunk = s.nextChunk()
			inChunk = 0
		}

		l.Debug().Str("url", url).Msg("Downloading")
		outcome, err := s.downloader.Download(ctx, url, obj.Destination())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			l.Error().Err(err).Msg("Failed to store download")
			errs = append(errs, err)
			stats.Failed++
			continue
		}

		if err := s.policy.AfterDownload(obj, outcome); err != nil {
			l.Error().Err(err).Str("outcome", outcome.String()).Msg("Failed to record download outcome")
			errs = append(errs, err)
		}

		switch outcome.Result {
		case Downloaded:
			stats.Downloaded++
			inChunk++
			l.Info().Msg("Downloaded")
		case Skipped:
			stats.Skipped++
			l.Debug().Msg("Already exists")
		default:
			stats.Failed++
			l.Warn().
				Str("code", outcome.Code).
				Bool("retriable", outcome.Retriable()).
				Msg("Download failed")
		}
	}

	s.log.Info().
		Int("total", stats.Total).
		Int("downloaded", stats.Downloaded).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("pauses", stats.Pauses).
		Msg("Download finished")

	return stats, errors.Join(errs...)
}

func (s *Scheduler) nextChunk() Chunk {
	c := s.pacer.Next()
	s.log.Debug().Int("chunk", c.Size).Dur("pause", c.Pause).Msg("Next chunk")
	return c
}

// Sleep waits for d, returning early with the context error if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
