package download

import (
	"math/rand/v2"
	"time"
)

// Chunk is the number of successful fetches allowed before the next pause.
type Chunk struct {
	Size  int
	Pause time.Duration
}

// Pacer yields consecutive chunks.
type Pacer interface {
	Next() Chunk
}

// FixedPacer always returns the same chunk.
type FixedPacer Chunk

// Next implements Pacer.
func (p FixedPacer) Next() Chunk { return Chunk(p) }

// RandomPacer draws chunk sizes and pauses uniformly from inclusive ranges.
type RandomPacer struct {
	MinSize, MaxSize   int
	MinPause, MaxPause time.Duration

	rnd *rand.Rand
}

// DefaultRandomPacer returns a pacer with 100-200 fetches per chunk and 5-10s pauses.
func DefaultRandomPacer() *RandomPacer {
	return NewRandomPacer(100, 200, 5*time.Second, 10*time.Second, nil)
}

// NewRandomPacer creates a pacer. A nil rnd uses the global source.
// Reversed bounds are swapped.
func NewRandomPacer(minSize, maxSize int, minPause, maxPause time.Duration, rnd *rand.Rand) *RandomPacer {
	if minSize > maxSize {
		minSize, maxSize = maxSize, minSize
	}
	if minPause > maxPause {
		minPause, maxPause = maxPause, minPause
	}
	if minSize < 1 {
		minSize = 1
	}
	if maxSize < minSize {
		maxSize = minSize
	}

	return &RandomPacer{
		MinSize:  minSize,
		MaxSize:  maxSize,
		MinPause: minPause,
		MaxPause: maxPause,
		rnd:      rnd,
	}
}

// Next implements Pacer.
func (p *RandomPacer) Next() Chunk {
	return Chunk{
		Size:  p.MinSize + p.intN(p.MaxSize-p.MinSize+1),
		Pause: p.MinPause + time.Duration(p.int64N(int64(p.MaxPause-p.MinPause)+1)),
	}
}

func (p *RandomPacer) intN(n int) int {
	if p.rnd != nil {
		return p.rnd.IntN(n)
	}
	return rand.IntN(n)
}

func (p *RandomPacer) int64N(n int64) int64 {
	if p.rnd != nil {
		return p.rnd.Int64N(n)
	}
	return rand.Int64N(n)
}
