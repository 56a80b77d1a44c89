// Package parallel provides the row-range worker helper used by the CPU
// kernels.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool `yaml:"enabled"`   // Whether parallel execution is enabled.
	NumWorkers   int  `yaml:"workers"`   // Number of worker goroutines to use.
	MinChunkSize int  `yaml:"min_chunk"` // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// Range splits [0, n) into contiguous chunks and calls f(start, end) for each.
// Falls back to a single call on the calling goroutine if parallelism is
// disabled or n is too small. The first error returned by any chunk is
// returned after all chunks have finished.
func Range(n int, cfg Config, f func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers := cfg.NumWorkers
	if !cfg.Enabled || workers <= 1 || n < cfg.MinChunkSize {
		return f(0, n)
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			return f(start, end)
		})
	}
	return g.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
// It stops scheduling new items in a chunk once f fails.
func For(n int, cfg Config, f func(i int) error) error {
	return Range(n, cfg, func(start, end int) error {
		for i := start; i < end; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	})
}
