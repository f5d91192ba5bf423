// Package parallel provides the bounded fan-out used by xnn for
// side-effect-free work such as batch inference.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16, // One inference is already a full forward pass.
	}
}

// For executes f(i) for i in [0, n) in contiguous chunks.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	_ = ForErr(n, func(i int) error {
		f(i)
		return nil
	}, cfg)
}

// ForErr executes f(i) for i in [0, n) and returns the error of the lowest
// index that failed, or nil.
//
// A chunk stops at its first failure; other chunks run to completion.
func ForErr(n int, f func(i int) error, cfg Config) error {
	workers := cfg.NumWorkers
	if workers < 1 {
		workers = 1
	}
	if !cfg.Enabled || workers == 1 || n < 2*max(cfg.MinChunkSize, 1) {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize)
	numChunks := (n + chunkSize - 1) / chunkSize
	errs := make([]error, numChunks)

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(c, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				if err := f(i); err != nil {
					errs[c] = err
					return
				}
			}
		}(c, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
