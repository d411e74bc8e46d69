// Package simulate contains the Monte Carlo race-outcome engine: a
// rank-perturbation simulator driven by empirical residuals, a lap-by-lap
// accumulation simulator, and the aggregator that turns raw simulated
// finishing positions into probability tables.
package simulate

import (
	"math/rand"
	"sync"
)

// chunkSize is the fixed number of simulation columns per work unit. It is
// deliberately independent of the worker count: each chunk derives its RNG
// stream from (seed, chunk index) alone, so a run produces bit-identical
// results whether it executes on one worker or sixteen.
const chunkSize = 512

// deriveSeed mixes the run seed with a chunk index into an independent
// sub-seed (splitmix64 finalizer).
func deriveSeed(seed int64, chunk int) int64 {
	z := uint64(seed) + uint64(chunk+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// chunkRange is a half-open range of simulation columns.
type chunkRange struct {
	index int
	start int
	end   int
}

// splitChunks partitions n simulations into fixed-size ranges.
func splitChunks(n int) []chunkRange {
	chunks := make([]chunkRange, 0, (n+chunkSize-1)/chunkSize)
	for start, i := 0, 0; start < n; start, i = start+chunkSize, i+1 {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, chunkRange{index: i, start: start, end: end})
	}
	return chunks
}

func numChunks(n int) int {
	return (n + chunkSize - 1) / chunkSize
}

// runChunks executes fn for every chunk on up to workers goroutines. fn gets
// a chunk-local RNG derived from the run seed; there is no shared mutable
// state between chunks, so the only synchronization is the final wait.
func runChunks(n int, seed int64, workers int, fn func(chunk chunkRange, rng *rand.Rand)) {
	chunks := splitChunks(n)
	if workers <= 1 || len(chunks) == 1 {
		for _, c := range chunks {
			fn(c, rand.New(rand.NewSource(deriveSeed(seed, c.index))))
		}
		return
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	work := make(chan chunkRange)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for c := range work {
				fn(c, rand.New(rand.NewSource(deriveSeed(seed, c.index))))
			}
		}()
	}
	for _, c := range chunks {
		work <- c
	}
	close(work)
	wg.Wait()
}
