package machine

import (
	"runtime"
	"sync"

	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
)

// numWorkers resolves a configured worker count; zero means one per CPU.
func numWorkers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// chunkBounds splits n items into contiguous chunks of max(n/workers, 1).
func chunkBounds(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	chunkSize := max(n/numWorkers(workers), 1)
	bounds := make([][2]int, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		bounds = append(bounds, [2]int{start, min(start+chunkSize, n)})
	}
	return bounds
}

// parallelFor runs fn over disjoint chunks of [0, n) concurrently.
func parallelFor(n, workers int, fn func(start, end int)) {
	bounds := chunkBounds(n, workers)
	if len(bounds) == 1 {
		fn(bounds[0][0], bounds[0][1])
		return
	}

	var wg sync.WaitGroup
	for _, b := range bounds {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(b[0], b[1])
	}
	wg.Wait()
}

// parallelLookups runs fn over disjoint chunks of [0, n), each with a private
// byte lookup map, and returns the maps in chunk order for a single reduce.
func parallelLookups(n, workers int, fn func(start, end int, blu events.ByteLookups)) []events.ByteLookups {
	bounds := chunkBounds(n, workers)
	maps := make([]events.ByteLookups, len(bounds))

	var wg sync.WaitGroup
	for i, b := range bounds {
		wg.Add(1)
		go func(i, start, end int) {
			defer wg.Done()
			blu := events.NewByteLookups()
			fn(start, end, blu)
			maps[i] = blu
		}(i, b[0], b[1])
	}
	wg.Wait()
	return maps
}

// discard is a ByteRecord that drops every fact. Trace generation fills rows
// with it; the facts are collected by the dependency pass.
type discard struct{}

func (discard) AddByteLookupEvent(events.ByteLookupEvent) {}

func (discard) AddByteLookupEventsFromMaps([]events.ByteLookups) {}
