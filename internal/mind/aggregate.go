package mind

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultWindow       = 10
	defaultStoreTimeout = 3 * time.Second
	defaultFetchWorkers = 3
)

// Aggregator pulls a bounded recent slice from each signal store and
// flattens it into deduplicated candidate items. Partial-failure tolerant: a
// slow or erroring store contributes nothing instead of failing the pass.
type Aggregator struct {
	readers      []SignalReader
	window       int
	storeTimeout time.Duration
	workers      int
}

func NewAggregator(readers []SignalReader) *Aggregator {
	return &Aggregator{
		readers:      readers,
		window:       defaultWindow,
		storeTimeout: defaultStoreTimeout,
		workers:      defaultFetchWorkers,
	}
}

// SetStoreTimeout overrides the per-store fetch timeout (tests use a short one).
func (a *Aggregator) SetStoreTimeout(d time.Duration) {
	a.storeTimeout = d
}

// Collect fetches all stores with bounded parallelism and an independent
// timeout per store, then deduplicates. Never returns an error: the worst
// case is an empty list.
func (a *Aggregator) Collect(ctx context.Context, userID string) []CandidateItem {
	results := make([][]CandidateItem, len(a.readers))

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i, r := range a.readers {
		wg.Add(1)
		go func(i int, r SignalReader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, a.storeTimeout)
			defer cancel()

			items, err := r.Read(fetchCtx, userID, a.window)
			if err != nil {
				log.Printf("[MIND] signal store %s failed for user %s: %v", r.Provenance(), userID, err)
				return
			}
			results[i] = items
		}(i, r)
	}
	wg.Wait()

	// Merge in registration order so dedup keeps stable winners.
	var merged []CandidateItem
	for _, items := range results {
		merged = append(merged, items...)
	}
	return Deduplicate(merged)
}
