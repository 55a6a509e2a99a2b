package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// CountersDocument holds the last issued id per collection.
const CountersDocument = "counters"

// Sequencer issues monotonically increasing integer ids per collection.
type Sequencer interface {
	// Reserve returns the first of n consecutive ids. Every id is greater than
	// both floor and any id previously issued for the collection.
	Reserve(ctx context.Context, collection string, floor int64, n int) (int64, error)
}

// StoreSequencer keeps its counters in the "counters" document of a Store,
// so ids survive restarts with whatever backend the records use.
type StoreSequencer struct {
	store *Store
}

func NewStoreSequencer(s *Store) *StoreSequencer {
	return &StoreSequencer{store: s}
}

func (q *StoreSequencer) Reserve(ctx context.Context, collection string, floor int64, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %s: n must be positive, got %d", collection, n)
	}
	var first int64
	err := q.store.UpdateObject(ctx, CountersDocument, func(raw json.RawMessage) (interface{}, error) {
		counters := map[string]int64{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &counters); err != nil || counters == nil {
				// a damaged counters document is rebuilt from the floors
				counters = map[string]int64{}
			}
		}
		last := counters[collection]
		if floor > last {
			last = floor
		}
		first = last + 1
		counters[collection] = last + int64(n)
		return counters, nil
	})
	if err != nil {
		return 0, err
	}
	return first, nil
}
