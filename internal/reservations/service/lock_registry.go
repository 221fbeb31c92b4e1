package service

import "sync"

// lockRegistry hands out one mutex per room type so concurrent reserve
// calls in the same process serialize their check-and-commit sequence.
// Entries are never evicted; the set of room types is small and stable.
type lockRegistry struct {
	locks sync.Map // roomTypeID -> *sync.Mutex
}

func (r *lockRegistry) get(roomTypeID string) *sync.Mutex {
	if mu, ok := r.locks.Load(roomTypeID); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := r.locks.LoadOrStore(roomTypeID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
