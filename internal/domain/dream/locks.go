package dream

import (
	"context"
	"sync"
)

// slot is the per-key coordination state. mu guards reserved and is only
// held for short counter sections; sem serializes longer mutations and can be
// abandoned when the caller's context ends.
type slot struct {
	mu       sync.Mutex
	reserved int
	sem      chan struct{}
	refs     int
}

func (s *slot) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slot) unlock() {
	<-s.sem
}

// keyedSlots hands out one slot per key and forgets it once unused.
type keyedSlots[K comparable] struct {
	mu    sync.Mutex
	slots map[K]*slot
}

func newKeyedSlots[K comparable]() *keyedSlots[K] {
	return &keyedSlots[K]{slots: make(map[K]*slot)}
}

func (k *keyedSlots[K]) acquire(key K) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	return s
}

func (k *keyedSlots[K]) release(key K, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

func (k *keyedSlots[K]) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
