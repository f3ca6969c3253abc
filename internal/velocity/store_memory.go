package velocity

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements Store with an in-memory sliding window. Not
// distributed; use the Redis store when running more than one instance.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
}

// slidingWindow tracks attempt timestamps for one subject key.
type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*slidingWindow)}
}

func (s *InMemoryStore) RecordAttempt(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}

	now := time.Now()
	sw.cleanup(now, window)
	sw.timestamps = append(sw.timestamps, now)
	return len(sw.timestamps), nil
}

func (s *InMemoryStore) Count(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.windows[key]
	if sw == nil {
		return 0, nil
	}
	sw.cleanup(time.Now(), window)
	return len(sw.timestamps), nil
}

// cleanup removes timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := sw.timestamps[:0]
	for _, ts := range sw.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	sw.timestamps = kept
}
