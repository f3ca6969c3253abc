package velocity

import (
	"context"
	"time"
)

// Signals are the behavioral inputs derived from attempt history.
type Signals struct {
	FirstVerification bool
	VelocityCheck     float64
	Attempts          int
}

// Service derives behavioral signals from the attempt store.
type Service struct {
	store  Store
	window time.Duration
	limit  int
}

// NewService builds a velocity service. limit is the attempt count at which
// the velocity signal saturates to 1.
func NewService(store Store, window time.Duration, limit int) *Service {
	return &Service{store: store, window: window, limit: limit}
}

// RecordAttempt registers a verification attempt for the subject.
func (s *Service) RecordAttempt(ctx context.Context, subject string) error {
	_, err := s.store.RecordAttempt(ctx, subject, s.window)
	return err
}

// Signals reads the attempt history for the subject. A subject with at most
// one attempt in the window counts as a first verification; repeat attempts
// scale the velocity signal linearly up to the configured limit.
func (s *Service) Signals(ctx context.Context, subject string) (Signals, error) {
	attempts, err := s.store.Count(ctx, subject, s.window)
	if err != nil {
		return Signals{}, err
	}

	sig := Signals{
		FirstVerification: attempts <= 1,
		Attempts:          attempts,
	}
	if attempts > 1 {
		sig.VelocityCheck = float64(attempts-1) / float64(s.limit)
		if sig.VelocityCheck > 1 {
			sig.VelocityCheck = 1
		}
	}
	return sig, nil
}
