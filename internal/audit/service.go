package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists audit entries. Append must keep each entry intact under
// concurrent use; List returns a full ordered snapshot.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// Service captures structured audit events. It is append-only and uses the
// store for persistence so tests can swap sinks easily.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record assigns the entry id and server timestamp and appends the entry.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return s.store.Append(ctx, entry)
}

// List returns the full audit trail in insertion order.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.List(ctx)
}
