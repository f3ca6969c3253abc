package verification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"verigate/internal/compliance"
	"verigate/internal/risk"
)

// InMemorySessionStore keeps sessions in process memory. It intentionally
// favors clarity over performance.
//
// Concurrency model: the outer RWMutex guards the map; each session entry
// carries its own mutex so mutations on the same id are serialized while
// operations on different ids proceed in parallel.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *InMemorySessionStore) Create(_ context.Context) (Session, error) {
	session := Session{
		ID:        uuid.NewString(),
		Stage:     StageCreated,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	return session, nil
}

func (s *InMemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return copySession(entry.session), nil
}

func (s *InMemorySessionStore) ApplyDocumentStage(_ context.Context, id string, fields map[string]string, comp DocumentCompliance) (Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.session.Stage != StageCreated {
		return Session{}, ErrInvalidTransition
	}

	// Data minimization is enforced here, not just reported: keys outside
	// the allow-list never reach the stored session.
	entry.session.DocumentFields = compliance.DataMinimization(fields).Minimized
	entry.session.DocumentCompliance = comp
	entry.session.Stage = StageDocumentDone
	return copySession(entry.session), nil
}

func (s *InMemorySessionStore) ApplyBiometricStage(_ context.Context, id string, result BiometricResult) (Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.session.Stage != StageDocumentDone {
		return Session{}, ErrInvalidTransition
	}

	entry.session.BiometricResult = &result
	entry.session.Stage = StageBiometricDone
	return copySession(entry.session), nil
}

func (s *InMemorySessionStore) ApplyDecision(_ context.Context, id string, scores risk.Scores, decision risk.Decision) (Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.session.Stage != StageBiometricDone {
		return Session{}, ErrInvalidTransition
	}

	entry.session.RiskScores = &scores
	entry.session.Decision = decision
	entry.session.Stage = StageDecided
	return copySession(entry.session), nil
}

func (s *InMemorySessionStore) entry(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.sessions[id]; ok {
		return entry, nil
	}
	return nil, ErrNotFound
}

// copySession returns a deep copy so callers cannot mutate stored state.
func copySession(in Session) Session {
	out := in
	if in.DocumentFields != nil {
		out.DocumentFields = make(map[string]string, len(in.DocumentFields))
		for k, v := range in.DocumentFields {
			out.DocumentFields[k] = v
		}
	}
	if in.BiometricResult != nil {
		result := *in.BiometricResult
		out.BiometricResult = &result
	}
	if in.RiskScores != nil {
		scores := *in.RiskScores
		out.RiskScores = &scores
	}
	return out
}
