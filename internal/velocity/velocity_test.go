package velocity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const testWindow = time.Hour

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestRecordAttempt() {
	s.Run("first attempt counts one", func() {
		count, err := s.store.RecordAttempt(s.ctx, "doc:first", testWindow)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("repeat attempts accumulate", func() {
		for i := 0; i < 3; i++ {
			_, err := s.store.RecordAttempt(s.ctx, "doc:repeat", testWindow)
			s.Require().NoError(err)
		}
		count, err := s.store.Count(s.ctx, "doc:repeat", testWindow)
		s.Require().NoError(err)
		s.Equal(3, count)
	})

	s.Run("keys are independent", func() {
		_, err := s.store.RecordAttempt(s.ctx, "doc:a", testWindow)
		s.Require().NoError(err)
		count, err := s.store.Count(s.ctx, "doc:b", testWindow)
		s.Require().NoError(err)
		s.Equal(0, count)
	})

	s.Run("attempts outside the window expire", func() {
		_, err := s.store.RecordAttempt(s.ctx, "doc:expire", testWindow)
		s.Require().NoError(err)

		s.store.mu.Lock()
		sw := s.store.windows["doc:expire"]
		sw.timestamps[0] = time.Now().Add(-2 * testWindow)
		s.store.mu.Unlock()

		count, err := s.store.Count(s.ctx, "doc:expire", testWindow)
		s.Require().NoError(err)
		s.Equal(0, count)
	})
}

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = NewService(s.store, testWindow, 5)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSignals() {
	s.Run("unseen subject is a first verification", func() {
		signals, err := s.service.Signals(s.ctx, "doc:new")
		s.Require().NoError(err)
		s.True(signals.FirstVerification)
		s.Zero(signals.VelocityCheck)
	})

	s.Run("single attempt is still a first verification", func() {
		s.Require().NoError(s.service.RecordAttempt(s.ctx, "doc:one"))
		signals, err := s.service.Signals(s.ctx, "doc:one")
		s.Require().NoError(err)
		s.True(signals.FirstVerification)
		s.Zero(signals.VelocityCheck)
		s.Equal(1, signals.Attempts)
	})

	s.Run("repeat attempts scale velocity", func() {
		for i := 0; i < 3; i++ {
			s.Require().NoError(s.service.RecordAttempt(s.ctx, "doc:hot"))
		}
		signals, err := s.service.Signals(s.ctx, "doc:hot")
		s.Require().NoError(err)
		s.False(signals.FirstVerification)
		s.InDelta(0.4, signals.VelocityCheck, 1e-9)
	})

	s.Run("velocity saturates at one", func() {
		for i := 0; i < 10; i++ {
			s.Require().NoError(s.service.RecordAttempt(s.ctx, "doc:flood"))
		}
		signals, err := s.service.Signals(s.ctx, "doc:flood")
		s.Require().NoError(err)
		s.Equal(1.0, signals.VelocityCheck)
	})
}
