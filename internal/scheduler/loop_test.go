package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LoopTestSuite struct {
	suite.Suite
	loop   *Loop
	cancel context.CancelFunc
	exited chan struct{}
}

func (s *LoopTestSuite) SetupTest() {
	s.loop = NewLoop(&LoopConfig{QueueSize: 16})
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.exited = make(chan struct{})
	go func() {
		defer close(s.exited)
		_ = s.loop.Run(ctx)
	}()
}

func (s *LoopTestSuite) TearDownTest() {
	s.cancel()
	<-s.exited
}

func TestLoopTestSuite(t *testing.T) {
	suite.Run(t, new(LoopTestSuite))
}

func (s *LoopTestSuite) TestDoRunsAndWaits() {
	value := 0
	err := s.loop.Do(context.Background(), func() { value = 7 })
	s.Require().NoError(err)
	s.Equal(7, value)
}

func (s *LoopTestSuite) TestPanicIsRecovered() {
	err := s.loop.Do(context.Background(), func() { panic("boom") })
	s.Require().NoError(err)

	ok := false
	s.Require().NoError(s.loop.Do(context.Background(), func() { ok = true }))
	s.True(ok)
}

func (s *LoopTestSuite) TestAfterFuncRunsOnLoop() {
	var fired atomic.Bool
	_ = s.loop.Do(context.Background(), func() {
		s.loop.AfterFunc(10*time.Millisecond, func() { fired.Store(true) })
	})

	s.Eventually(fired.Load, time.Second, 5*time.Millisecond)
}

func (s *LoopTestSuite) TestCancelledAfterFuncDoesNotRun() {
	var fired atomic.Bool
	_ = s.loop.Do(context.Background(), func() {
		task := s.loop.AfterFunc(10*time.Millisecond, func() { fired.Store(true) })
		s.True(task.Cancel())
	})

	time.Sleep(50 * time.Millisecond)
	s.False(fired.Load())
}

func (s *LoopTestSuite) TestEveryTicksUntilCancelled() {
	var ticks atomic.Int32
	var task Task
	_ = s.loop.Do(context.Background(), func() {
		task = s.loop.Every(5*time.Millisecond, func() { ticks.Add(1) })
	})

	s.Eventually(func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
	_ = s.loop.Do(context.Background(), func() { task.Cancel() })

	// drain anything already queued before sampling
	_ = s.loop.Do(context.Background(), func() {})
	seen := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	s.Equal(seen, ticks.Load())
}

func (s *LoopTestSuite) TestPostAfterStopFails() {
	s.cancel()
	<-s.exited

	s.ErrorIs(s.loop.Post(func() {}), ErrLoopStopped)
}
