package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ManualTestSuite struct {
	suite.Suite
	start  time.Time
	manual *Manual
}

func (s *ManualTestSuite) SetupTest() {
	s.start = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.manual = NewManual(s.start)
}

func TestManualTestSuite(t *testing.T) {
	suite.Run(t, new(ManualTestSuite))
}

func (s *ManualTestSuite) TestAfterFuncFiresAtDueTime() {
	fired := time.Time{}
	s.manual.AfterFunc(30*time.Second, func() { fired = s.manual.Now() })

	s.manual.Advance(29 * time.Second)
	s.True(fired.IsZero())

	s.manual.Advance(time.Second)
	s.Equal(s.start.Add(30*time.Second), fired)
	s.Equal(0, s.manual.Pending())
}

func (s *ManualTestSuite) TestCancelledTaskNeverRuns() {
	ran := false
	task := s.manual.AfterFunc(time.Second, func() { ran = true })

	s.True(task.Cancel())
	s.False(task.Cancel())
	s.manual.Advance(time.Minute)
	s.False(ran)
}

func (s *ManualTestSuite) TestTasksRunInDueOrder() {
	var order []string
	s.manual.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	s.manual.AfterFunc(time.Second, func() { order = append(order, "a") })
	s.manual.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	s.manual.Advance(5 * time.Second)
	s.Equal([]string{"a", "b", "c"}, order)
}

func (s *ManualTestSuite) TestTaskScheduledByCallbackRunsInSameAdvance() {
	ran := false
	s.manual.AfterFunc(time.Second, func() {
		s.manual.AfterFunc(2*time.Second, func() { ran = true })
	})

	s.manual.Advance(3 * time.Second)
	s.True(ran)
}

func (s *ManualTestSuite) TestEveryRepeatsUntilCancelled() {
	ticks := 0
	task := s.manual.Every(time.Minute, func() { ticks++ })

	s.manual.Advance(3 * time.Minute)
	s.Equal(3, ticks)

	task.Cancel()
	s.manual.Advance(3 * time.Minute)
	s.Equal(3, ticks)
}
