package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	uuidMocks "github.com/KirkDiggler/crowdplay/internal/common/uuid/mocks"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SessionTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	mockUUID *uuidMocks.MockUUID
	manual   *scheduler.Manual
	emitted  []string
	session  *Session
	applied  int
}

func (s *SessionTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.mockUUID.EXPECT().NewUUID().Return("test-window-id").AnyTimes()

	s.manual = scheduler.NewManual(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC))
	s.emitted = nil
	s.applied = 0

	session, err := New(&Config{
		Mode:          "test",
		Scheduler:     s.manual,
		Clock:         s.manual,
		UUIDGenerator: s.mockUUID,
		Sink:          SinkFunc(func(msg string) { s.emitted = append(s.emitted, msg) }),
		Breather:      2 * time.Second,
		Metrics:       metrics.New(),
	})
	s.Require().NoError(err)
	s.session = session
}

func (s *SessionTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

// round builds an A/B/C round that continues until stages are exhausted
func (s *SessionTestSuite) round(stages int) *Round {
	return &Round{
		Vocabulary: voting.Tokens{"A", "B", "C"},
		Duration:   30 * time.Second,
		Announce:   "next stage open",
		OnResolve: func(result *voting.Result) (*Outcome, error) {
			s.applied++
			out := &Outcome{Messages: []string{fmt.Sprintf("%s wins stage %d", result.Winner, s.session.Stage())}}
			if s.session.Stage()+1 < stages {
				out.Next = s.round(stages)
			}
			return out, nil
		},
	}
}

func (s *SessionTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, models.ErrNilConfig)

	_, err = New(&Config{Clock: s.manual, Sink: SinkFunc(func(string) {})})
	s.ErrorIs(err, models.ErrNilScheduler)

	_, err = New(&Config{Scheduler: s.manual, Sink: SinkFunc(func(string) {})})
	s.ErrorIs(err, models.ErrNilClock)

	_, err = New(&Config{Scheduler: s.manual, Clock: s.manual})
	s.ErrorIs(err, models.ErrNilSink)
}

func (s *SessionTestSuite) TestOpenTwiceIsInvalidState() {
	s.Require().NoError(s.session.Open(s.round(1)))
	s.Equal(StatusAwaitingVotes, s.session.Status())

	err := s.session.Open(s.round(1))
	s.ErrorIs(err, models.ErrInvalidState)
}

func (s *SessionTestSuite) TestCastWithoutWindowIsClosed() {
	_, err := s.session.Cast("alice", "A")
	s.ErrorIs(err, models.ErrWindowClosed)
}

func (s *SessionTestSuite) TestDeadlineResolvesAndEmits() {
	s.Require().NoError(s.session.Open(s.round(1)))
	_, err := s.session.Cast("alice", "B")
	s.Require().NoError(err)

	s.manual.Advance(29 * time.Second)
	s.Empty(s.emitted)

	s.manual.Advance(time.Second)
	s.Equal([]string{"B wins stage 0"}, s.emitted)
	s.Equal(StatusIdle, s.session.Status())
	s.Equal(1, s.applied)
}

func (s *SessionTestSuite) TestCastAfterDeadlineIsClosed() {
	s.Require().NoError(s.session.Open(s.round(1)))
	s.manual.Advance(30 * time.Second)

	_, err := s.session.Cast("alice", "A")
	s.ErrorIs(err, models.ErrWindowClosed)
}

func (s *SessionTestSuite) TestResolveTwiceAppliesOnce() {
	s.Require().NoError(s.session.Open(s.round(1)))
	_, _ = s.session.Cast("alice", "A")

	first := s.session.Resolve()
	second := s.session.Resolve()
	s.Equal([]string{"A wins stage 0"}, first)
	s.Empty(second)
	s.Equal(1, s.applied)

	// the cancelled deadline never fires
	s.manual.Advance(time.Minute)
	s.Equal(1, s.applied)
	s.Empty(s.emitted)
}

func (s *SessionTestSuite) TestTieAdvancesStageAndOpensAfterBreather() {
	s.Require().NoError(s.session.Open(s.round(3)))
	_, _ = s.session.Cast("alice", "A")
	_, _ = s.session.Cast("bob", "B")

	s.manual.Advance(30 * time.Second)
	s.Equal([]string{"A wins stage 0"}, s.emitted)
	s.Equal(1, s.session.Stage())
	s.Equal(StatusResolving, s.session.Status())

	_, err := s.session.Cast("carol", "C")
	s.ErrorIs(err, models.ErrWindowClosed)

	s.manual.Advance(2 * time.Second)
	s.Equal(StatusAwaitingVotes, s.session.Status())
	s.Equal([]string{"A wins stage 0", "next stage open"}, s.emitted)
	s.Empty(s.session.Participants())

	_, err = s.session.Cast("alice", "C")
	s.NoError(err)
}

func (s *SessionTestSuite) TestEarlyResolveClosesImmediately() {
	round := s.round(1)
	round.EarlyResolve = voting.Quota(2)
	s.Require().NoError(s.session.Open(round))

	res, err := s.session.Cast("alice", "C")
	s.Require().NoError(err)
	s.Empty(res.Resolution)

	res, err = s.session.Cast("bob", "C")
	s.Require().NoError(err)
	s.True(res.Early)
	s.Equal([]string{"C wins stage 0"}, res.Resolution)
	s.Equal(StatusIdle, s.session.Status())
	s.True(s.session.Window().Resolved())

	s.manual.Advance(time.Minute)
	s.Empty(s.emitted)
	s.Equal(1, s.applied)
}

func (s *SessionTestSuite) TestEmptyWindowUsesFallback() {
	round := s.round(3)
	round.OnEmpty = func() string { return "nobody came" }
	s.Require().NoError(s.session.Open(round))

	s.manual.Advance(30 * time.Second)
	s.Equal([]string{"nobody came"}, s.emitted)
	s.Equal(StatusIdle, s.session.Status())
	s.Equal(0, s.session.Stage())
	s.Equal(0, s.applied)
}

func (s *SessionTestSuite) TestResetCancelsPendingTimers() {
	s.Require().NoError(s.session.Open(s.round(3)))
	_, _ = s.session.Cast("alice", "A")
	s.session.Reset()

	s.manual.Advance(time.Minute)
	s.Empty(s.emitted)
	s.Equal(StatusIdle, s.session.Status())
	s.Equal(0, s.manual.Pending())
}

func (s *SessionTestSuite) TestResetDuringBreatherCancelsNextWindow() {
	s.Require().NoError(s.session.Open(s.round(3)))
	_, _ = s.session.Cast("alice", "A")
	s.manual.Advance(30 * time.Second)
	s.Len(s.emitted, 1)

	s.session.Reset()
	s.manual.Advance(time.Minute)
	s.Len(s.emitted, 1)
	s.Equal(StatusIdle, s.session.Status())
}

func (s *SessionTestSuite) TestStaleDeadlineDoesNotTouchFreshWindow() {
	s.Require().NoError(s.session.Open(s.round(1)))
	s.manual.Advance(10 * time.Second)
	s.session.Reset()
	s.Require().NoError(s.session.Open(s.round(1)))
	_, _ = s.session.Cast("alice", "B")

	// first window's deadline passes
	s.manual.Advance(20 * time.Second)
	s.Empty(s.emitted)
	s.Equal(StatusAwaitingVotes, s.session.Status())

	s.manual.Advance(10 * time.Second)
	s.Equal([]string{"B wins stage 0"}, s.emitted)
}

func (s *SessionTestSuite) TestParticipantsTrackVoters() {
	s.Require().NoError(s.session.Open(s.round(1)))
	_, _ = s.session.Cast("alice", "A")
	_, _ = s.session.Cast("bob", "B")
	_, err := s.session.Cast("alice", "C")
	s.ErrorIs(err, models.ErrDuplicateVote)

	s.Equal([]string{"alice", "bob"}, s.session.Participants())
}

func (s *SessionTestSuite) TestResolveErrorResetsSession() {
	s.Require().NoError(s.session.Open(&Round{
		Vocabulary: voting.Tokens{"A"},
		Duration:   time.Second,
		OnResolve: func(*voting.Result) (*Outcome, error) {
			return nil, errors.New("boom")
		},
	}))
	_, _ = s.session.Cast("alice", "A")

	s.manual.Advance(time.Second)
	s.Equal([]string{faultMessage}, s.emitted)
	s.Equal(StatusIdle, s.session.Status())
}

func (s *SessionTestSuite) TestResolvePanicResetsSession() {
	s.Require().NoError(s.session.Open(&Round{
		Vocabulary: voting.Tokens{"A"},
		Duration:   time.Second,
		OnResolve: func(*voting.Result) (*Outcome, error) {
			panic("boom")
		},
	}))
	_, _ = s.session.Cast("alice", "A")

	msgs := s.session.Resolve()
	s.Equal([]string{faultMessage}, msgs)
	s.Equal(StatusIdle, s.session.Status())
	s.Require().NoError(s.session.Open(s.round(1)))
}

func (s *SessionTestSuite) TestRemaining() {
	s.Equal(time.Duration(0), s.session.Remaining())
	s.Require().NoError(s.session.Open(s.round(1)))
	s.manual.Advance(10 * time.Second)
	s.Equal(20*time.Second, s.session.Remaining())
}
