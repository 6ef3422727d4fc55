// Package session advances a game mode's state machine from resolved votes.
//
// A Session owns at most one voting window plus the two timers tied to it: the
// window deadline and the breather delay before the next window. Every method
// must be called from the game loop.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"go.uber.org/zap"
)

const faultMessage = "⚠️ Something went wrong counting the votes. The game has been reset, start it again to keep playing!"

const noVotesMessage = "😴 No votes received."

// Session is a single game mode's voting state machine
type Session struct {
	mode      string
	scheduler scheduler.Scheduler
	clock     clock.Clock
	uuid      uuid.UUID
	sink      Sink
	breather  time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics

	status       Status
	stage        int
	window       *voting.Window
	round        *Round
	participants []string
	seen         map[string]struct{}

	deadlineTask scheduler.Task
	breatherTask scheduler.Task
}

// New creates an idle session
func New(cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.Scheduler == nil {
		return nil, models.ErrNilScheduler
	}
	if cfg.Clock == nil {
		return nil, models.ErrNilClock
	}
	if cfg.Sink == nil {
		return nil, models.ErrNilSink
	}

	generator := cfg.UUIDGenerator
	if generator == nil {
		generator = uuid.New()
	}

	breather := cfg.Breather
	if breather <= 0 {
		breather = DefaultBreather
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		mode:      cfg.Mode,
		scheduler: cfg.Scheduler,
		clock:     cfg.Clock,
		uuid:      generator,
		sink:      cfg.Sink,
		breather:  breather,
		logger:    logger.With(zap.String("mode", cfg.Mode)),
		metrics:   cfg.Metrics,
		status:    StatusIdle,
		seen:      make(map[string]struct{}),
	}, nil
}

// Status returns the current status
func (s *Session) Status() Status {
	return s.status
}

// Stage returns the zero-based stage index
func (s *Session) Stage() int {
	return s.stage
}

// Window returns the current or most recently resolved window
func (s *Session) Window() *voting.Window {
	return s.window
}

// Remaining returns the time left in the open window
func (s *Session) Remaining() time.Duration {
	if s.status != StatusAwaitingVotes || s.window == nil {
		return 0
	}
	left := s.window.Deadline().Sub(s.clock.Now())
	if left < 0 {
		return 0
	}
	return left.Round(time.Second)
}

// Participants lists identities that voted in the current stage, in first-vote order
func (s *Session) Participants() []string {
	out := make([]string, len(s.participants))
	copy(out, s.participants)
	return out
}

// Open starts collecting votes for round. Only an idle session can open a window.
func (s *Session) Open(round *Round) error {
	if s.status != StatusIdle {
		return models.Refuse(models.ErrInvalidState, "A vote is already in progress!")
	}
	return s.open(round)
}

func (s *Session) open(round *Round) error {
	if round == nil || round.OnResolve == nil {
		return errors.New("round must declare OnResolve")
	}

	window, err := voting.New(&voting.Config{
		ID:           s.uuid.NewUUID(),
		Vocabulary:   round.Vocabulary,
		OpensAt:      s.clock.Now(),
		Duration:     round.Duration,
		EarlyResolve: round.EarlyResolve,
		Resolver:     round.Resolver,
	})
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}

	s.window = window
	s.round = round
	s.participants = nil
	s.seen = make(map[string]struct{})
	s.status = StatusAwaitingVotes
	s.deadlineTask = s.scheduler.AfterFunc(round.Duration, func() {
		s.expire(window)
	})

	s.logger.Info("voting window opened",
		zap.String("window_id", window.ID()),
		zap.Int("stage", s.stage),
		zap.Duration("duration", round.Duration))

	return nil
}

// Cast records a vote in the open window. When the vote satisfies the early
// resolve condition the window is resolved before Cast returns.
func (s *Session) Cast(identity, token string) (*CastResult, error) {
	if s.status != StatusAwaitingVotes || s.window == nil {
		s.metrics.VoteRejected(s.mode, models.ErrWindowClosed.Error())
		return nil, models.ErrWindowClosed
	}

	outcome, err := s.window.Cast(s.clock.Now(), identity, token)
	if err != nil {
		var kind models.GameError
		if !errors.As(err, &kind) {
			kind = models.ErrInvalidChoice
		}
		s.metrics.VoteRejected(s.mode, kind.Error())
		s.logger.Debug("vote rejected",
			zap.String("identity", identity),
			zap.String("token", token),
			zap.Error(err))
		return nil, err
	}

	s.metrics.VoteCast(s.mode)
	if _, ok := s.seen[identity]; !ok {
		s.seen[identity] = struct{}{}
		s.participants = append(s.participants, identity)
	}

	result := &CastResult{CastOutcome: outcome}
	if outcome.Early {
		result.Resolution = s.resolve(s.window, true)
	}
	return result, nil
}

// Resolve closes the open window immediately and returns the resolution
// messages. It is a no-op once the window has been resolved.
func (s *Session) Resolve() []string {
	if s.window == nil {
		return nil
	}
	return s.resolve(s.window, false)
}

// Reset cancels outstanding timers and returns the session to a fresh idle state
func (s *Session) Reset() {
	scheduler.Cancel(s.deadlineTask)
	scheduler.Cancel(s.breatherTask)
	s.deadlineTask = nil
	s.breatherTask = nil
	s.window = nil
	s.round = nil
	s.participants = nil
	s.seen = make(map[string]struct{})
	s.stage = 0
	s.status = StatusIdle
}

func (s *Session) expire(window *voting.Window) {
	if window != s.window {
		return
	}
	for _, msg := range s.resolve(window, false) {
		s.sink.Emit(msg)
	}
}

func (s *Session) resolve(window *voting.Window, early bool) (messages []string) {
	if window != s.window {
		return nil
	}
	result, first := window.Resolve(early)
	if !first {
		return nil
	}

	scheduler.Cancel(s.deadlineTask)
	s.deadlineTask = nil
	s.status = StatusResolving
	round := s.round

	trigger := metrics.TriggerDeadline
	if early {
		trigger = metrics.TriggerEarly
	}
	s.metrics.WindowResolved(s.mode, trigger)
	s.logger.Info("voting window resolved",
		zap.String("window_id", window.ID()),
		zap.String("trigger", trigger),
		zap.String("winner", result.Winner),
		zap.Int("ballots", result.Ballots))

	defer func() {
		if r := recover(); r != nil {
			messages = s.fault(window, fmt.Errorf("panic: %v", r))
		}
	}()

	if !result.HasWinner() {
		s.status = StatusIdle
		if round.OnEmpty != nil {
			return []string{round.OnEmpty()}
		}
		return []string{noVotesMessage}
	}

	outcome, err := round.OnResolve(result)
	if err != nil {
		return s.fault(window, err)
	}
	if outcome == nil {
		outcome = &Outcome{}
	}

	if outcome.Next == nil {
		s.status = StatusIdle
		return outcome.Messages
	}

	s.stage++
	next := outcome.Next
	s.breatherTask = s.scheduler.AfterFunc(s.breather, func() {
		s.breatherTask = nil
		if err := s.open(next); err != nil {
			s.sink.Emit(s.fault(s.window, err)[0])
			return
		}
		if next.Announce != "" {
			s.sink.Emit(next.Announce)
		}
	})
	return outcome.Messages
}

func (s *Session) fault(window *voting.Window, err error) []string {
	s.metrics.ResolveFault(s.mode)
	windowID := ""
	if window != nil {
		windowID = window.ID()
	}
	s.logger.Error("resolution failed, resetting session",
		zap.String("window_id", windowID),
		zap.Error(err))
	s.Reset()
	return []string{faultMessage}
}
