package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited
var ErrLoopStopped = errors.New("loop stopped")

// LoopConfig holds configuration for the event loop
type LoopConfig struct {
	// QueueSize bounds the number of pending callbacks
	QueueSize int

	Logger *zap.Logger
}

// Loop serializes callbacks onto one goroutine
type Loop struct {
	queue  chan func()
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

// NewLoop creates a loop; call Run to start processing
func NewLoop(cfg *LoopConfig) *Loop {
	size := 256
	logger := zap.NewNop()
	if cfg != nil {
		if cfg.QueueSize > 0 {
			size = cfg.QueueSize
		}
		if cfg.Logger != nil {
			logger = cfg.Logger
		}
	}

	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes callbacks until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.execute(fn)
		}
	}
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("recovered panic in loop callback", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}

// Post enqueues fn without waiting for it to run
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case <-l.done:
		return ErrLoopStopped
	case l.queue <- fn:
		return nil
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	err := l.Post(func() {
		defer close(finished)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return fmt.Errorf("waiting for loop: %w", ctx.Err())
	}
}

// AfterFunc runs fn on the loop once d has elapsed
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &loopTask{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			// cancelled is only touched on the loop goroutine
			if t.cancelled || t.fired {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

// Every runs fn on the loop each time d elapses
func (l *Loop) Every(d time.Duration, fn func()) Task {
	t := &tickerTask{stop: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				_ = l.Post(func() {
					if t.stopped() {
						return
					}
					fn()
				})
			}
		}
	}()

	return t
}

type loopTask struct {
	timer     *time.Timer
	cancelled bool
	fired     bool
}

// Cancel must be called from the loop goroutine
func (t *loopTask) Cancel() bool {
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	t.timer.Stop()
	return true
}

type tickerTask struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTask) Cancel() bool {
	cancelled := false
	t.once.Do(func() {
		close(t.stop)
		cancelled = true
	})
	return cancelled
}

func (t *tickerTask) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}
