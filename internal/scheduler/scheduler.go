// Package scheduler runs game callbacks one at a time.
//
// All command handling and timer callbacks are executed on a single goroutine
// owned by a Loop, so game state never needs locks. Timers post their callback
// back into the loop; a task cancelled before its callback is dequeued never runs.
package scheduler

import (
	"time"
)

// Task is a handle to a scheduled callback
type Task interface {
	// Cancel prevents future runs. It reports whether the task was still pending.
	Cancel() bool
}

// Scheduler schedules callbacks onto the game loop
type Scheduler interface {
	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) Task

	// Every runs fn every d until cancelled
	Every(d time.Duration, fn func()) Task
}

// Cancel cancels t if it is set. It is safe to call with a nil task.
func Cancel(t Task) {
	if t != nil {
		t.Cancel()
	}
}
