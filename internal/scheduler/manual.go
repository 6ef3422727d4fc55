package scheduler

import (
	"sort"
	"time"
)

// Manual is a Scheduler and clock driven by Advance. Callbacks run on the
// caller's goroutine inside Advance, in due-time order.
type Manual struct {
	now   time.Time
	seq   int
	tasks []*manualTask
}

// NewManual creates a manual scheduler starting at start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc schedules fn to run once at Now()+d
func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	return m.add(d, 0, fn)
}

// Every schedules fn at every multiple of d
func (m *Manual) Every(d time.Duration, fn func()) Task {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) *manualTask {
	m.seq++
	t := &manualTask{due: m.now.Add(d), interval: interval, fn: fn, seq: m.seq}
	m.tasks = append(m.tasks, t)
	return t
}

// Pending counts tasks that have not fired or been cancelled
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, running every task that falls due
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
		} else {
			next.done = true
		}
		next.fn()
	}
	m.now = target
	m.compact()
}

func (m *Manual) nextDue(limit time.Time) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if !t.done && !t.due.After(limit) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (m *Manual) compact() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	m.tasks = live
}

type manualTask struct {
	due      time.Time
	interval time.Duration
	fn       func()
	seq      int
	done     bool
}

func (t *manualTask) Cancel() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}
