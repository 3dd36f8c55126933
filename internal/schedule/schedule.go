// Package schedule provides cancellable one-shot tasks. Every timer the
// accordion core uses (search debounce, hover lazy-load, delayed viewed
// writes, text animation reset, retry countdown) goes through a Scheduler so
// tests can drive time by hand.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the task. It reports whether the callback was still pending.
	Cancel() bool
}

type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Task
}

// Clock schedules on the wall clock.
type Clock struct{}

func (Clock) Now() time.Time { return time.Now() }

func (Clock) AfterFunc(d time.Duration, f func()) Task {
	return timerTask{t: time.AfterFunc(d, f)}
}

type timerTask struct {
	t *time.Timer
}

func (t timerTask) Cancel() bool { return t.t.Stop() }

// Fake is a manually advanced scheduler. Callbacks run synchronously inside
// Advance, in due-time order, so callers must not hold locks the callbacks take.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	f        *Fake
	due      time.Time
	seq      int
	fn       func()
	canceled bool
	fired    bool
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTask{f: f, due: f.now.Add(d), seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Pending returns the number of tasks that have neither fired nor been cancelled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every task that falls due.
// Tasks scheduled by a firing callback run too if they fall within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		if next.due.After(f.now) {
			f.now = next.due
		}
		next.fired = true
		fn := next.fn
		f.mu.Unlock()
		fn()
	}
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	var due []*fakeTask
	live := f.tasks[:0]
	for _, t := range f.tasks {
		if t.canceled || t.fired {
			continue
		}
		live = append(live, t)
		if !t.due.After(target) {
			due = append(due, t)
		}
	}
	f.tasks = live
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

func (t *fakeTask) Cancel() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	return true
}
