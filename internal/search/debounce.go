package search

import (
	"sync"
	"time"

	"github.com/sheetfold/sheetfold/internal/schedule"
)

// Debouncer runs at most one pending call per key; each submission resets
// the delay and supersedes the previous call.
type Debouncer struct {
	sched   schedule.Scheduler
	mu      sync.Mutex
	pending map[string]*Call
}

// Call is one submission to a Debouncer.
type Call struct {
	d    *Debouncer
	key  string
	task schedule.Task
	done chan bool
}

func NewDebouncer(s schedule.Scheduler) *Debouncer {
	return &Debouncer{sched: s, pending: map[string]*Call{}}
}

// Submit schedules fn under key after delay. The call's Done channel
// receives true after fn ran, or false when a later submission superseded it
// or it was cancelled.
func (d *Debouncer) Submit(key string, delay time.Duration, fn func()) *Call {
	c := &Call{d: d, key: key, done: make(chan bool, 1)}

	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok {
		prev.task.Cancel()
		prev.done <- false
	}
	d.pending[key] = c
	c.task = d.sched.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.pending[key] != c {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
		c.done <- true
	})
	return c
}

func (c *Call) Done() <-chan bool { return c.done }

// Cancel drops the call if it is still pending. A call that already ran or
// was superseded leaves its key's newer submission alone.
func (c *Call) Cancel() {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.pending[c.key] != c {
		return
	}
	c.task.Cancel()
	c.done <- false
	delete(c.d.pending, c.key)
}
