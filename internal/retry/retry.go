// Package retry renders load failures and drives the pausable auto-reload
// countdown shown for transient ones.
package retry

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/sheets"
)

// Tick is the countdown resolution and the re-check interval while paused.
const Tick = 100 * time.Millisecond

// Transient reports whether err should drive the auto-reload countdown
// rather than a static diagnostic panel.
func Transient(err error) bool {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return sheets.IsTransient(err)
}

// StaticPanel is the diagnostic shown for non-transient failures.
func StaticPanel(message string) string {
	return `<div class="error-message"><h3>⚠️ Error Loading Data</h3>` +
		`<p><strong>Error:</strong> ` + html.EscapeString(message) + `</p>` +
		`<p style="margin-top: 10px; font-size: 14px;">Make sure your spreadsheet is publicly accessible and the API key is valid.</p></div>`
}

type State struct {
	RemainingMS int64 `json:"remaining_ms"`
	Paused      bool  `json:"paused"`
	Fired       bool  `json:"fired"`
	Stopped     bool  `json:"stopped"`
}

// Countdown decrements every Tick unless paused. The reload check is armed
// once for the full delay; if the countdown is paused at that moment the check
// re-arms every Tick until it is resumed.
type Countdown struct {
	mu        sync.Mutex
	sched     schedule.Scheduler
	remaining time.Duration
	paused    bool
	fired     bool
	stopped   bool
	ticker    schedule.Task
	check     schedule.Task
	reload    func()
}

func Start(s schedule.Scheduler, delay time.Duration, reload func()) *Countdown {
	c := &Countdown{sched: s, remaining: delay, reload: reload}
	c.mu.Lock()
	c.ticker = s.AfterFunc(Tick, c.tick)
	c.check = s.AfterFunc(delay, c.checkAndRetry)
	c.mu.Unlock()
	return c
}

func (c *Countdown) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.fired {
		return
	}
	if !c.paused {
		c.remaining -= Tick
		if c.remaining <= 0 {
			c.remaining = 0
			c.ticker = nil
			return
		}
	}
	c.ticker = c.sched.AfterFunc(Tick, c.tick)
}

func (c *Countdown) checkAndRetry() {
	c.mu.Lock()
	if c.stopped || c.fired {
		c.mu.Unlock()
		return
	}
	if c.paused {
		c.check = c.sched.AfterFunc(Tick, c.checkAndRetry)
		c.mu.Unlock()
		return
	}
	c.fired = true
	c.cancelLocked()
	reload := c.reload
	c.mu.Unlock()
	if reload != nil {
		reload()
	}
}

func (c *Countdown) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Countdown) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Stop cancels the countdown without reloading.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.cancelLocked()
}

func (c *Countdown) cancelLocked() {
	if c.ticker != nil {
		c.ticker.Cancel()
		c.ticker = nil
	}
	if c.check != nil {
		c.check.Cancel()
		c.check = nil
	}
}

func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		RemainingMS: c.remaining.Milliseconds(),
		Paused:      c.paused,
		Fired:       c.fired,
		Stopped:     c.stopped,
	}
}

// Seconds is the remaining time as shown in the panel, one decimal place.
func (s State) Seconds() string {
	return fmt.Sprintf("%.1f", float64(s.RemainingMS)/1000)
}

// Panel renders the countdown panel for instanceID.
func (c *Countdown) Panel(instanceID, message string) string {
	detail := "No error code found."
	if message != "" {
		detail = "Error: " + message
	}
	id := html.EscapeString(instanceID)
	return `<div class="error-message auto-retry" data-instance="` + id + `">` +
		`<h3>⚠️ Connection Issue</h3>` +
		`<p>` + html.EscapeString(detail) + `</p>` +
		`<p><strong>Auto reloading data in <span id="` + id + `-countdown" class="accordion-countdown" style="font-weight: bold; color: #d39e00;">` +
		c.State().Seconds() + `</span> seconds...</strong></p>` +
		`<p style="margin-top: 10px; font-size: 12px; opacity: 0.7;">Hover over this message to pause the countdown.</p></div>`
}
