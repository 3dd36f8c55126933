package accordion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sheetfold/sheetfold/internal/media"
	"github.com/sheetfold/sheetfold/internal/retry"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/sheets"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Instance is one mounted accordion. All methods are safe for concurrent use.
type Instance struct {
	ID     string
	Anchor string

	opts     Options
	ctx      context.Context
	source   sheets.Source
	embed    *media.Embedder
	viewed   *viewed.Store
	sched    schedule.Scheduler
	onViewed func(sourceID string)

	mu        sync.Mutex
	status    Status
	gen       int
	view      View
	failure   error
	countdown *retry.Countdown
	loadedAt  time.Time
}

func (in *Instance) Options() Options { return in.opts }

func (in *Instance) Embedder() *media.Embedder { return in.embed }

func (in *Instance) Status() Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status
}

// Load fetches and renders the data, replacing the previous view in one
// step. A failure replaces the view with the error state; transient failures
// start the retry countdown.
func (in *Instance) Load(ctx context.Context) error {
	in.mu.Lock()
	in.gen++
	gen := in.gen
	in.status = StatusLoading
	in.stopCountdownLocked()
	in.mu.Unlock()

	values, err := in.source.Load(ctx)
	var items []*Item
	if err == nil {
		items = Build(Select(values, in.opts), in.opts, in.embed)
	}
	badges := in.badges(items)

	in.mu.Lock()
	defer in.mu.Unlock()
	if gen != in.gen {
		return err
	}
	for _, it := range in.view.Items {
		it.release()
	}
	in.view = View{}
	if err != nil {
		in.failLocked(err)
		return err
	}
	for _, it := range items {
		if b, ok := badges[it.RowID]; ok {
			it.Badge = b
		}
	}
	in.view.Items = items
	in.view.MarkLastVisible()
	in.view.ApplyParity()
	in.failure = nil
	in.loadedAt = in.sched.Now()
	in.status = StatusReady
	if len(items) == 0 {
		in.status = StatusEmpty
	}
	slog.Info("accordion loaded", "instance", in.ID, "anchor", in.Anchor, "rows", len(values), "items", len(items))
	return nil
}

func (in *Instance) failLocked(err error) {
	in.status = StatusError
	in.failure = err
	if !retry.Transient(err) {
		slog.Error("accordion load failed", "instance", in.ID, "error", err)
		return
	}
	slog.Warn("accordion load failed, retrying", "instance", in.ID, "delay", in.opts.RetryDelay, "error", err)
	in.countdown = retry.Start(in.sched, in.opts.RetryDelay, func() {
		_ = in.Load(in.ctx)
	})
}

func (in *Instance) stopCountdownLocked() {
	if in.countdown != nil {
		in.countdown.Stop()
		in.countdown = nil
	}
}

// Countdown returns the running retry countdown, if any.
func (in *Instance) Countdown() (*retry.Countdown, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.countdown, in.countdown != nil
}

// Update runs fn against the view under the instance lock.
func (in *Instance) Update(fn func(v *View)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	fn(&in.view)
}

func (in *Instance) itemLocked(index int) (*Item, error) {
	if index < 0 || index >= len(in.view.Items) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownItem, index)
	}
	return in.view.Items[index], nil
}

// ToggleResult describes the transition applied by Toggle.
type ToggleResult struct {
	Index      int    `json:"index"`
	Expanded   bool   `json:"expanded"`
	Transition string `json:"transition"`
	Animation  string `json:"animation,omitempty"`
	Viewed     string `json:"viewed,omitempty"`

	// ViewedDelayMS is how long a scheduled viewed write waits.
	ViewedDelayMS int64  `json:"viewed_delay_ms,omitempty"`
	HTML          string `json:"html"`
}

const (
	viewedWritten   = "written"
	viewedScheduled = "scheduled"
	viewedCancelled = "cancelled"
)

// Toggle flips an item between collapsed and expanded. Expanding
// materializes lazy media, starts the text animation and records the viewed
// timestamp now or after the configured delay. Collapsing cancels a pending
// viewed write and drops the transition.
func (in *Instance) Toggle(index int) (ToggleResult, error) {
	in.mu.Lock()
	it, err := in.itemLocked(index)
	if err != nil {
		in.mu.Unlock()
		return ToggleResult{}, err
	}
	if !it.Expandable() {
		in.mu.Unlock()
		return ToggleResult{}, fmt.Errorf("%w: %d", ErrNotExpandable, index)
	}

	res := ToggleResult{Index: index, Transition: "none"}
	mark := false
	if !it.Expanded {
		it.Expanded = true
		in.materializeLocked(it)
		res.Transition = "max-height " + seconds(in.opts.TransitionSpeed) + " " + in.opts.Transition
		if in.opts.Animation != "none" {
			res.Animation = in.opts.Animation + " " + seconds(in.opts.AnimationTime) + " ease-out"
			in.animateLocked(it)
		}
		if in.opts.ViewedColumn >= 0 && it.RowID != "" {
			if in.opts.ViewedDelay <= 0 {
				mark = true
				res.Viewed = viewedWritten
			} else {
				in.scheduleViewedLocked(it)
				res.Viewed = viewedScheduled
				res.ViewedDelayMS = in.opts.ViewedDelay.Milliseconds()
			}
		}
	} else {
		if it.viewedTask != nil {
			res.Viewed = viewedCancelled
		}
		it.collapse()
	}
	res.Expanded = it.Expanded
	rowID := it.RowID
	in.mu.Unlock()

	if mark {
		in.markViewed(rowID)
	}
	res.HTML = in.ItemHTML(index)
	return res, nil
}

func (in *Instance) animateLocked(it *Item) {
	if it.animTask != nil {
		it.animTask.Cancel()
	}
	it.Animating = true
	var task schedule.Task
	task = in.sched.AfterFunc(in.opts.AnimationTime, func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		if it.animTask == task {
			it.Animating = false
			it.animTask = nil
		}
	})
	it.animTask = task
}

func (in *Instance) scheduleViewedLocked(it *Item) {
	if it.viewedTask != nil {
		it.viewedTask.Cancel()
	}
	var task schedule.Task
	task = in.sched.AfterFunc(in.opts.ViewedDelay, func() {
		in.mu.Lock()
		if it.viewedTask != task {
			in.mu.Unlock()
			return
		}
		it.viewedTask = nil
		rowID := it.RowID
		in.mu.Unlock()
		in.markViewed(rowID)
	})
	it.viewedTask = task
}

func (in *Instance) markViewed(rowID string) {
	in.viewed.Mark(rowID)
	if in.onViewed != nil {
		in.onViewed(in.opts.SourceID)
		return
	}
	in.RefreshBadges()
}

// Hover schedules lazy media materialization after HoverDelay. The returned
// channel receives true once the item is materialized and false if the hover
// is cancelled or superseded.
func (in *Instance) Hover(index int) (<-chan bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	it, err := in.itemLocked(index)
	if err != nil {
		return nil, err
	}
	if !it.Expandable() {
		return nil, fmt.Errorf("%w: %d", ErrNotExpandable, index)
	}
	done := make(chan bool, 1)
	if it.Materialized {
		done <- true
		return done, nil
	}
	it.cancelHover()
	it.hoverDone = done
	it.hoverTask = in.sched.AfterFunc(HoverDelay, func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		if it.hoverDone == done {
			in.materializeLocked(it)
		}
	})
	return done, nil
}

// CancelHover abandons a pending hover load.
func (in *Instance) CancelHover(index int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	it, err := in.itemLocked(index)
	if err != nil {
		return err
	}
	it.cancelHover()
	return nil
}

func (in *Instance) materializeLocked(it *Item) {
	if it.hoverTask != nil {
		it.hoverTask.Cancel()
		it.hoverTask = nil
	}
	if !it.Materialized {
		it.Answer = in.embed.MaterializeAll(it.Answer)
		it.Materialized = true
	}
	if it.hoverDone != nil {
		it.hoverDone <- true
		it.hoverDone = nil
	}
}

func (in *Instance) badges(items []*Item) map[string]viewed.Badge {
	if in.opts.ViewedColumn < 0 {
		return nil
	}
	var rows []viewed.Row
	for _, it := range items {
		if it.RowID != "" {
			rows = append(rows, viewed.Row{ID: it.RowID, LastUpdated: it.LastUpdated})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return in.viewed.Badges(rows)
}

// RefreshBadges recomputes the viewed range and repaints every badge.
func (in *Instance) RefreshBadges() {
	in.mu.Lock()
	gen := in.gen
	items := append([]*Item(nil), in.view.Items...)
	in.mu.Unlock()

	badges := in.badges(items)

	in.mu.Lock()
	defer in.mu.Unlock()
	if gen != in.gen {
		return
	}
	for _, it := range in.view.Items {
		if b, ok := badges[it.RowID]; ok {
			it.Badge = b
		}
	}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
