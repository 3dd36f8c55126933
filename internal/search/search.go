package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/schedule"
)

const ScopeAll = "all"

type Result struct {
	Term    string `json:"term"`
	Scope   string `json:"scope"`
	Visible int    `json:"visible"`
	// Instances holds the visible count per instance id.
	Instances map[string]int `json:"instances"`
}

type Engine struct {
	registry *accordion.Registry
	debounce *Debouncer
}

func NewEngine(r *accordion.Registry, s schedule.Scheduler) *Engine {
	return &Engine{registry: r, debounce: NewDebouncer(s)}
}

// Search runs term with the scope configured for instance id.
func (e *Engine) Search(id, term string) (Result, error) {
	in, err := e.registry.Get(id)
	if err != nil {
		return Result{}, err
	}
	if in.Options().Search.Scope == ScopeAll {
		return e.Global(term), nil
	}
	return Instance(in, term), nil
}

// Debounced waits out the instance's search delay before searching. A newer
// request for the same instance supersedes this one, reported as stale.
func (e *Engine) Debounced(ctx context.Context, id, term string) (Result, bool, error) {
	in, err := e.registry.Get(id)
	if err != nil {
		return Result{}, false, err
	}
	delay := time.Duration(in.Options().Search.DelayMS) * time.Millisecond

	var res Result
	call := e.debounce.Submit(id, delay, func() {
		res, err = e.Search(id, term)
	})
	select {
	case ran := <-call.Done():
		if !ran {
			return Result{}, true, nil
		}
		return res, false, err
	case <-ctx.Done():
		call.Cancel()
		return Result{}, false, ctx.Err()
	}
}

// Instance searches one accordion. The header row stays visible, matching
// items are highlighted from their original markup and an empty term clears
// all highlights.
func Instance(in *accordion.Instance, term string) Result {
	m := Compile(term)
	res := Result{Term: term, Scope: "instance", Instances: map[string]int{}}
	in.Update(func(v *accordion.View) {
		for _, it := range v.Items {
			show := it.Header || m.Match(it.Text())
			it.Hidden = !show
			it.Highlight = nil
			if show && !it.Header && !m.Empty() {
				it.Highlight = m.Highlight
			}
		}
		finish(v)
		res.Visible = v.Visible()
		v.NoResults = ""
		if res.Visible == 0 && !m.Empty() {
			v.NoResults = term
		}
	})
	res.Instances[in.ID] = res.Visible
	slog.Debug("instance search", "instance", in.ID, "term", term, "visible", res.Visible)
	return res
}

// Global searches every mounted accordion without highlighting. The
// no-results message goes to each empty container only when nothing on the
// page matched.
func (e *Engine) Global(term string) Result {
	m := Compile(term)
	res := Result{Term: term, Scope: ScopeAll, Instances: map[string]int{}}
	instances := e.registry.Instances()
	for _, in := range instances {
		in.Update(func(v *accordion.View) {
			for _, it := range v.Items {
				it.Hidden = !(it.Header || m.Match(it.Text()))
			}
			finish(v)
			v.NoResults = ""
			res.Instances[in.ID] = v.Visible()
			res.Visible += v.Visible()
		})
	}
	if res.Visible == 0 && !m.Empty() {
		for _, in := range instances {
			in.Update(func(v *accordion.View) {
				if v.Visible() == 0 {
					v.NoResults = term
				}
			})
		}
	}
	slog.Debug("global search", "term", term, "visible", res.Visible)
	return res
}

func finish(v *accordion.View) {
	v.CollapseAll()
	v.MarkLastVisible()
	v.ApplyParity()
}
