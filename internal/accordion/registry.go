package accordion

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sheetfold/sheetfold/internal/media"
	"github.com/sheetfold/sheetfold/internal/retry"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/sheets"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

// Registry holds every mounted instance, keyed by generated instance id and
// by the anchor it was mounted into.
type Registry struct {
	ctx     context.Context
	sched   schedule.Scheduler
	storage viewed.Storage

	mu       sync.RWMutex
	byID     map[string]*Instance
	byAnchor map[string]*Instance
	order    []*Instance
}

func NewRegistry(ctx context.Context, sched schedule.Scheduler, storage viewed.Storage) *Registry {
	if ctx == nil {
		ctx = context.Background()
	}
	if sched == nil {
		sched = schedule.Clock{}
	}
	return &Registry{
		ctx:      ctx,
		sched:    sched,
		storage:  storage,
		byID:     map[string]*Instance{},
		byAnchor: map[string]*Instance{},
	}
}

// Mount creates the instance for an anchor. Each anchor mounts once.
func (r *Registry) Mount(opts Options, src sheets.Source) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAnchor[opts.ID]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyMounted, opts.ID)
	}
	in := &Instance{
		ID:     "accordion_" + uuid.NewString(),
		Anchor: opts.ID,
		opts:   opts,
		ctx:    r.ctx,
		source: src,
		embed:  media.New(opts.Media),
		viewed: viewed.New(r.storage, opts.SourceID, viewed.Options{
			Text:     opts.ViewedText,
			Title:    opts.ViewedTitle,
			Palette:  opts.ViewedPalette,
			Location: opts.Location,
		}, r.sched.Now),
		sched:  r.sched,
		status: StatusIdle,
	}
	in.onViewed = r.RefreshSource
	r.byID[in.ID] = in
	r.byAnchor[in.Anchor] = in
	r.order = append(r.order, in)
	return in, nil
}

func (r *Registry) Get(id string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	return in, nil
}

func (r *Registry) ByAnchor(anchor string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.byAnchor[anchor]
	return in, ok
}

// Instances returns the mounted instances in mount order.
func (r *Registry) Instances() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Instance(nil), r.order...)
}

// LoadAll loads every instance configured to fetch on load.
func (r *Registry) LoadAll(ctx context.Context) {
	for _, in := range r.Instances() {
		if in.opts.FetchOnLoad {
			_ = in.Load(ctx)
		}
	}
}

// RefreshSource repaints badges in every instance reading sourceID.
func (r *Registry) RefreshSource(sourceID string) {
	for _, in := range r.Instances() {
		if in.opts.SourceID == sourceID {
			in.RefreshBadges()
		}
	}
}

// RefreshBadges repaints badges in every instance.
func (r *Registry) RefreshBadges() {
	for _, in := range r.Instances() {
		in.RefreshBadges()
	}
}

// Healthy reports false while any instance is in the error state.
func (r *Registry) Healthy() bool {
	for _, in := range r.Instances() {
		if in.Status() == StatusError {
			return false
		}
	}
	return true
}

// ItemState is the JSON projection of one item.
type ItemState struct {
	Index        int    `json:"index"`
	Row          int    `json:"row"`
	Header       bool   `json:"header"`
	Expandable   bool   `json:"expandable"`
	Expanded     bool   `json:"expanded"`
	Animating    bool   `json:"animating"`
	Hidden       bool   `json:"hidden"`
	LastVisible  bool   `json:"last_visible"`
	Odd          bool   `json:"odd"`
	Materialized bool   `json:"materialized"`
	RowID        string `json:"row_id,omitempty"`
	Viewed       bool   `json:"viewed"`
	Unseen       bool   `json:"unseen"`
}

// Snapshot is the JSON projection of one instance.
type Snapshot struct {
	ID        string       `json:"id"`
	Anchor    string       `json:"anchor"`
	Status    Status       `json:"status"`
	Error     string       `json:"error,omitempty"`
	Retry     *retry.State `json:"retry,omitempty"`
	Visible   int          `json:"visible"`
	NoResults string       `json:"no_results,omitempty"`
	Items     []ItemState  `json:"items"`
}

func (in *Instance) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := Snapshot{
		ID:        in.ID,
		Anchor:    in.Anchor,
		Status:    in.status,
		Visible:   in.view.Visible(),
		NoResults: in.view.NoResults,
		Items:     make([]ItemState, 0, len(in.view.Items)),
	}
	if in.failure != nil {
		s.Error = in.failure.Error()
	}
	if in.countdown != nil {
		st := in.countdown.State()
		s.Retry = &st
	}
	for _, it := range in.view.Items {
		s.Items = append(s.Items, ItemState{
			Index:        it.Index,
			Row:          it.Row,
			Header:       it.Header,
			Expandable:   it.Expandable(),
			Expanded:     it.Expanded,
			Animating:    it.Animating,
			Hidden:       it.Hidden,
			LastVisible:  it.LastVisible,
			Odd:          it.Odd,
			Materialized: it.Materialized,
			RowID:        it.RowID,
			Viewed:       it.Badge.Viewed,
			Unseen:       it.Badge.Unseen,
		})
	}
	return s
}
