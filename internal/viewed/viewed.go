// Package viewed persists when each row was last expanded and renders the
// recency-colored badges derived from it.
package viewed

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sheetfold/sheetfold/internal/recency"
)

const keyPrefix = "accordion_viewed_"

// Key is the storage key holding one data source's viewed mapping.
func Key(sourceID string) string { return keyPrefix + sourceID }

// Storage is string key/value storage in the manner of Web Storage.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// Entries maps row identity to the last-viewed time in epoch milliseconds.
type Entries map[string]int64

func (e Entries) Range() recency.Range {
	var r recency.Range
	for _, ms := range e {
		r.Observe(time.UnixMilli(ms))
	}
	return r
}

type Options struct {
	Text     string
	Title    string
	Palette  recency.Palette
	Location *time.Location
}

type Store struct {
	storage Storage
	key     string
	opts    Options
	now     func() time.Time
}

func New(storage Storage, sourceID string, opts Options, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Store{storage: storage, key: Key(sourceID), opts: opts, now: now}
}

// Load returns the stored mapping. Absent, unreadable or corrupt data yields
// an empty mapping.
func (s *Store) Load() Entries {
	raw, ok, err := s.storage.GetItem(s.key)
	if err != nil {
		slog.Error("load viewed state", "key", s.key, "error", err)
		return Entries{}
	}
	if !ok || raw == "" {
		return Entries{}
	}
	var out Entries
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("discarding corrupt viewed state", "key", s.key, "error", err)
		return Entries{}
	}
	if out == nil {
		out = Entries{}
	}
	return out
}

// Save writes the mapping. Failures are logged and otherwise ignored.
func (s *Store) Save(entries Entries) {
	data, err := json.Marshal(entries)
	if err != nil {
		slog.Error("encode viewed state", "key", s.key, "error", err)
		return
	}
	if err := s.storage.SetItem(s.key, string(data)); err != nil {
		slog.Error("save viewed state", "key", s.key, "error", err)
	}
}

// Mark records rowID as viewed now. Concurrent marks race; the last save wins.
func (s *Store) Mark(rowID string) time.Time {
	at := s.now()
	entries := s.Load()
	entries[rowID] = at.UnixMilli()
	s.Save(entries)
	return at
}

// Badge is the projection of one row's viewed state.
type Badge struct {
	RowID  string    `json:"row_id"`
	Viewed bool      `json:"viewed"`
	At     time.Time `json:"at,omitempty"`
	Label  string    `json:"label,omitempty"`
	Title  string    `json:"title,omitempty"`
	Color  string    `json:"color,omitempty"`
	Unseen bool      `json:"unseen,omitempty"`
}

// Badge renders rowID against entries. lastUpdated, when set, flags changes
// made after the row was last viewed.
func (s *Store) Badge(rowID string, entries Entries, rng recency.Range, lastUpdated time.Time) Badge {
	b := Badge{RowID: rowID}
	ms, ok := entries[rowID]
	if rowID == "" || !ok {
		return b
	}
	at := time.UnixMilli(ms).In(s.opts.Location)
	b.Viewed = true
	b.At = at
	b.Label = s.opts.Text
	b.Color = s.opts.Palette.Hex(rng, at)
	b.Title = s.title(at)
	b.Unseen = !lastUpdated.IsZero() && lastUpdated.After(at)
	return b
}

// Badges recomputes the observed range and renders every requested row.
func (s *Store) Badges(rows []Row) map[string]Badge {
	entries := s.Load()
	rng := entries.Range()
	out := make(map[string]Badge, len(rows))
	for _, r := range rows {
		out[r.ID] = s.Badge(r.ID, entries, rng, r.LastUpdated)
	}
	return out
}

// Row names a rendered row for Badges.
type Row struct {
	ID          string
	LastUpdated time.Time
}

func (s *Store) title(at time.Time) string {
	title := strings.ReplaceAll(s.opts.Title, "{{date}}", FormatTime(at))
	return strings.ReplaceAll(title, "{{ago}}", humanize.RelTime(at, s.now(), "ago", "from now"))
}

// FormatTime renders "YYYY-MM-DD h:mmam".
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 3:04pm")
}

// HTML is the badge markup placed in the first question cell.
func (b Badge) HTML() string {
	if !b.Viewed {
		return ""
	}
	out := fmt.Sprintf(`<span class="accordion-viewed-badge" data-row-id="%s" title="%s" style="background-color: %s">%s</span>`,
		html.EscapeString(b.RowID), html.EscapeString(b.Title), b.Color, html.EscapeString(b.Label))
	if b.Unseen {
		out += `<span class="accordion-unseen-indicator" title="Updated since last viewed">●</span>`
	}
	return out
}
