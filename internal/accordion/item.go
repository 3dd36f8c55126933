package accordion

import (
	"strings"
	"time"

	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

// Cell is one rendered question cell.
type Cell struct {
	Column int
	HTML   string
	Align  string
	Width  int
	Image  bool
	Icon   bool
	// Dot is the heat-map marker rendered ahead of the content.
	Dot  string
	Date time.Time
}

// Item is the view model of one rendered row.
type Item struct {
	Index       int
	Row         int
	Header      bool
	Number      int
	Cells       []Cell
	Answer      string
	RowID       string
	LastUpdated time.Time
	Badge       viewed.Badge
	// Highlight, when set, decorates cell and answer markup at render time.
	// The stored markup stays the original.
	Highlight func(fragment string) string

	Expanded     bool
	Animating    bool
	Hidden       bool
	LastVisible  bool
	Odd          bool
	Materialized bool

	hoverTask  schedule.Task
	hoverDone  chan bool
	viewedTask schedule.Task
	animTask   schedule.Task
}

// Expandable reports whether the item toggles. Header rows never do.
func (it *Item) Expandable() bool {
	return it.Answer != "" && !it.Header
}

// Text is the searchable text of the item: question cells and answer,
// without markup.
func (it *Item) Text() string {
	var parts []string
	for _, c := range it.Cells {
		if c.Icon {
			continue
		}
		parts = append(parts, richtext.StripTags(c.HTML))
	}
	parts = append(parts, richtext.StripTags(it.Answer))
	return strings.Join(parts, " ")
}

func (it *Item) collapse() {
	it.Expanded = false
	it.Animating = false
	if it.viewedTask != nil {
		it.viewedTask.Cancel()
		it.viewedTask = nil
	}
	if it.animTask != nil {
		it.animTask.Cancel()
		it.animTask = nil
	}
}

func (it *Item) cancelHover() {
	if it.hoverTask != nil {
		it.hoverTask.Cancel()
		it.hoverTask = nil
	}
	if it.hoverDone != nil {
		it.hoverDone <- false
		it.hoverDone = nil
	}
}

func (it *Item) release() {
	it.collapse()
	it.cancelHover()
}

// View is the in-memory state of one rendered accordion.
type View struct {
	Items []*Item
	// NoResults holds the term that matched nothing, or "".
	NoResults string
}

func (v *View) CollapseAll() {
	for _, it := range v.Items {
		if it.Expanded {
			it.collapse()
		}
	}
}

func (v *View) MarkLastVisible() {
	var last *Item
	for _, it := range v.Items {
		it.LastVisible = false
		if !it.Hidden {
			last = it
		}
	}
	if last != nil {
		last.LastVisible = true
	}
}

// ApplyParity alternates row coloring over visible items only.
func (v *View) ApplyParity() {
	n := 0
	for _, it := range v.Items {
		if it.Hidden {
			continue
		}
		it.Odd = n%2 == 1
		n++
	}
}

func (v *View) Visible() int {
	n := 0
	for _, it := range v.Items {
		if !it.Hidden {
			n++
		}
	}
	return n
}
