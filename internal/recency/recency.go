// Package recency maps a timestamp to a color between an "old" and a "recent"
// endpoint according to where it falls in an observed range.
package recency

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

type Palette struct {
	Recent colorful.Color
	Old    colorful.Color
}

func ParsePalette(recentHex, oldHex string) (Palette, error) {
	recent, err := colorful.Hex(recentHex)
	if err != nil {
		return Palette{}, fmt.Errorf("parse recent color %q: %w", recentHex, err)
	}
	old, err := colorful.Hex(oldHex)
	if err != nil {
		return Palette{}, fmt.Errorf("parse old color %q: %w", oldHex, err)
	}
	return Palette{Recent: recent, Old: old}, nil
}

// Range is the observed min/max over a set of timestamps.
type Range struct {
	Min, Max time.Time
	set      bool
}

func (r *Range) Observe(t time.Time) {
	if t.IsZero() {
		return
	}
	if !r.set {
		r.Min, r.Max, r.set = t, t, true
		return
	}
	if t.Before(r.Min) {
		r.Min = t
	}
	if t.After(r.Max) {
		r.Max = t
	}
}

func (r Range) Empty() bool { return !r.set }

// Fraction is 0 at Min and 1 at Max. A degenerate range counts as most recent.
func (r Range) Fraction(t time.Time) float64 {
	span := r.Max.Sub(r.Min)
	if !r.set || span <= 0 {
		return 1
	}
	f := float64(t.Sub(r.Min)) / float64(span)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Color interpolates linearly in RGB from Old toward Recent.
func (p Palette) Color(r Range, t time.Time) colorful.Color {
	return p.Old.BlendRgb(p.Recent, r.Fraction(t))
}

// Hex is Color rendered as #rrggbb.
func (p Palette) Hex(r Range, t time.Time) string {
	return p.Color(r, t).Clamped().Hex()
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseTime reads a date cell's text in loc. It reports false for text that is
// not a recognizable date.
func ParseTime(text string, loc *time.Location) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
