package recency

import (
	"testing"
	"time"
)

func TestPaletteHexInterpolates(t *testing.T) {
	p, err := ParsePalette("#ffffff", "#000000")
	if err != nil {
		t.Fatalf("parse palette: %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var r Range
	r.Observe(base)
	r.Observe(base.Add(10 * time.Hour))
	r.Observe(time.Time{})

	if got := p.Hex(r, base); got != "#000000" {
		t.Fatalf("oldest: got %q want %q", got, "#000000")
	}
	if got := p.Hex(r, base.Add(10*time.Hour)); got != "#ffffff" {
		t.Fatalf("newest: got %q want %q", got, "#ffffff")
	}
	if got := r.Fraction(base.Add(5 * time.Hour)); got != 0.5 {
		t.Fatalf("midpoint fraction: got %v want 0.5", got)
	}
	if got := r.Fraction(base.Add(-time.Hour)); got != 0 {
		t.Fatalf("below range fraction: got %v want 0", got)
	}
}

func TestDegenerateRangeIsMostRecent(t *testing.T) {
	p, err := ParsePalette("#2ecc71", "#7f8c8d")
	if err != nil {
		t.Fatalf("parse palette: %v", err)
	}
	var r Range
	at := time.Unix(1700000000, 0)
	r.Observe(at)
	if got := p.Hex(r, at); got != "#2ecc71" {
		t.Fatalf("got %q want %q", got, "#2ecc71")
	}
	var empty Range
	if !empty.Empty() || empty.Fraction(at) != 1 {
		t.Fatalf("empty range should report most recent")
	}
}

func TestParsePaletteRejectsNames(t *testing.T) {
	if _, err := ParsePalette("green", "#000000"); err == nil {
		t.Fatalf("expected error for named color")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"2024-03-15", " 3/15/2024 ", "Mar 15, 2024"} {
		got, ok := ParseTime(text, time.UTC)
		if !ok || !got.Equal(want) {
			t.Fatalf("ParseTime(%q): got %v, %v want %v", text, got, ok, want)
		}
	}
	if _, ok := ParseTime("soon", time.UTC); ok {
		t.Fatalf("expected non-date text to fail")
	}
}
