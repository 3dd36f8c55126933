// Package richtext turns spreadsheet cell text and its formatting runs into
// sanitized HTML fragments.
package richtext

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/microcosm-cc/bluemonday"
)

type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// Format is the text style of one run. Zero values mean "not set".
type Format struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	LinkURI       string
	FontSize      float64
	FontFamily    string
	Foreground    *Color
}

func (f Format) IsZero() bool {
	return !f.Bold && !f.Italic && !f.Underline && !f.Strikethrough &&
		f.LinkURI == "" && f.FontSize == 0 && f.FontFamily == "" && f.Foreground == nil
}

// Run starts at Start, counted in UTF-16 code units like the Sheets API, and
// extends to the next run's start or the end of the text.
type Run struct {
	Start  int
	Format Format
}

type Normalizer struct {
	Fonts  *FontRegistry
	policy *bluemonday.Policy
}

func NewNormalizer(fonts *FontRegistry) *Normalizer {
	if fonts == nil {
		fonts = DefaultFonts
	}
	return &Normalizer{Fonts: fonts, policy: fragmentPolicy()}
}

// Plain escapes unformatted cell text. Newlines stay raw.
func (n *Normalizer) Plain(text string) string {
	return html.EscapeString(text)
}

// Uniform applies one cell-level format to the whole text.
func (n *Normalizer) Uniform(text string, f Format) string {
	if text == "" {
		return ""
	}
	if f.IsZero() {
		return n.Plain(text)
	}
	return n.Runs(text, []Run{{Start: 0, Format: f}})
}

// Runs renders text with its formatting runs. Trailing newlines of a run are
// emitted outside its tags so later line-break conversion never lands inside
// inline markup. Newlines are left raw.
func (n *Normalizer) Runs(text string, runs []Run) string {
	if text == "" {
		return ""
	}
	if len(runs) == 0 {
		return n.Plain(text)
	}

	units := utf16.Encode([]rune(text))
	var b strings.Builder
	if first := clamp(runs[0].Start, 0, len(units)); first > 0 {
		b.WriteString(html.EscapeString(string(utf16.Decode(units[:first]))))
	}
	for i, run := range runs {
		start := clamp(run.Start, 0, len(units))
		end := len(units)
		if i+1 < len(runs) {
			end = clamp(runs[i+1].Start, start, len(units))
		}
		if start >= end {
			continue
		}
		segment := string(utf16.Decode(units[start:end]))
		content, trailing := splitTrailingNewlines(segment)
		if content != "" {
			b.WriteString(n.wrap(html.EscapeString(content), run.Format))
		}
		b.WriteString(trailing)
	}
	return n.policy.Sanitize(b.String())
}

func (n *Normalizer) wrap(content string, f Format) string {
	var open, close string
	if f.Underline {
		open += "<u>"
		close = "</u>" + close
	}
	if f.Strikethrough {
		open += "<s>"
		close = "</s>" + close
	}
	if f.Italic {
		open += "<i>"
		close = "</i>" + close
	}
	if f.Bold {
		open += "<b>"
		close = "</b>" + close
	}
	if f.LinkURI != "" {
		open = fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">`, html.EscapeString(f.LinkURI)) + open
		close += "</a>"
	}

	var style []string
	if f.FontSize > 0 {
		style = append(style, fmt.Sprintf("font-size: %spt", trimFloat(f.FontSize)))
	}
	if f.FontFamily != "" {
		n.Fonts.Load(f.FontFamily)
		style = append(style, fmt.Sprintf("font-family: '%s'", strings.ReplaceAll(f.FontFamily, "'", "")))
	}
	if c := f.Foreground; c != nil {
		style = append(style, fmt.Sprintf("color: rgb(%d,%d,%d)", channel(c.Red), channel(c.Green), channel(c.Blue)))
	}
	if len(style) > 0 {
		open = fmt.Sprintf(`<span style="%s">`, html.EscapeString(strings.Join(style, "; "))) + open
		close += "</span>"
	}
	return open + content + close
}

func splitTrailingNewlines(s string) (string, string) {
	trimmed := strings.TrimRight(s, "\n")
	return trimmed, s[len(trimmed):]
}

func channel(v float64) int {
	return int(math.Round(clampFloat(v, 0, 1) * 255))
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

var (
	fontSizeRe   = regexp.MustCompile(`^[0-9.]+pt$`)
	fontFamilyRe = regexp.MustCompile(`^'[^'";<>]+'$`)
	rgbRe        = regexp.MustCompile(`^rgb\(\d{1,3},\d{1,3},\d{1,3}\)$`)
	targetRe     = regexp.MustCompile(`^_blank$`)
	relRe        = regexp.MustCompile(`^noopener$`)
)

// fragmentPolicy admits exactly the markup Runs emits.
func fragmentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "u", "s", "br", "span")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(targetRe).OnElements("a")
	p.AllowAttrs("rel").Matching(relRe).OnElements("a")
	p.AllowStyles("font-size").Matching(fontSizeRe).OnElements("span")
	p.AllowStyles("font-family").Matching(fontFamilyRe).OnElements("span")
	p.AllowStyles("color").Matching(rgbRe).OnElements("span")
	return p
}
