package richtext

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"
)

var webSafeFonts = []string{
	"Arial", "Verdana", "Times New Roman", "Courier New",
	"Georgia", "Trebuchet MS", "Comic Sans MS", "Impact",
}

// DefaultFonts is the process-wide set of font stylesheets already requested.
var DefaultFonts = NewFontRegistry()

// FontRegistry deduplicates external font stylesheet loads.
type FontRegistry struct {
	mu     sync.Mutex
	loaded map[string]struct{}
	order  []string
}

func NewFontRegistry() *FontRegistry {
	return &FontRegistry{loaded: map[string]struct{}{}}
}

// Load records a font family. It reports true only the first time a
// non-web-safe family is seen.
func (r *FontRegistry) Load(family string) bool {
	family = strings.TrimSpace(family)
	if family == "" || slices.Contains(webSafeFonts, family) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loaded[family]; ok {
		return false
	}
	r.loaded[family] = struct{}{}
	r.order = append(r.order, family)
	slog.Debug("loading font stylesheet", "family", family)
	return true
}

// Stylesheets returns one stylesheet URL per loaded family, in load order.
func (r *FontRegistry) Stylesheets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.order))
	for _, family := range r.order {
		out = append(out, FontStylesheetURL(family))
	}
	return out
}

func FontStylesheetURL(family string) string {
	name := strings.Join(strings.Fields(family), "+")
	return "https://fonts.googleapis.com/css2?family=" + url.PathEscape(name) + "&display=swap"
}
