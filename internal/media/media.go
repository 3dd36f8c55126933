// Package media classifies cell content as images, YouTube videos, links or
// plain text and produces the corresponding embed markup, either eagerly or as
// lazy placeholders that are materialized on demand.
package media

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
)

const defaultAnswerMaxWidth = 555

type Options struct {
	ThumbMaxWidth       int
	ThumbMaxHeight      int
	AnswerMaxWidth      int
	AnswerMaxHeight     int
	AnswerAlign         string
	MaintainAspectRatio bool
	YouTubeWidth        int
	YouTubeHeight       int
	YouTubeAlign        string
	// ImageHosts are doublestar patterns matched against host+path of https URLs.
	ImageHosts []string
}

func OptionsFromConfig(m config.Media) Options {
	keep := true
	if m.MaintainAspectRatio != nil {
		keep = *m.MaintainAspectRatio
	}
	return Options{
		ThumbMaxWidth:       m.ThumbMaxWidth,
		ThumbMaxHeight:      m.ThumbMaxHeight,
		AnswerMaxWidth:      m.AnswerMaxWidth,
		AnswerMaxHeight:     m.AnswerMaxHeight,
		AnswerAlign:         m.AnswerAlign,
		MaintainAspectRatio: keep,
		YouTubeWidth:        m.YouTubeWidth,
		YouTubeHeight:       m.YouTubeHeight,
		YouTubeAlign:        m.YouTubeAlign,
		ImageHosts:          m.ImageHosts,
	}
}

type Embedder struct {
	opts Options
}

func New(opts Options) *Embedder {
	if opts.AnswerMaxWidth == 0 {
		opts.AnswerMaxWidth = defaultAnswerMaxWidth
	}
	if opts.YouTubeWidth == 0 {
		opts.YouTubeWidth = 560
	}
	if opts.YouTubeHeight == 0 {
		opts.YouTubeHeight = 315
	}
	return &Embedder{opts: opts}
}

var (
	imageExtRe     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|bmp|webp|svg)(\?\S*)?$`)
	bareURLRe      = regexp.MustCompile(`^https?://\S+$`)
	embeddedURLRe  = regexp.MustCompile(`https?://[^\s<>"]+`)
	imageFormulaRe = regexp.MustCompile(`(?i)^\s*=IMAGE\s*\(\s*["']([^"']+)["']`)
	lineBreakRe    = regexp.MustCompile(`^ ?(?:\r\n|\r|\n)`)
)

// IsImageURL reports whether raw is an http(s) URL ending in an image
// extension or an https URL on a configured image host.
func (e *Embedder) IsImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	if imageExtRe.MatchString(raw) {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	target := strings.ToLower(u.Host) + u.EscapedPath()
	if u.Path == "" {
		target += "/"
	}
	for _, pattern := range e.opts.ImageHosts {
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}

// DirectImages returns the image URLs of a cell whose every non-empty line
// reads as a single image URL, or nil. Formatting and link tags around the
// URL do not count.
func (e *Embedder) DirectImages(fragment string) []string {
	var urls []string
	for _, line := range strings.Split(fragment, "\n") {
		line = strings.TrimSpace(richtext.StripTags(line))
		if line == "" {
			continue
		}
		if !bareURLRe.MatchString(line) || !e.IsImageURL(line) {
			return nil
		}
		urls = append(urls, line)
	}
	return urls
}

func (e *Embedder) isMedia(raw string) bool {
	if !bareURLRe.MatchString(raw) {
		return false
	}
	if isYouTubeURL(raw) {
		_, ok := ParseYouTube(raw)
		return ok
	}
	return e.IsImageURL(raw)
}

// unwrapMediaAnchors replaces every anchor whose text is a single image or
// YouTube URL with that URL, so it embeds like a bare one. Other anchors are
// copied through untouched.
func (e *Embedder) unwrapMediaAnchors(fragment string) string {
	if !strings.Contains(strings.ToLower(fragment), "<a") {
		return fragment
	}
	var b, anchor, text strings.Builder
	depth := 0
	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			b.WriteString(anchor.String())
			return b.String()
		}
		raw := string(z.Raw())
		var tag atom.Atom
		if tt == nethtml.StartTagToken || tt == nethtml.EndTagToken {
			name, _ := z.TagName()
			tag = atom.Lookup(name)
		}
		if depth == 0 {
			if tt == nethtml.StartTagToken && tag == atom.A {
				depth = 1
				anchor.Reset()
				text.Reset()
				anchor.WriteString(raw)
				continue
			}
			b.WriteString(raw)
			continue
		}

		anchor.WriteString(raw)
		switch {
		case tt == nethtml.TextToken:
			text.Write(z.Text())
		case tt == nethtml.StartTagToken && tag == atom.A:
			depth++
		case tt == nethtml.EndTagToken && tag == atom.A:
			depth--
		}
		if depth > 0 {
			continue
		}
		if u := strings.TrimSpace(text.String()); e.isMedia(u) {
			b.WriteString(html.EscapeString(u))
		} else {
			b.WriteString(anchor.String())
		}
		anchor.Reset()
	}
}

// ImageFormula extracts the URL of a =IMAGE("url") formula.
func ImageFormula(fragment string) string {
	m := imageFormulaRe.FindStringSubmatch(html.UnescapeString(fragment))
	if m == nil {
		return ""
	}
	return m[1]
}

// Process renders a cell fragment. inCell selects thumbnail sizing and lazy
// selects placeholders instead of final embeds.
func (e *Embedder) Process(fragment string, inCell, lazy bool) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	fragment = e.unwrapMediaAnchors(fragment)
	if urls := e.DirectImages(fragment); len(urls) > 0 {
		var b strings.Builder
		for _, u := range urls {
			b.WriteString(e.image(u, inCell, lazy))
		}
		return b.String()
	}
	if u := ImageFormula(fragment); u != "" {
		return e.image(u, inCell, lazy)
	}

	var b strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	anchors, raw := 0, 0
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return b.String()
		case nethtml.TextToken:
			if anchors > 0 || raw > 0 {
				b.Write(z.Raw())
				continue
			}
			b.WriteString(e.linkify(string(z.Text()), inCell, lazy))
		case nethtml.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.A:
				anchors++
			case atom.Script, atom.Style:
				raw++
			}
			b.Write(z.Raw())
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.A:
				anchors = max(anchors-1, 0)
			case atom.Script, atom.Style:
				raw = max(raw-1, 0)
			}
			b.Write(z.Raw())
		default:
			b.Write(z.Raw())
		}
	}
}

// linkify converts bare URLs in unescaped text into embeds or links and
// escapes everything else. A line break directly after a block embed is
// dropped because the embed already breaks the line.
func (e *Embedder) linkify(text string, inCell, lazy bool) string {
	var b strings.Builder
	prev := 0
	for _, loc := range embeddedURLRe.FindAllStringIndex(text, -1) {
		b.WriteString(plainText(text[prev:loc[0]]))
		markup, block := e.embed(text[loc[0]:loc[1]], inCell, lazy)
		b.WriteString(markup)
		prev = loc[1]
		if block {
			if m := lineBreakRe.FindStringIndex(text[prev:]); m != nil {
				prev += m[1]
			}
		}
	}
	b.WriteString(plainText(text[prev:]))
	return b.String()
}

func (e *Embedder) embed(raw string, inCell, lazy bool) (string, bool) {
	if isYouTubeURL(raw) {
		if v, ok := ParseYouTube(raw); ok {
			return e.video(v, inCell, lazy), true
		}
		return Link(raw), false
	}
	if e.IsImageURL(raw) {
		return e.image(raw, inCell, lazy), true
	}
	return Link(raw), false
}

func plainText(s string) string {
	if s == "" {
		return ""
	}
	return richtext.NewlinesToBR(richtext.PreserveWhitespace(html.EscapeString(s)))
}
