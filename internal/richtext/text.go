package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripTags returns the unescaped text content of an HTML fragment, skipping
// script and style bodies.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		}
	}
}

// PreserveWhitespace keeps runs of spaces and tabs visible in escaped text.
func PreserveWhitespace(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	spaces := 0
	flush := func() {
		switch {
		case spaces == 1:
			b.WriteByte(' ')
		case spaces > 1:
			b.WriteString(strings.Repeat("&nbsp;", spaces))
		}
		spaces = 0
	}
	for _, r := range text {
		switch r {
		case ' ':
			spaces++
		case '\t':
			flush()
			b.WriteString("&nbsp;&nbsp;&nbsp;&nbsp;")
		default:
			flush()
			b.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

var newlineReplacer = strings.NewReplacer("\r\n", "<br>", "\r", "<br>", "\n", "<br>")

func NewlinesToBR(text string) string {
	return newlineReplacer.Replace(text)
}
