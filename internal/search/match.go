// Package search filters and highlights rendered accordion items, either
// within one instance or across every instance on the page.
package search

import (
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HighlightClass marks highlighted matches.
const HighlightClass = "accordion-search-highlight"

// wordOnlyTerms match whole words only; as substrings they hit too many
// unrelated words ("main", "campaign").
var wordOnlyTerms = map[string]bool{"ai": true}

// Matcher is a compiled search term.
type Matcher struct {
	Raw  string
	term string
	word *regexp.Regexp
	re   *regexp.Regexp
}

func Compile(raw string) Matcher {
	m := Matcher{Raw: raw, term: lower(strings.TrimSpace(raw))}
	if m.term == "" {
		return m
	}
	if wordOnlyTerms[m.term] {
		m.word = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(m.term) + `\b`)
		m.re = m.word
		return m
	}
	m.re = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(m.term))
	return m
}

func (m Matcher) Empty() bool { return m.term == "" }

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Match reports whether text contains the term.
func (m Matcher) Match(text string) bool {
	if m.term == "" {
		return true
	}
	if m.word != nil {
		return m.word.MatchString(text)
	}
	return strings.Contains(lower(text), m.term)
}

// Highlight wraps every match inside the text of fragment in a highlight
// span. Tags, attributes and script/style bodies are left as they are.
func (m Matcher) Highlight(fragment string) string {
	if m.term == "" || fragment == "" {
		return fragment
	}
	var b strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	raw := 0
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return b.String()
		case nethtml.TextToken:
			if raw > 0 {
				b.Write(z.Raw())
				continue
			}
			source := string(z.Raw())
			text := string(z.Text())
			if out, ok := m.highlightText(text); ok {
				b.WriteString(out)
			} else {
				b.WriteString(source)
			}
		case nethtml.StartTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Script || a == atom.Style {
				raw++
			}
			b.Write(z.Raw())
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); (a == atom.Script || a == atom.Style) && raw > 0 {
				raw--
			}
			b.Write(z.Raw())
		default:
			b.Write(z.Raw())
		}
	}
}

func (m Matcher) highlightText(text string) (string, bool) {
	locs := m.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(html.EscapeString(text[prev:loc[0]]))
		b.WriteString(`<span class="` + HighlightClass + `">`)
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString(`</span>`)
		prev = loc[1]
	}
	b.WriteString(html.EscapeString(text[prev:]))
	return b.String(), true
}

// ChipTerm is the search term for a common-search chip; "All" clears.
func ChipTerm(label string) string {
	if label == "All" {
		return ""
	}
	return label
}
