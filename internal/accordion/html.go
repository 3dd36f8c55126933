package accordion

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/sheetfold/sheetfold/internal/retry"
)

const (
	LoadingPanel = `<div class="loading-message"><div class="spinner"></div><p>Loading data...</p></div>`
	EmptyPanel   = `<div class="loading-message"><p>No items found matching the filter criteria.</p></div>`
)

// NoResultsMessage is shown in a container when a search matches nothing.
func NoResultsMessage(term string) string {
	return `<div class="no-results-message">No results found for "` + html.EscapeString(term) + `"</div>`
}

// WrapperHTML is the full mount markup: search box, common search chips and
// the content container.
func (in *Instance) WrapperHTML() string {
	s := in.opts.Search
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="accordion-wrapper" id="%s-wrapper" data-instance="%s" data-initialized="true" data-scope="%s" data-search-delay="%d">`,
		in.ID, in.ID, html.EscapeString(s.Scope), s.DelayMS)
	if s.ShowBox {
		fmt.Fprintf(&b, `<input type="text" id="%s-search" placeholder="%s" class="accordion-search-input" autocomplete="off" data-scope="%s" data-placeholder="%s" data-placeholder-speed="%d" data-placeholder-loop="%d">`,
			in.ID, html.EscapeString(s.Placeholder), html.EscapeString(s.Scope), html.EscapeString(s.Placeholder),
			s.PlaceholderSpeedMS, s.PlaceholderLoopDelayMS)
	}
	if len(s.Common) > 0 {
		b.WriteString(`<span class="text-no-background"></span> <div class="accordion-common-searches">`)
		for _, term := range s.Common {
			t := html.EscapeString(term)
			fmt.Fprintf(&b, `<span class="accordion-common-search-item" data-term="%s">%s</span>`, t, t)
		}
		b.WriteString(`</div>`)
	}
	fmt.Fprintf(&b, `<div id="%s-content">%s</div></div>`, in.ID, in.ContentHTML())
	return b.String()
}

// ContentHTML projects the current state into the content container.
func (in *Instance) ContentHTML() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	switch in.status {
	case StatusReady:
		return in.tableLocked()
	case StatusEmpty:
		return EmptyPanel
	case StatusError:
		msg := ""
		if in.failure != nil {
			msg = in.failure.Error()
		}
		if in.countdown != nil {
			return in.countdown.Panel(in.ID, msg)
		}
		return retry.StaticPanel(msg)
	default:
		return LoadingPanel
	}
}

func (in *Instance) tableLocked() string {
	var b strings.Builder
	b.WriteString(`<div class="accordion-container"><table class="accordion-table">`)
	for _, it := range in.view.Items {
		in.writeItem(&b, it)
	}
	b.WriteString(`</table>`)
	if in.view.NoResults != "" {
		b.WriteString(NoResultsMessage(in.view.NoResults))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// ItemHTML renders one item's tbody, or "" for an unknown index.
func (in *Instance) ItemHTML(index int) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	it, err := in.itemLocked(index)
	if err != nil {
		return ""
	}
	var b strings.Builder
	in.writeItem(&b, it)
	return b.String()
}

func (in *Instance) writeItem(b *strings.Builder, it *Item) {
	o := in.opts
	classes := []string{"accordion-item"}
	if it.Expanded {
		classes = append(classes, "active")
	}
	if it.Hidden {
		classes = append(classes, "hidden")
	}
	if it.LastVisible {
		classes = append(classes, "last-visible-item")
	}
	if it.Header {
		classes = append(classes, "accordion-header-item")
	}
	fmt.Fprintf(b, `<tbody class="%s" id="%s-item-%d" data-index="%d" data-animation="%s" data-duration="%s" data-transition-speed="%s" data-transition-effect="%s">`,
		strings.Join(classes, " "), in.ID, it.Index, it.Index, o.Animation,
		strconv.FormatFloat(o.AnimationTime.Seconds(), 'f', -1, 64), seconds(o.TransitionSpeed), o.Transition)

	row := "accordion-question-row"
	if !it.Expandable() {
		row += " no-answer"
	}
	if it.Odd {
		row += " odd-row"
	} else {
		row += " even-row"
	}
	fmt.Fprintf(b, `<tr class="%s">`, row)

	if o.AutoNumber {
		number := ""
		if !it.Header {
			number = strconv.Itoa(it.Number)
		}
		fmt.Fprintf(b, `<td align="center" class="accordion-auto-number-cell" style="width: %dpx; max-width: %dpx;">%s</td>`,
			o.AutoNumberWidth, o.AutoNumberWidth, number)
	}

	badged := false
	for _, c := range it.Cells {
		class := ""
		if c.Image {
			class = "accordion-image-cell"
		}
		if c.Icon {
			class = "accordion-icon-cell"
		}
		style := ""
		if c.Width > 0 {
			style = fmt.Sprintf(` style="width: %dpx; max-width: %dpx;"`, c.Width, c.Width)
		}
		content := c.HTML
		if it.Highlight != nil && !c.Icon {
			content = it.Highlight(content)
		}
		fmt.Fprintf(b, `<td align="%s" class="%s"%s>%s%s`, c.Align, class, style, c.Dot, content)
		if !badged && !c.Icon {
			b.WriteString(it.Badge.HTML())
			badged = true
		}
		b.WriteString(`</td>`)
	}
	b.WriteString(`</tr>`)

	if it.Answer != "" {
		answer := it.Answer
		if it.Highlight != nil {
			answer = it.Highlight(answer)
		}
		fmt.Fprintf(b, `<tr class="accordion-answer-row"><td colspan="%d" class="accordion-answer-cell"><div class="accordion-answer-wrapper"><div class="accordion-answer-content">%s</div></div></td></tr>`,
			o.columns(), answer)
	}
	b.WriteString(`</tbody>`)
}
