package accordion

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/filter"
	"github.com/sheetfold/sheetfold/internal/media"
	"github.com/sheetfold/sheetfold/internal/recency"
	"github.com/sheetfold/sheetfold/internal/richtext"
)

// Select numbers the fetched rows, drops those above the starting row and
// applies the filters. values[0] is sheet row 1. A header row configured
// above the starting row is kept ahead of the data rows.
func Select(values [][]string, o Options) []filter.Row {
	start := max(o.StartingRow-1, 0)
	if o.HeaderRow == 0 && o.StartingRow == 1 {
		start = 1
	}
	var rows []filter.Row
	if h := o.HeaderRow - 1; o.HeaderRow > 0 && h < start && h < len(values) {
		rows = append(rows, filter.Row{Number: o.HeaderRow, Cells: values[h]})
	}
	for i := start; i < len(values); i++ {
		rows = append(rows, filter.Row{Number: i + 1, Cells: values[i]})
	}
	return filter.Apply(rows, o.Filters, o.HeaderRow)
}

// Build renders the selected rows into items. Rows without question content
// are skipped unless they are the header row.
func Build(rows []filter.Row, o Options, e *media.Embedder) []*Item {
	b := builder{o: o, e: e}
	var items []*Item
	number := o.AutoNumberStart
	for _, row := range rows {
		header := o.HeaderRow > 0 && row.Number == o.HeaderRow
		if !header && !hasQuestionContent(row, o.Questions) {
			continue
		}
		it := &Item{Index: len(items), Row: row.Number, Header: header}
		if o.AutoNumber && !header {
			it.Number = number
			number++
		}
		answer := strings.TrimSpace(row.Cell(o.Answer))
		prefixed := header
		for i, col := range o.Questions {
			it.Cells = append(it.Cells, b.cell(row, i, col, header, answer != "", &prefixed))
		}
		if answer != "" {
			it.Answer = b.answer(row, answer)
		}
		if o.ViewedColumn >= 0 {
			it.RowID = cellText(row.Cell(o.ViewedColumn))
		}
		if o.UpdatedColumn >= 0 {
			it.LastUpdated, _ = recency.ParseTime(cellText(row.Cell(o.UpdatedColumn)), o.Location)
		}
		items = append(items, it)
	}
	if o.Heatmap {
		b.heatmap(items)
	}
	return items
}

type builder struct {
	o Options
	e *media.Embedder
}

func hasQuestionContent(row filter.Row, cols []int) bool {
	for _, col := range cols {
		if strings.TrimSpace(row.Cell(col)) != "" {
			return true
		}
	}
	return false
}

func cellText(fragment string) string {
	return strings.TrimSpace(richtext.StripTags(fragment))
}

func (b builder) cell(row filter.Row, i, col int, header, hasAnswer bool, prefixed *bool) Cell {
	c := Cell{Column: col, Align: b.o.align(i, header), Width: b.o.width(i)}
	if col == config.IconIndex {
		c.Icon = true
		c.HTML = chevron(hasAnswer && !header)
		return c
	}
	if header && slices.Contains(b.o.HideHeaderText, col) {
		return c
	}

	value := row.Cell(col)
	images := b.e.DirectImages(value)
	prefix := ""
	if !*prefixed && len(images) == 0 && strings.TrimSpace(value) != "" {
		prefix = html.EscapeString(b.o.QuestionPrefix)
		*prefixed = true
	}

	href := ""
	if u := b.o.questionURL(i); u >= 0 {
		if raw := cellText(row.Cell(u)); hasHTTPScheme(raw) {
			href = raw
		}
	}
	switch {
	case len(images) > 0 && href != "":
		var stack strings.Builder
		for _, u := range images {
			stack.WriteString(b.e.ImageTag(u, true))
		}
		c.HTML = media.WrapLink(href, stack.String())
	case href != "":
		c.HTML = media.WrapLink(href, prefix+richtext.NewlinesToBR(richtext.PreserveWhitespace(value)))
	default:
		c.HTML = prefix + b.e.Process(value, true, false)
	}
	c.Image = strings.Contains(c.HTML, `class="`+media.ImageContentClass)

	if !header && slices.Contains(b.o.HeatmapColumns, col) {
		c.Date, _ = recency.ParseTime(cellText(value), b.o.Location)
	}
	return c
}

func hasHTTPScheme(raw string) bool {
	l := strings.ToLower(raw)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func chevron(visible bool) string {
	if visible {
		return `<span class="accordion-toggle-icon">▼</span>`
	}
	return `<span class="accordion-toggle-icon" style="visibility: hidden">▼</span>`
}

func (b builder) answer(row filter.Row, answer string) string {
	var out strings.Builder
	if b.o.EnlargedThumbnail {
		for _, col := range b.o.Questions {
			if images := b.e.DirectImages(row.Cell(col)); len(images) > 0 {
				fmt.Fprintf(&out, `<div class="accordion-answer-thumbnail"><img src="%s" alt="Enlarged thumbnail" loading="lazy"></div>`,
					html.EscapeString(images[0]))
				break
			}
		}
	}
	out.WriteString(html.EscapeString(b.o.AnswerPrefix))
	out.WriteString(b.e.Process(answer, false, true))
	return out.String()
}

// heatmap decorates date cells with a dot colored by their position in the
// observed date range across all items.
func (b builder) heatmap(items []*Item) {
	var rng recency.Range
	for _, it := range items {
		for _, c := range it.Cells {
			rng.Observe(c.Date)
		}
	}
	for _, it := range items {
		for i := range it.Cells {
			c := &it.Cells[i]
			if c.Date.IsZero() {
				continue
			}
			title := strings.ReplaceAll(b.o.HeatmapTitle, "{{date}}", c.Date.Format("2006-01-02"))
			c.Dot = fmt.Sprintf(`<span class="accordion-heatmap-dot" style="background-color: %s" title="%s"></span>`,
				b.o.HeatmapPalette.Hex(rng, c.Date), html.EscapeString(title))
		}
	}
}
