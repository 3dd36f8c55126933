package sheets

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/xuri/excelize/v2"

	"github.com/sheetfold/sheetfold/internal/richtext"
)

// ReadWorkbook loads one sheet of a local xlsx file, carrying rich-text runs,
// cell hyperlinks and IMAGE formulas into the same HTML cells the API path
// produces. An empty sheet name selects the first sheet.
func ReadWorkbook(path, sheet string, n *richtext.Normalizer) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	values, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(values) == 0 {
		return nil, &SchemaError{Msg: "No data found in spreadsheet"}
	}

	rows := make([][]string, 0, len(values))
	for r, row := range values {
		cells := make([]string, 0, len(row))
		for c, value := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			cell, err := workbookCell(f, sheet, axis, value, n)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func workbookCell(f *excelize.File, sheet, axis, value string, n *richtext.Normalizer) (string, error) {
	formula, err := f.GetCellFormula(sheet, axis)
	if err != nil {
		return "", fmt.Errorf("read formula %s: %w", axis, err)
	}
	formula = strings.TrimPrefix(formula, "=")
	if strings.HasPrefix(strings.ToUpper(formula), "IMAGE(") {
		return n.Plain("=" + formula), nil
	}

	hasLink, target, err := f.GetCellHyperLink(sheet, axis)
	if err != nil {
		return "", fmt.Errorf("read hyperlink %s: %w", axis, err)
	}
	runs, err := f.GetCellRichText(sheet, axis)
	if err != nil {
		return "", fmt.Errorf("read rich text %s: %w", axis, err)
	}
	if formatted(runs) {
		var text strings.Builder
		out := make([]richtext.Run, 0, len(runs))
		offset := 0
		for _, run := range runs {
			format := fontFormat(run.Font)
			if hasLink && format.LinkURI == "" {
				format.LinkURI = target
			}
			out = append(out, richtext.Run{Start: offset, Format: format})
			text.WriteString(run.Text)
			offset += len(utf16.Encode([]rune(run.Text)))
		}
		return n.Runs(text.String(), out), nil
	}
	if hasLink && value != "" {
		return n.Uniform(value, richtext.Format{LinkURI: target}), nil
	}
	return n.Plain(value), nil
}

func formatted(runs []excelize.RichTextRun) bool {
	for _, r := range runs {
		if r.Font != nil {
			return true
		}
	}
	return false
}

func fontFormat(font *excelize.Font) richtext.Format {
	if font == nil {
		return richtext.Format{}
	}
	out := richtext.Format{
		Bold:          font.Bold,
		Italic:        font.Italic,
		Underline:     font.Underline != "" && font.Underline != "none",
		Strikethrough: font.Strike,
		FontSize:      font.Size,
		FontFamily:    font.Family,
	}
	if hex := font.Color; len(hex) >= 6 {
		if c, err := colorful.Hex("#" + hex[len(hex)-6:]); err == nil {
			out.Foreground = &richtext.Color{Red: c.R, Green: c.G, Blue: c.B}
		}
	}
	return out
}
