// Package sheets loads accordion rows from the Google Sheets v4 API or from a
// local xlsx workbook and normalizes every cell into an HTML fragment.
package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sheetfold/sheetfold/internal/richtext"
)

// ValueRange is the plain values-grid response shape.
type ValueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// Spreadsheet is the grid-data response shape (includeGridData=true).
type Spreadsheet struct {
	Sheets []Sheet `json:"sheets"`
}

type Sheet struct {
	Data []GridData `json:"data"`
}

type GridData struct {
	RowData []RowData `json:"rowData"`
}

type RowData struct {
	Values []CellData `json:"values"`
}

type CellData struct {
	UserEnteredValue *ExtendedValue  `json:"userEnteredValue,omitempty"`
	FormattedValue   string          `json:"formattedValue,omitempty"`
	TextFormatRuns   []TextFormatRun `json:"textFormatRuns,omitempty"`
	EffectiveFormat  *CellFormat     `json:"effectiveFormat,omitempty"`
}

type ExtendedValue struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	NumberValue  *float64 `json:"numberValue,omitempty"`
	BoolValue    *bool    `json:"boolValue,omitempty"`
	FormulaValue *string  `json:"formulaValue,omitempty"`
}

type TextFormatRun struct {
	StartIndex int        `json:"startIndex,omitempty"`
	Format     TextFormat `json:"format"`
}

type TextFormat struct {
	ForegroundColor *Color  `json:"foregroundColor,omitempty"`
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	Bold            bool    `json:"bold,omitempty"`
	Italic          bool    `json:"italic,omitempty"`
	Strikethrough   bool    `json:"strikethrough,omitempty"`
	Underline       bool    `json:"underline,omitempty"`
	Link            *Link   `json:"link,omitempty"`
}

type Color struct {
	Red   float64 `json:"red,omitempty"`
	Green float64 `json:"green,omitempty"`
	Blue  float64 `json:"blue,omitempty"`
}

type Link struct {
	URI string `json:"uri,omitempty"`
}

type CellFormat struct {
	TextFormat *TextFormat `json:"textFormat,omitempty"`
}

func (f TextFormat) format() richtext.Format {
	out := richtext.Format{
		Bold:          f.Bold,
		Italic:        f.Italic,
		Underline:     f.Underline,
		Strikethrough: f.Strikethrough,
		FontSize:      f.FontSize,
		FontFamily:    f.FontFamily,
	}
	if f.Link != nil {
		out.LinkURI = f.Link.URI
	}
	if c := f.ForegroundColor; c != nil {
		out.Foreground = &richtext.Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
	}
	return out
}

// cellFormat keeps only the attributes that distinguish a cell from the
// sheet's defaults. Effective font, size and color are always populated and
// would otherwise wrap every cell in a style span.
func (f TextFormat) cellFormat() richtext.Format {
	out := richtext.Format{
		Bold:          f.Bold,
		Italic:        f.Italic,
		Underline:     f.Underline,
		Strikethrough: f.Strikethrough,
	}
	if f.Link != nil {
		out.LinkURI = f.Link.URI
	}
	return out
}

// Text picks the cell's display text. Runs index into the string value only.
func (c CellData) Text() (string, bool) {
	if v := c.UserEnteredValue; v != nil {
		switch {
		case v.StringValue != nil && *v.StringValue != "":
			return *v.StringValue, true
		case v.FormulaValue != nil && *v.FormulaValue != "":
			return *v.FormulaValue, false
		}
	}
	if c.FormattedValue != "" {
		return c.FormattedValue, false
	}
	if v := c.UserEnteredValue; v != nil {
		switch {
		case v.NumberValue != nil:
			return strconv.FormatFloat(*v.NumberValue, 'f', -1, 64), false
		case v.BoolValue != nil:
			return strconv.FormatBool(*v.BoolValue), false
		}
	}
	return "", false
}

// HTML renders one cell through the normalizer.
func (c CellData) HTML(n *richtext.Normalizer) string {
	text, isString := c.Text()
	if text == "" {
		return ""
	}
	if isString && len(c.TextFormatRuns) > 0 {
		runs := make([]richtext.Run, 0, len(c.TextFormatRuns))
		for _, r := range c.TextFormatRuns {
			runs = append(runs, richtext.Run{Start: r.StartIndex, Format: r.Format.format()})
		}
		return n.Runs(text, runs)
	}
	if c.EffectiveFormat != nil && c.EffectiveFormat.TextFormat != nil {
		return n.Uniform(text, c.EffectiveFormat.TextFormat.cellFormat())
	}
	return n.Plain(text)
}

// DecodeGrid converts a grid-data response into rows of HTML cells.
func DecodeGrid(data []byte, n *richtext.Normalizer) ([][]string, error) {
	var doc Spreadsheet
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Msg: "Invalid data structure from Google Sheets API", Err: err}
	}
	if len(doc.Sheets) == 0 {
		return nil, &SchemaError{Msg: "No data found in spreadsheet"}
	}
	sheet := doc.Sheets[0]
	if len(sheet.Data) == 0 || sheet.Data[0].RowData == nil {
		return nil, &SchemaError{Msg: "Invalid data structure from Google Sheets API"}
	}
	rows := make([][]string, 0, len(sheet.Data[0].RowData))
	for _, row := range sheet.Data[0].RowData {
		cells := make([]string, 0, len(row.Values))
		for _, cell := range row.Values {
			cells = append(cells, cell.HTML(n))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// DecodeValues converts a values-grid response into rows of escaped cells.
func DecodeValues(data []byte, n *richtext.Normalizer) ([][]string, error) {
	var doc ValueRange
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Msg: "Invalid data structure from Google Sheets API", Err: err}
	}
	if doc.Values == nil {
		return nil, &SchemaError{Msg: "No data found in spreadsheet"}
	}
	rows := make([][]string, 0, len(doc.Values))
	for _, row := range doc.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, n.Plain(scalar(v)))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
