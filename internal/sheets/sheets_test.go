package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sheetfold/sheetfold/internal/richtext"
)

const gridFixture = `{
  "sheets": [{"data": [{"rowData": [
    {"values": [
      {"userEnteredValue": {"stringValue": "Question"}},
      {"userEnteredValue": {"stringValue": "Answer"}}
    ]},
    {"values": [
      {"userEnteredValue": {"stringValue": "Is AI safe?\n"},
       "textFormatRuns": [{"format": {"bold": true}}, {"startIndex": 3, "format": {"italic": true}}, {"startIndex": 5, "format": {}}]},
      {"userEnteredValue": {"numberValue": 42}, "formattedValue": "42.00"}
    ]},
    {},
    {"values": [
      {"userEnteredValue": {"stringValue": "linked"}, "effectiveFormat": {"textFormat": {"fontFamily": "Arial", "fontSize": 10, "underline": true}}},
      {"userEnteredValue": {"formulaValue": "=IMAGE(\"https://example.com/a.png\")"}},
      {"userEnteredValue": {"boolValue": true}}
    ]}
  ]}]}]
}`

func TestDecodeGrid(t *testing.T) {
	rows, err := DecodeGrid([]byte(gridFixture), richtext.NewNormalizer(richtext.NewFontRegistry()))
	if err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows: got %d want 4", len(rows))
	}
	if got, want := rows[1][0], "<b>Is </b><i>AI</i> safe?\n"; got != want {
		t.Fatalf("rich cell: got %q want %q", got, want)
	}
	if got := rows[1][1]; got != "42.00" {
		t.Fatalf("number cell should prefer formatted value: got %q", got)
	}
	if len(rows[2]) != 0 {
		t.Fatalf("empty row: got %v", rows[2])
	}
	if got := rows[3][0]; got != "<u>linked</u>" {
		t.Fatalf("effective format: got %q want %q", got, "<u>linked</u>")
	}
	if got := rows[3][1]; got != "=IMAGE(&#34;https://example.com/a.png&#34;)" {
		t.Fatalf("formula cell: got %q", got)
	}
	if got := rows[3][2]; got != "true" {
		t.Fatalf("bool cell: got %q", got)
	}
}

func TestDecodeGridSchemaErrors(t *testing.T) {
	n := richtext.NewNormalizer(richtext.NewFontRegistry())
	tests := []struct {
		body string
		want string
	}{
		{`{"sheets": []}`, "No data found in spreadsheet"},
		{`{"sheets": [{"data": []}]}`, "Invalid data structure"},
		{`not json`, "Invalid data structure"},
	}
	for _, tc := range tests {
		_, err := DecodeGrid([]byte(tc.body), n)
		var se *SchemaError
		if !errors.As(err, &se) || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("DecodeGrid(%s): got %v want schema error %q", tc.body, err, tc.want)
		}
		if IsTransient(err) {
			t.Fatalf("schema errors are not transient")
		}
	}
}

func TestDecodeValuesEscapes(t *testing.T) {
	rows, err := DecodeValues([]byte(`{"range":"A1:B2","values":[["a<b", 3.5],[true]]}`), richtext.NewNormalizer(nil))
	if err != nil {
		t.Fatalf("decode values: %v", err)
	}
	if rows[0][0] != "a&lt;b" || rows[0][1] != "3.5" || rows[1][0] != "true" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestClientFetchGrid(t *testing.T) {
	var gotPath, gotRanges, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRanges = r.URL.Query().Get("ranges")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gridFixture))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL + "/v4/spreadsheets/"}
	rows, err := c.Fetch(context.Background(), Request{SpreadsheetID: "sheet-1", Range: "FAQ!A1:Z", APIKey: "k", RichText: true}, richtext.NewNormalizer(nil))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows: got %d want 4", len(rows))
	}
	if gotPath != "/v4/spreadsheets/sheet-1" || gotRanges != "FAQ!A1:Z" || gotKey != "k" {
		t.Fatalf("unexpected request: path=%q ranges=%q key=%q", gotPath, gotRanges, gotKey)
	}
}

func TestClientFetchErrorsAreClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL + "/"}
	_, err := c.Fetch(context.Background(), Request{SpreadsheetID: "s", RichText: true}, richtext.NewNormalizer(nil))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected API error, got %v", err)
	}
	if err.Error() != "HTTP error! status: 403" || IsTransient(err) {
		t.Fatalf("unexpected API error classification: %v", err)
	}

	srv.Close()
	_, err = c.Fetch(context.Background(), Request{SpreadsheetID: "s"}, richtext.NewNormalizer(nil))
	if !IsTransient(err) {
		t.Fatalf("expected transient error after server close, got %v", err)
	}
}

func TestClientURL(t *testing.T) {
	c := NewClient()
	got := c.URL(Request{SpreadsheetID: "abc", Range: "Sheet1!A1:B", APIKey: "key", UseCORSProxy: true})
	want := CORSProxyPrefix + "https://sheets.googleapis.com/v4/spreadsheets/abc/values/Sheet1%21A1:B?key=key"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if err := f.SetCellValue(sheet, "A1", "Question"); err != nil {
		t.Fatalf("set A1: %v", err)
	}
	if err := f.SetCellValue(sheet, "B1", "Answer"); err != nil {
		t.Fatalf("set B1: %v", err)
	}
	if err := f.SetCellRichText(sheet, "A2", []excelize.RichTextRun{
		{Text: "Bold", Font: &excelize.Font{Bold: true}},
		{Text: " plain"},
	}); err != nil {
		t.Fatalf("set rich text: %v", err)
	}
	if err := f.SetCellValue(sheet, "B2", "docs"); err != nil {
		t.Fatalf("set B2: %v", err)
	}
	if err := f.SetCellHyperLink(sheet, "B2", "https://example.com/docs", "External"); err != nil {
		t.Fatalf("set hyperlink: %v", err)
	}
	if err := f.SetCellFormula(sheet, "A3", `IMAGE("https://example.com/i.png")`); err != nil {
		t.Fatalf("set formula: %v", err)
	}
	if err := f.SetCellValue(sheet, "B3", "x"); err != nil {
		t.Fatalf("set B3: %v", err)
	}
	path := filepath.Join(t.TempDir(), "faq.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	rows, err := ReadWorkbook(path, "", richtext.NewNormalizer(nil))
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(rows))
	}
	if rows[0][0] != "Question" {
		t.Fatalf("plain cell: got %q", rows[0][0])
	}
	if got := rows[1][0]; got != "<b>Bold</b> plain" {
		t.Fatalf("rich cell: got %q want %q", got, "<b>Bold</b> plain")
	}
	if got := rows[1][1]; !strings.Contains(got, `href="https://example.com/docs"`) || richtext.StripTags(got) != "docs" {
		t.Fatalf("hyperlink cell: got %q", got)
	}
	if got := rows[2][0]; got != "=IMAGE(&#34;https://example.com/i.png&#34;)" {
		t.Fatalf("formula cell: got %q", got)
	}

	if _, err := ReadWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), "", richtext.NewNormalizer(nil)); err == nil || IsTransient(err) {
		t.Fatalf("expected non-transient open error, got %v", err)
	}
}
