package config

import (
	"strings"
	"testing"
)

const minimalYAML = `
version: 1
accordions:
  - id: faq
    source:
      spreadsheet_id: sheet-123
      range: "Sheet1!A1:Z"
    columns:
      questions: [A, ICON]
      answer: B
`

func TestParseValidConfigAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML), "test-valid")
	if err != nil {
		t.Fatalf("parse valid config: %v", err)
	}
	if len(cfg.Accordions) != 1 {
		t.Fatalf("unexpected accordions: %+v", cfg.Accordions)
	}
	a := cfg.Accordions[0]
	if a.Search.Scope != "instance" || a.Search.DelayMS != 300 {
		t.Fatalf("unexpected search defaults: %+v", a.Search)
	}
	if a.Media.AnswerMaxWidth != 555 || a.Media.YouTubeAlign != "right" || a.Media.AnswerAlign != "center" {
		t.Fatalf("unexpected media defaults: %+v", a.Media)
	}
	if a.Media.MaintainAspectRatio == nil || !*a.Media.MaintainAspectRatio {
		t.Fatalf("expected maintain_aspect_ratio default true")
	}
	if a.Rows.StartingRow != 1 || a.Retry.DelayMS != 10000 {
		t.Fatalf("unexpected row/retry defaults: %+v %+v", a.Rows, a.Retry)
	}
	if !a.FetchOnLoad() || !a.RichText() {
		t.Fatalf("expected fetch_on_load and rich_text defaults true")
	}
	if got := a.QuestionIndices(); len(got) != 2 || got[0] != 0 || got[1] != IconIndex {
		t.Fatalf("question indices: got %v", got)
	}
	if got := a.AnswerIndex(); got != 1 {
		t.Fatalf("answer index: got %d want 1", got)
	}
	if got := a.DataSourceID(); got != "sheet-123" {
		t.Fatalf("data source id: got %q", got)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(strings.Replace(minimalYAML, "version: 1", "version: 2", 1)), "test-version")
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Fatalf("expected unsupported version error, got: %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(minimalYAML+"    bogus: true\n"), "test-unknown")
	if err == nil || !strings.Contains(err.Error(), "parse YAML") {
		t.Fatalf("expected parse YAML error, got: %v", err)
	}
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		want    string
	}{
		{"multi-letter column", [2]string{"answer: B", "answer: AB"}, "single letter"},
		{"lowercase column", [2]string{"questions: [A, ICON]", "questions: [a]"}, "columns.questions[0]"},
		{"missing answer", [2]string{"answer: B", "answer: \"\""}, "columns.answer is required"},
		{"bad scope", [2]string{"answer: B", "answer: B\n    search:\n      scope: page"}, "search.scope"},
		{"bad filter", [2]string{"answer: B", "answer: B\n    filters:\n      - {column: A, condition: resembles}"}, "filters[0].condition"},
		{"bad color", [2]string{"answer: B", "answer: B\n    viewed:\n      color_recent: green"}, "viewed.color_recent invalid color"},
		{"heatmap without columns", [2]string{"answer: B", "answer: B\n    heatmap:\n      enabled: true"}, "heatmap.columns is required"},
		{"no source", [2]string{"spreadsheet_id: sheet-123", "sheet: Sheet1"}, "requires spreadsheet_id or workbook"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := strings.Replace(minimalYAML, tc.replace[0], tc.replace[1], 1)
			_, err := Parse([]byte(data), "test")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	data := minimalYAML + `  - id: faq
    source:
      workbook: faq.xlsx
    columns:
      questions: [A]
      answer: B
`
	_, err := Parse([]byte(data), "test-dup")
	if err == nil || !strings.Contains(err.Error(), `duplicate "faq"`) {
		t.Fatalf("expected duplicate id error, got: %v", err)
	}
}

func TestColumnIndex(t *testing.T) {
	for designator, want := range map[string]int{"A": 0, "C": 2, "Z": 25} {
		got, err := ColumnIndex(designator)
		if err != nil || got != want {
			t.Fatalf("ColumnIndex(%q): got %d, %v want %d", designator, got, err, want)
		}
	}
	for _, bad := range []string{"", "AA", "a", "1", IconColumn} {
		if _, err := ColumnIndex(bad); err == nil {
			t.Fatalf("ColumnIndex(%q): expected error", bad)
		}
	}
	if idx, err := QuestionColumnIndex(IconColumn); err != nil || idx != IconIndex {
		t.Fatalf("QuestionColumnIndex(ICON): got %d, %v", idx, err)
	}
	if OptionalIndex("") != -1 || OptionalIndex("D") != 3 {
		t.Fatalf("unexpected OptionalIndex results")
	}
}
