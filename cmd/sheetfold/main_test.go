package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sheetfold/sheetfold/internal/store"
	"github.com/sheetfold/sheetfold/internal/version"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

func TestInitLoggingLevel(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	cases := []struct {
		name    string
		level   string
		debugOn bool
		infoOn  bool
		warnOn  bool
	}{
		{name: "debug", level: "debug", debugOn: true, infoOn: true, warnOn: true},
		{name: "warn", level: "WARN", debugOn: false, infoOn: false, warnOn: true},
		{name: "error", level: "error", debugOn: false, infoOn: false, warnOn: false},
		{name: "default", level: "", debugOn: false, infoOn: true, warnOn: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			initLogging(tc.level)
			h := slog.Default().Handler()
			ctx := context.Background()
			if got := h.Enabled(ctx, slog.LevelDebug); got != tc.debugOn {
				t.Fatalf("debug enabled=%v want %v", got, tc.debugOn)
			}
			if got := h.Enabled(ctx, slog.LevelInfo); got != tc.infoOn {
				t.Fatalf("info enabled=%v want %v", got, tc.infoOn)
			}
			if got := h.Enabled(ctx, slog.LevelWarn); got != tc.warnOn {
				t.Fatalf("warn enabled=%v want %v", got, tc.warnOn)
			}
			if !h.Enabled(ctx, slog.LevelError) {
				t.Fatalf("error level should always be enabled")
			}
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	orig := version.Version
	t.Cleanup(func() { version.Version = orig })
	version.Version = "v0.3.1"

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := strings.TrimSpace(out); got != "v0.3.1" {
		t.Fatalf("got %q want %q", got, "v0.3.1")
	}
}

func writeWorkbookConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]string{
		"A1": "Question", "B1": "Answer",
		"A2": "Is AI safe?", "B2": "Mostly.",
		"A3": "Pricing", "B3": "Free while in beta",
	}
	for axis, value := range cells {
		if err := f.SetCellValue("Sheet1", axis, value); err != nil {
			t.Fatalf("set %s: %v", axis, err)
		}
	}
	workbook := filepath.Join(dir, "faq.xlsx")
	if err := f.SaveAs(workbook); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	cfg := `
version: 1
accordions:
  - id: faq
    source:
      workbook: ` + workbook + `
    columns:
      questions: [A]
      answer: B
      viewed: A
    rows:
      starting_row: 2
      header_row: 1
`
	cfgPath := filepath.Join(dir, "sheetfold.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, cfgPath
}

func TestRenderCommandWritesMarkup(t *testing.T) {
	dir, cfgPath := writeWorkbookConfig(t)
	outPath := filepath.Join(dir, "faq.html")

	if _, err := execute(t, "render", "--config", cfgPath, "--out", outPath); err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	page := string(raw)
	for _, want := range []string{`<div id="faq">`, `class="accordion-table"`, "Is AI safe?", "Free while in beta"} {
		if !strings.Contains(page, want) {
			t.Fatalf("render output missing %q: %s", want, page)
		}
	}

	if _, err := execute(t, "render", "--config", cfgPath, "--id", "missing"); err == nil {
		t.Fatalf("expected error for unknown accordion id")
	}
}

func TestRenderReadsConfigFromEnvironment(t *testing.T) {
	_, cfgPath := writeWorkbookConfig(t)
	t.Setenv("SHEETFOLD_CONFIG", cfgPath)

	out, err := execute(t, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Pricing") {
		t.Fatalf("expected markup on stdout, got %q", out)
	}
}

func TestViewedListAndClear(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sheetfold.db")
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := db.SetItem(viewed.Key("sheet-1"), `{"Pricing":1714564800000,"Is AI safe?":1714568400000}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = db.Close()

	out, err := execute(t, "viewed", "list", "--db", dbPath)
	if err != nil {
		t.Fatalf("viewed list: %v", err)
	}
	if !strings.Contains(out, "accordion_viewed_sheet-1") {
		t.Fatalf("expected key listing, got %q", out)
	}

	out, err = execute(t, "viewed", "list", "--db", dbPath, "--source", "sheet-1")
	if err != nil {
		t.Fatalf("viewed list --source: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "Is AI safe?") || !strings.Contains(lines[2], "2024-05-01 12:00pm") {
		t.Fatalf("unexpected rows: %q", out)
	}

	if _, err := execute(t, "viewed", "clear", "--db", dbPath, "--source", "sheet-1"); err != nil {
		t.Fatalf("viewed clear: %v", err)
	}
	if _, err := execute(t, "viewed", "list", "--db", dbPath, "--source", "sheet-1"); err == nil {
		t.Fatalf("expected missing source after clear")
	}
	if _, err := execute(t, "viewed", "clear", "--db", dbPath); err == nil {
		t.Fatalf("expected --source to be required")
	}
}
