package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/search"
	"github.com/sheetfold/sheetfold/internal/store"
)

const testConfigYAML = `
version: 1
page:
  title: Help Center
accordions:
  - id: faq
    source:
      spreadsheet_id: sheet-1
    columns:
      questions: [A]
      answer: B
      viewed: A
    rows:
      starting_row: 2
      header_row: 1
    search:
      show_box: true
      placeholder: "Search..."
      common: [All, Pricing]
`

type staticSource struct {
	values [][]string
	err    error
}

func (s *staticSource) Load(context.Context) ([][]string, error) {
	return s.values, s.err
}

func faqValues() [][]string {
	return [][]string{
		{"Question", "Answer"},
		{"Is AI safe?", "Yes, see https://example.com/a.png"},
		{"Pricing", "Free while in beta"},
		{"Shipping", ""},
	}
}

type testHost struct {
	clock  *schedule.Fake
	db     *store.Store
	source *staticSource
	inst   *accordion.Instance
	srv    *Server
	ts     *httptest.Server
}

func newTestHost(t *testing.T, values [][]string) *testHost {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfigYAML), "test")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	opts, err := accordion.NewOptions(cfg.Accordions[0])
	if err != nil {
		t.Fatalf("new options: %v", err)
	}
	opts.Location = time.UTC

	db, err := store.Open(filepath.Join(t.TempDir(), "sheetfold.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	h := &testHost{
		clock:  schedule.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		db:     db,
		source: &staticSource{values: values},
	}
	reg := accordion.NewRegistry(context.Background(), h.clock, db)
	h.inst, err = reg.Mount(opts, h.source)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	h.srv = New(Options{Title: cfg.Page.Title}, reg, search.NewEngine(reg, h.clock), richtext.NewFontRegistry(), db)
	h.ts = httptest.NewServer(h.srv.Handler())
	t.Cleanup(h.ts.Close)
	return h
}

func (h *testHost) load(t *testing.T) {
	t.Helper()
	_ = h.inst.Load(context.Background())
}

func (h *testHost) path(suffix string) string {
	return h.ts.URL + "/api/v1/instances/" + h.inst.ID + suffix
}

func doRequest(t *testing.T, client *http.Client, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func decodeJSONBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func requireContainsAll(t *testing.T, content, subject string, needles ...string) {
	t.Helper()
	for _, needle := range needles {
		if strings.Contains(content, needle) {
			continue
		}
		t.Fatalf("%s missing %q", subject, needle)
	}
}
