package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/sheets"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

func TestHealthzHandler(t *testing.T) {
	h := newTestHost(t, faqValues())

	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	rec = httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestServerInfoHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	serverInfoHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/server-info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"name":"sheetfold"`) || !strings.Contains(body, `"api_version":1`) {
		t.Fatalf("unexpected server info: %s", body)
	}

	rec = httptest.NewRecorder()
	serverInfoHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/server-info", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for non-GET method, got %d", rec.Code)
	}
}

func TestInstanceViewAndList(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	var one instanceView
	decodeJSONBody(t, doRequest(t, client, http.MethodGet, h.path("")), &one)
	if one.ID != h.inst.ID || one.Anchor != "faq" || one.Status != accordion.StatusReady {
		t.Fatalf("unexpected instance view: %+v", one.Snapshot)
	}
	if len(one.Items) != 4 || !one.Items[0].Header || one.Items[3].Expandable {
		t.Fatalf("unexpected items: %+v", one.Items)
	}
	if !strings.Contains(one.HTML, `class="accordion-table"`) {
		t.Fatalf("expected table markup, got %q", one.HTML)
	}

	var all listInstancesResponse
	decodeJSONBody(t, doRequest(t, client, http.MethodGet, h.ts.URL+"/api/v1/instances"), &all)
	if len(all.Instances) != 1 || all.Instances[0].ID != h.inst.ID {
		t.Fatalf("unexpected instance list: %+v", all)
	}

	resp := doRequest(t, client, http.MethodGet, h.ts.URL+"/api/v1/instances/accordion_missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown instance: got %d want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestViewsCarryFontsLoadedAfterPageRender(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	page := h.srv.pageHTML()
	if strings.Contains(page, "family=Lobster") {
		t.Fatalf("font should not be on the page yet")
	}
	h.srv.fonts.Load("Lobster")
	want := "https://fonts.googleapis.com/css2?family=Lobster&display=swap"

	var v instanceView
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/reload")), &v)
	if len(v.Fonts) != 1 || v.Fonts[0] != want {
		t.Fatalf("reload fonts: got %v want [%s]", v.Fonts, want)
	}

	var res searchResponse
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/chip?label=Pricing")), &res)
	if len(res.Fonts) != 1 || res.Fonts[0] != want {
		t.Fatalf("search fonts: got %v want [%s]", res.Fonts, want)
	}
}

func TestToggleWritesViewedStateToStore(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	var res accordion.ToggleResult
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/items/1/toggle")), &res)
	if !res.Expanded || res.Viewed != "written" {
		t.Fatalf("unexpected toggle result: %+v", res)
	}
	if !strings.Contains(res.HTML, `<img src="https://example.com/a.png"`) {
		t.Fatalf("expanded answer should be materialized, got %q", res.HTML)
	}

	got, found, err := h.db.GetItem(viewed.Key("sheet-1"))
	if err != nil || !found {
		t.Fatalf("viewed entry missing: found=%v err=%v", found, err)
	}
	if want := `{"Is AI safe?":1714564800000}`; got != want {
		t.Fatalf("stored entries: got %q want %q", got, want)
	}
	if !strings.Contains(h.inst.ItemHTML(1), "accordion-viewed-badge") {
		t.Fatalf("badge should be repainted after the write")
	}

	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/items/1/toggle")), &res)
	if res.Expanded || res.Transition != "none" {
		t.Fatalf("unexpected collapse result: %+v", res)
	}
}

func TestToggleErrorStatuses(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	tests := []struct {
		path string
		want int
	}{
		{"/items/0/toggle", http.StatusConflict},
		{"/items/3/toggle", http.StatusConflict},
		{"/items/9/toggle", http.StatusNotFound},
		{"/items/x/toggle", http.StatusBadRequest},
		{"/items/-1/toggle", http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp := doRequest(t, client, http.MethodPost, h.path(tc.path))
		body := readBody(t, resp)
		if resp.StatusCode != tc.want {
			t.Fatalf("POST %s: got %d want %d (%s)", tc.path, resp.StatusCode, tc.want, body)
		}
		if !strings.Contains(body, `"error"`) {
			t.Fatalf("POST %s: expected error body, got %s", tc.path, body)
		}
	}
}

func TestHoverOnMaterializedItemAnswersImmediately(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	resp := doRequest(t, client, http.MethodPost, h.path("/items/1/toggle"))
	resp.Body.Close()

	var res hoverResponse
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/items/1/hover")), &res)
	if !res.Materialized || res.Cancelled || !strings.Contains(res.HTML, `id="`+h.inst.ID+`-item-1"`) {
		t.Fatalf("unexpected hover response: %+v", res)
	}

	resp = doRequest(t, client, http.MethodDelete, h.path("/items/2/hover"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("cancel hover: got %d want 204", resp.StatusCode)
	}
}

func TestChipSearchRepaintsContent(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	var res searchResponse
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/chip?label=Pricing")), &res)
	if res.Stale || res.Result == nil || res.Result.Term != "Pricing" || res.Result.Visible != 2 {
		t.Fatalf("unexpected chip result: %+v", res)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Contents[h.inst.ID]))
	if err != nil {
		t.Fatalf("parse content: %v", err)
	}
	if got := doc.Find("tbody.accordion-item:not(.hidden)").Length(); got != 2 {
		t.Fatalf("visible items: got %d want 2", got)
	}
	if got := doc.Find(".accordion-search-highlight").First().Text(); got != "Pricing" {
		t.Fatalf("highlight: got %q want %q", got, "Pricing")
	}

	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/chip?label=All")), &res)
	if res.Result.Term != "" || res.Result.Visible != 4 {
		t.Fatalf("All chip should clear the search: %+v", res.Result)
	}
	if strings.Contains(res.Contents[h.inst.ID], "accordion-search-highlight") {
		t.Fatalf("highlights should be cleared")
	}
}

func TestDebouncedSearchSupersedesEarlierRequest(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	get := func(url string) <-chan *http.Response {
		out := make(chan *http.Response, 1)
		go func() {
			resp, err := client.Get(url)
			if err != nil {
				out <- nil
				return
			}
			out <- resp
		}()
		return out
	}
	await := func(ch <-chan *http.Response) searchResponse {
		t.Helper()
		select {
		case resp := <-ch:
			if resp == nil {
				t.Fatalf("search request failed")
			}
			var res searchResponse
			decodeJSONBody(t, resp, &res)
			return res
		case <-time.After(5 * time.Second):
			t.Fatalf("search request never answered")
		}
		return searchResponse{}
	}

	first := get(h.path("/search?q=pri"))
	waitForPending(t, h, 1)
	second := get(h.path("/search?q=ship"))

	if res := await(first); !res.Stale {
		t.Fatalf("first request should be stale, got %+v", res)
	}

	waitForPending(t, h, 1)
	h.clock.Advance(300 * time.Millisecond)
	res := await(second)
	if res.Stale || res.Result == nil || res.Result.Term != "ship" || res.Result.Visible != 2 {
		t.Fatalf("unexpected second result: %+v", res)
	}
}

// waitForPending blocks until the fake clock holds n tasks, which means the
// handler goroutine has reached the debouncer.
func waitForPending(t *testing.T, h *testHost, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.clock.Pending() != n {
		if time.Now().After(deadline) {
			t.Fatalf("pending tasks: got %d want %d", h.clock.Pending(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRetryEndpointsAndHealth(t *testing.T) {
	h := newTestHost(t, nil)
	h.source.err = &sheets.TransportError{Err: errors.New("offline")}
	h.load(t)
	client := h.ts.Client()

	h.srv.syncHealth()
	check, err := h.srv.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if check.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("health: got %v want NOT_SERVING", check.GetStatus())
	}

	var st retryResponse
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/retry/pause")), &st)
	if !st.Pending || st.State == nil || !st.Paused || st.Display != "10.0" {
		t.Fatalf("unexpected paused state: %+v", st)
	}
	h.clock.Advance(2 * time.Second)
	decodeJSONBody(t, doRequest(t, client, http.MethodGet, h.path("/retry")), &st)
	if st.Display != "10.0" {
		t.Fatalf("paused countdown should not move, got %s", st.Display)
	}

	h.source.err = nil
	h.source.values = faqValues()
	decodeJSONBody(t, doRequest(t, client, http.MethodPost, h.path("/retry/resume")), &st)
	if st.Paused {
		t.Fatalf("expected resumed countdown")
	}
	h.clock.Advance(10 * time.Second)

	decodeJSONBody(t, doRequest(t, client, http.MethodGet, h.path("/retry")), &st)
	if st.Pending {
		t.Fatalf("countdown should be gone after reload: %+v", st)
	}
	if h.inst.Status() != accordion.StatusReady {
		t.Fatalf("status after retry: got %s want ready", h.inst.Status())
	}
	resp := doRequest(t, client, http.MethodPost, h.path("/retry/pause"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("pause without countdown: got %d want 409", resp.StatusCode)
	}

	h.srv.syncHealth()
	check, _ = h.srv.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if check.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("health after recovery: got %v want SERVING", check.GetStatus())
	}
}

func TestReloadReportsFailureInView(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	h.source.err = &sheets.APIError{Status: 403}

	var v instanceView
	decodeJSONBody(t, doRequest(t, h.ts.Client(), http.MethodPost, h.path("/reload")), &v)
	if v.Status != accordion.StatusError || v.Error != "HTTP error! status: 403" || v.Retry != nil {
		t.Fatalf("unexpected reload view: %+v", v.Snapshot)
	}
	if !strings.Contains(v.HTML, "⚠️ Error Loading Data") {
		t.Fatalf("expected static error panel, got %q", v.HTML)
	}
}

func TestMediaEndpoint(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	client := h.ts.Client()

	var m struct {
		HTML     string `json:"html"`
		Fallback string `json:"fallback"`
		Error    string `json:"error"`
	}
	decodeJSONBody(t, doRequest(t, client, http.MethodGet, h.ts.URL+"/api/v1/media?kind=image&data=https%3A%2F%2Fexample.com%2Fb.png&in_cell=1"), &m)
	if !strings.Contains(m.HTML, `class="accordion-image-content"`) || !strings.Contains(m.Fallback, "Failed to load image") {
		t.Fatalf("unexpected media response: %+v", m)
	}

	resp := doRequest(t, client, http.MethodGet, h.ts.URL+"/api/v1/media?kind=youtube&data=%7B%7D&instance="+h.inst.ID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad video data: got %d want 400", resp.StatusCode)
	}
	decodeJSONBody(t, resp, &m)
	if m.Fallback != "❌ Failed to load video" {
		t.Fatalf("fallback: got %q", m.Fallback)
	}
}

func TestViewedRefresh(t *testing.T) {
	h := newTestHost(t, faqValues())
	h.load(t)
	if err := h.db.SetItem(viewed.Key("sheet-1"), `{"Pricing":1714564800000}`); err != nil {
		t.Fatalf("seed viewed entries: %v", err)
	}
	resp := doRequest(t, h.ts.Client(), http.MethodPost, h.ts.URL+"/api/v1/viewed/refresh")
	if body := readBody(t, resp); !strings.Contains(body, `"refreshed":1`) {
		t.Fatalf("unexpected refresh body: %s", body)
	}
	if !strings.Contains(h.inst.ItemHTML(2), `data-row-id="Pricing"`) {
		t.Fatalf("badge should appear after refresh, got %q", h.inst.ItemHTML(2))
	}
}
