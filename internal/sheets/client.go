package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sheetfold/sheetfold/internal/richtext"
)

const (
	DefaultBaseURL  = "https://sheets.googleapis.com/v4/spreadsheets/"
	CORSProxyPrefix = "https://cors-anywhere.herokuapp.com/"
	gridFields      = "sheets(data(rowData(values(userEnteredValue,formattedValue,textFormatRuns,effectiveFormat.textFormat))))"
	maxResponseSize = 32 << 20
)

type Request struct {
	SpreadsheetID string
	Range         string
	APIKey        string
	RichText      bool
	UseCORSProxy  bool
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: 30 * time.Second}, BaseURL: DefaultBaseURL}
}

// URL builds the request URL for either response shape.
func (c *Client) URL(req Request) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	var u string
	if req.RichText {
		q := url.Values{}
		q.Set("ranges", req.Range)
		q.Set("includeGridData", "true")
		q.Set("fields", gridFields)
		q.Set("key", req.APIKey)
		u = base + url.PathEscape(req.SpreadsheetID) + "?" + q.Encode()
	} else {
		q := url.Values{}
		q.Set("key", req.APIKey)
		u = base + url.PathEscape(req.SpreadsheetID) + "/values/" + url.PathEscape(req.Range) + "?" + q.Encode()
	}
	if req.UseCORSProxy {
		return CORSProxyPrefix + u
	}
	return u
}

// Fetch downloads the range and returns rows of HTML cells.
func (c *Client) Fetch(ctx context.Context, req Request, n *richtext.Normalizer) ([][]string, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("create sheets request: %w", err)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		slog.Error("sheets fetch failed", "status", resp.StatusCode, "body", string(bytes.TrimSpace(body)))
		return nil, &APIError{Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	slog.Debug("sheets data received", "spreadsheet", req.SpreadsheetID, "bytes", len(data))
	if req.RichText {
		return DecodeGrid(data, n)
	}
	return DecodeValues(data, n)
}
