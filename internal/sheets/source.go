package sheets

import (
	"context"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
)

// Source yields the rows of one accordion.
type Source interface {
	Load(ctx context.Context) ([][]string, error)
}

type Remote struct {
	Client     *Client
	Request    Request
	Normalizer *richtext.Normalizer
}

func (r Remote) Load(ctx context.Context) ([][]string, error) {
	return r.Client.Fetch(ctx, r.Request, r.Normalizer)
}

type Workbook struct {
	Path       string
	Sheet      string
	Normalizer *richtext.Normalizer
}

func (w Workbook) Load(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadWorkbook(w.Path, w.Sheet, w.Normalizer)
}

// ForAccordion picks the workbook source when one is configured and the
// remote API otherwise.
func ForAccordion(a config.Accordion, client *Client, n *richtext.Normalizer) Source {
	if a.Source.Workbook != "" {
		return Workbook{Path: a.Source.Workbook, Sheet: a.Source.Sheet, Normalizer: n}
	}
	return Remote{
		Client: client,
		Request: Request{
			SpreadsheetID: a.Source.SpreadsheetID,
			Range:         a.Source.Range,
			APIKey:        a.Source.APIKey,
			RichText:      a.RichText(),
			UseCORSProxy:  a.Source.UseCORSProxy,
		},
		Normalizer: n,
	}
}
