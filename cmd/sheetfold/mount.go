package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/sheets"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

// mountAll mounts the configured accordions, or only those named in ids.
func mountAll(ctx context.Context, cfg config.File, ids []string, storage viewed.Storage, sched schedule.Scheduler, fonts *richtext.FontRegistry) (*accordion.Registry, error) {
	reg := accordion.NewRegistry(ctx, sched, storage)
	client := sheets.NewClient()
	normalizer := richtext.NewNormalizer(fonts)
	for _, a := range cfg.Accordions {
		if len(ids) > 0 && !slices.Contains(ids, a.ID) {
			continue
		}
		opts, err := accordion.NewOptions(a)
		if err != nil {
			return nil, fmt.Errorf("accordion %q: %w", a.ID, err)
		}
		if _, err := reg.Mount(opts, sheets.ForAccordion(a, client, normalizer)); err != nil {
			return nil, err
		}
	}
	if len(reg.Instances()) == 0 {
		return nil, fmt.Errorf("no accordion matches %v", ids)
	}
	return reg, nil
}

// discardStorage backs the viewed store when no database is configured.
type discardStorage struct{}

func (discardStorage) GetItem(string) (string, bool, error) { return "", false, nil }

func (discardStorage) SetItem(string, string) error { return nil }
