package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/store"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

type renderOptions struct {
	configPath string
	ids        []string
	outPath    string
	dbPath     string
}

func newRenderCommand() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load each accordion once and write its markup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.configPath, "config", "sheetfold.yaml", "Path to the accordion config file")
	cmd.Flags().StringSliceVar(&o.ids, "id", nil, "Only render these accordion ids")
	cmd.Flags().StringVarP(&o.outPath, "out", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&o.dbPath, "db", "", "SQLite database with viewed state to paint badges from")
	return cmd
}

func runRender(cmd *cobra.Command, o renderOptions) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	var storage viewed.Storage = discardStorage{}
	if o.dbPath != "" {
		db, err := store.Open(o.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		storage = db
	}

	ctx := cmd.Context()
	reg, err := mountAll(ctx, cfg, o.ids, storage, schedule.Clock{}, richtext.NewFontRegistry())
	if err != nil {
		return err
	}

	var b strings.Builder
	var failed []string
	for _, in := range reg.Instances() {
		if err := in.Load(ctx); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", in.Anchor, err))
		}
		// A transient failure leaves a countdown armed; render does not wait for it.
		if c, ok := in.Countdown(); ok {
			c.Stop()
		}
		fmt.Fprintf(&b, "<div id=\"%s\">%s</div>\n", html.EscapeString(in.Anchor), in.ContentHTML())
	}

	var out io.Writer = cmd.OutOrStdout()
	if o.outPath != "" {
		f, err := os.Create(o.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, b.String()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("load failed: %s", strings.Join(failed, "; "))
	}
	return nil
}
