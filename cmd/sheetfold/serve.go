package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sheetfold/sheetfold/internal/config"
	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/schedule"
	"github.com/sheetfold/sheetfold/internal/search"
	"github.com/sheetfold/sheetfold/internal/server"
	"github.com/sheetfold/sheetfold/internal/store"
)

type serveOptions struct {
	configPath string
	addr       string
	dbPath     string
	grpcAddr   string
	mdns       bool
}

func newServeCommand() *cobra.Command {
	var o serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the accordion page and its API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.configPath, "config", "sheetfold.yaml", "Path to the accordion config file")
	cmd.Flags().StringVar(&o.addr, "addr", ":8112", "HTTP listen address")
	cmd.Flags().StringVar(&o.dbPath, "db", "sheetfold.db", "SQLite database for viewed state")
	cmd.Flags().StringVar(&o.grpcAddr, "grpc-addr", "", "gRPC health listen address (disabled when empty)")
	cmd.Flags().BoolVar(&o.mdns, "mdns", false, "Advertise the server on the local network over mDNS")
	return cmd
}

func runServe(cmd *cobra.Command, o serveOptions) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	db, err := store.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	fonts := richtext.NewFontRegistry()
	reg, err := mountAll(ctx, cfg, nil, db, schedule.Clock{}, fonts)
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Addr:     o.addr,
		GRPCAddr: o.grpcAddr,
		MDNS:     o.mdns,
		Title:    cfg.Page.Title,
	}, reg, search.NewEngine(reg, schedule.Clock{}), fonts, db)

	g.Go(func() error { return srv.ServeHTTP(ctx) })
	g.Go(func() error { return srv.ServeGRPC(ctx) })
	g.Go(func() error {
		reg.LoadAll(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
