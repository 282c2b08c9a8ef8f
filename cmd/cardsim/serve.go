package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lox/cardsim/cmd/cardsim/shared"
	"github.com/lox/cardsim/internal/server"
)

// ServeCmd exposes a session over HTTP and WebSocket
type ServeCmd struct {
	Addr string `kong:"help='Listen address (overrides config)'"`
	Auto bool   `kong:"help='Start auto-draw immediately'"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	out := os.Stderr
	if cfg.Log.File != "" {
		f, err := shared.OpenLogFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger, err := shared.SetupLogger(out, cfg.Log.Level)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}

	ctrl, _ := newSession(cfg, logger)
	srv := server.NewServer(ctrl, logger)

	ctx := shared.SetupSignalHandler(logger)
	g2, ctx := errgroup.WithContext(ctx)

	g2.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})
	g2.Go(func() error {
		<-ctx.Done()
		ctrl.StopSimulation()
		return nil
	})

	if c.Auto {
		ctrl.StartSimulation()
	}

	return g2.Wait()
}
