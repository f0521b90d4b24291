package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thesyncim/obsctl"
	xlog "github.com/thesyncim/obsctl/internal/log"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var initOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the init/start/stop/cleanup control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.serve(ctx, initOnStart)
		},
	}
	cmd.Flags().BoolVar(&initOnStart, "init", false, "initialize the engine and configure the output at startup")
	return cmd
}

func (a *app) serve(ctx context.Context, initOnStart bool) error {
	logger := xlog.WithComponent("serve")
	ctrl := obsctl.NewController(obsctl.NewEngine, a.cfg.Credentials(), a.cfg.SessionOptions(xlog.Base()))
	defer ctrl.Cleanup(context.Background())

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Ingest.Listen != "" {
		ln, err := net.Listen("tcp", a.cfg.Ingest.Listen)
		if err != nil {
			return err
		}
		ingest := newIngest(a.cfg.Ingest.App, xlog.WithComponent("ingest"))
		g.Go(func() error { return ingest.Serve(ln) })
		g.Go(func() error {
			<-ctx.Done()
			return ingest.Close()
		})
		logger.Info().
			Str("event", "ingest.listening").
			Str("addr", ln.Addr().String()).
			Str("app", a.cfg.Ingest.App).
			Msg("local RTMP ingest listening")
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Listen,
		Handler:           newRouter(ctrl, xlog.WithComponent("api")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info().
			Str("event", "api.listening").
			Str("addr", srv.Addr).
			Msg("control API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if initOnStart {
		r := ctrl.Init(ctx)
		if !r.OK {
			logger.Warn().Str("event", "serve.init_failed").Str("result", r.String()).Msg("startup init failed; waiting for /init")
		}
	}

	err := g.Wait()
	logger.Info().Str("event", "serve.stopped").Msg("shutting down")
	return err
}
