package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/kindness-map/internal/api"
	"github.com/sells-group/kindness-map/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the map API server",
	Long:  "Serves the spots and session API for the browser map widget, plus the widget's static files when server.static_dir is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}

		locator, closeLocator, err := newIPLocator(cfg)
		if err != nil {
			return err
		}
		defer closeLocator()

		sessions := session.NewRegistry(cfg.Session.MaxEntries, cfg.Session.TTL, a.newController)
		handler := api.NewServer(a.pipeline, a.resolver, sessions, api.Options{
			DefaultZoom:       cfg.Map.Zoom,
			Cluster:           cfg.Render.Cluster,
			ClusterZoomOffset: cfg.Render.ClusterZoomOffset,
			StaticDir:         cfg.Server.StaticDir,
			CORSOrigins:       cfg.Server.CORSOrigins,
			IPLocator:         locator,
		}).Router()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			sessions.Run(gctx, sweepInterval(cfg.Session.TTL))
			return nil
		})
		g.Go(func() error {
			return startServer(gctx, handler, resolvePort(servePort, cfg.Server.Port))
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolvePort prefers the flag value over config.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	if iv := ttl / 4; iv > time.Second {
		return iv
	}
	return time.Second
}

// startServer runs the HTTP server until ctx is done, then shuts it down.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- eris.Wrap(err, "server listen")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return <-errCh
}
