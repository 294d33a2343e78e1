package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatrix/internal/adapters/http/api"
	"github.com/okian/skillmatrix/internal/adapters/http/swagger"
	"github.com/okian/skillmatrix/internal/app"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	sessionMetricsInterval = 5 * time.Second
	maxNotifications       = 50
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = os.Stderr.WriteString("skillmatrix: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep a session open and serve its status, charts and notifications over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if addr != "" {
				rt.cfg.Addr = addr
			}
			defer func() {
				if err := rt.session.Close(context.WithoutCancel(ctx)); err != nil {
					rt.log.Error(ctx, "session close failed", logger.Error(err))
				}
			}()

			warmUp(ctx, rt, opts)
			go startSessionMetricsUpdater(ctx, rt.session)
			return serve(ctx, rt, newStatusServer(rt.session, rt.cfg.Addr))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides addr")
	return cmd
}

// warmUp draws what the viewer would see on page load. Failures are
// logged; the server still starts.
func warmUp(ctx context.Context, rt *env, opts *rootOptions) {
	if opts.User > 0 || opts.Employee > 0 {
		if err := rt.session.Load(ctx); err != nil {
			rt.log.Warn(ctx, "profile not loaded", logger.Error(err))
		}
	}
	if opts.Role == string(model.RoleHR) || opts.Role == string(model.RoleAdmin) {
		if _, err := rt.session.LoadDashboard(ctx); err != nil {
			rt.log.Warn(ctx, "dashboard not loaded", logger.Error(err))
		}
	}
}

// newStatusServer builds the status HTTP server of s.
func newStatusServer(s *app.Session, addr string) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(api.Dependencies{
		Charts:           s.Charts(),
		Refresher:        s.Refresher(),
		Notifications:    s.Notifications(),
		Stats:            s,
		MaxNotifications: maxNotifications,
	}).Register(context.Background(), mux)
	swagger.Register(context.Background(), mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func serve(ctx context.Context, rt *env, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		rt.log.Info(ctx, "starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	rt.log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	rt.log.Info(ctx, "server stopped")
	return nil
}

// startSessionMetricsUpdater publishes session gauges until ctx ends.
func startSessionMetricsUpdater(ctx context.Context, s *app.Session) {
	ticker := time.NewTicker(sessionMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSessionMetrics(s)
		}
	}
}

func updateSessionMetrics(s interface{ GetStats() map[string]any }) {
	stats := s.GetStats()
	if n, ok := stats["refreshQueueLength"].(int); ok {
		metrics.UpdateRefreshQueueSize(n)
	}
	if n, ok := stats["pendingChanges"].(int); ok {
		metrics.UpdatePendingChanges(n)
	}
	if n, ok := stats["notificationsVisible"].(int); ok {
		metrics.UpdateNotificationsVisible(n)
	}
	if n, ok := stats["chartsLive"].(int); ok {
		metrics.UpdateChartsLive(n)
	}
}
