package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spendsync/internal/notify"
)

// newWatchCmd runs the client as a daemon: it keeps the caches warm by
// consuming the AMQP change feed and serves Prometheus metrics.
func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run as a daemon, refreshing caches from the change feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(ctx))

			if _, err := requireSession(app); err != nil {
				return err
			}
			if app.Config.AMQPURL == "" {
				return fmt.Errorf("watch requires an AMQP URL, set amqp_url or AMQP_URL")
			}

			client, err := notify.NewClient(app.Config.AMQPURL, app.Config.AMQPExchange, app.Config.AMQPQueue)
			if err != nil {
				return fmt.Errorf("connect change feed: %w", err)
			}
			defer client.Close()

			listener := notify.NewListener(client, app.Dispatcher, app.Store)

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				err := listener.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})

			if addr := app.Config.MetricsAddr; addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
				srv := &http.Server{
					Addr:         addr,
					Handler:      mux,
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 10 * time.Second,
				}

				g.Go(func() error {
					slog.InfoContext(gctx, "Metrics server listening", "addr", addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			slog.InfoContext(ctx, "Watching for changes")
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("Watch stopped")
			return nil
		},
	}
}
