// Command liveroom-demo serves the alerts example application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/liveroom-dev/liveroom"
	"github.com/liveroom-dev/liveroom/examples/alerts"
	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/middleware"
	"github.com/liveroom-dev/liveroom/pkg/room"
	"github.com/liveroom-dev/liveroom/pkg/server"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "liveroom-demo",
		Short:   "Live alerts demo server",
		Version: version,
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	var (
		addr        string
		idleTimeout time.Duration
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alerts application",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			store := alerts.NewStore()
			factory := func(roomID string) (live.Component, error) {
				return alerts.NewAlertList(roomID, store), nil
			}

			app := liveroom.New(factory,
				liveroom.WithLogger(logger),
				liveroom.WithRoomConfig(room.DefaultConfig().WithIdleTimeout(idleTimeout)),
				liveroom.WithServerConfig(server.DefaultConfig().WithAddr(addr)),
				liveroom.WithMiddleware(
					middleware.Logging(logger),
					middleware.Trace(),
				),
			)

			r := app.Server().Router()
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, "/r/"+room.NewID(), http.StatusFound)
			})
			r.Get("/r/{roomID}", servePage)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- app.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&idleTimeout, "idle-timeout", room.DefaultIdleTimeout, "room idle grace period")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func servePage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageHTML, roomID, roomID)
}
