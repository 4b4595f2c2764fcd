package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/voicectl/internal/app"
)

// NewServeCommand creates the serve command
func NewServeCommand(container *app.Container) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port < 0 || port > 65535 {
				return fmt.Errorf("--port must be between 1 and 65535, got %d", port)
			}
			if port > 0 {
				container.Config.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, container)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config or PORT)")
	return cmd
}

// serve runs the API until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, container *app.Container) error {
	container.Start(ctx)
	srv := container.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		container.Logger.Info("http server listening", map[string]interface{}{
			"addr":     srv.Addr,
			"platform": string(container.Platform),
			"storage":  container.History.StoreName(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownGracePeriod)
		defer cancel()
		container.Logger.Info("http server shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
