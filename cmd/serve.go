package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/jobs-observatory/internal/api"
	"github.com/JakeFAU/jobs-observatory/internal/app"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP data API",
		Long: `Serves the JSON collections, the single-listing lookup, and the CSV
downloads. Listens on server.port (or PORT) and drains in-flight requests on
SIGINT or SIGTERM.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", appInstance.Config().Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serve(ctx, appInstance, lis)
}

// serve runs the HTTP server on lis until ctx is cancelled, then shuts it down
// within server.shutdown_timeout.
func serve(ctx context.Context, appInstance *app.App, lis net.Listener) error {
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	apiServer := api.NewServer(
		appInstance.Service(),
		appInstance.Pinger(),
		api.Options{
			RequestTimeout: cfg.Server.RequestTimeout,
			ExposeErrors:   cfg.Server.ExposeErrors,
			HeaderMode:     cfg.HeaderMode(),
		},
		logger.Named("api"),
	)
	srv := &http.Server{
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server started", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("shutdown complete")
		return nil
	})
	return g.Wait()
}
