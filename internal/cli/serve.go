package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sptracker/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	if a.cfg.DigestEnabled {
		s, err := a.digestScheduler()
		if err != nil {
			return err
		}
		if err := s.Start(a.cfg.DigestAt); err != nil {
			return err
		}
		defer s.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	h := handler.New(a.lookup, a.ledger, a.progress, handler.Options{
		DefaultTab: a.cfg.DefaultTab,
		Location:   a.cfg.Location,
		Logger:     a.logger,
	})
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler.NewRouter(h, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", "error", err)
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
