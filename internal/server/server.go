// Package server runs the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/logger"
)

// Start listens on 0.0.0.0:PORT until SIGINT/SIGTERM or ctx is done, then
// drains in-flight requests for up to SHUTDOWN_TIMEOUT.
func Start(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("0.0.0.0", config.AppPort()),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout(),
		WriteTimeout: config.WriteTimeout(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("catalog listening", "addr", srv.Addr, "env", config.AppEnv())
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
