// Package logger provides the process-wide structured logger built on log/slog.
//
// Handlers should log through WithCtx so every line carries the request id
// injected by the request-logging middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Warn("product not found", "id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/bazarromero/catalog/config"
)

var (
	L *slog.Logger

	mu   sync.Mutex
	base slog.Handler
	sink *MongoHandler
)

func init() {
	base = newHandler(os.Stdout, config.IsProduction())
	L = slog.New(base)
	slog.SetDefault(L)
}

func newHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// AttachMongo ships every record to MongoDB in addition to stdout.
// Call Detach on shutdown to flush the pending batch.
func AttachMongo(uri, db, collection string) error {
	h, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	sink = h
	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)
	return nil
}

// Detach flushes and closes the MongoDB sink, if any.
func Detach() {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		return
	}
	sink.Close()
	sink = nil
	L = slog.New(base)
	slog.SetDefault(L)
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
// Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
