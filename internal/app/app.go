package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/medwave/review-backend/internal/adapter/nats"
	"github.com/medwave/review-backend/internal/adapter/postgres"
	"github.com/medwave/review-backend/internal/adapter/postgres/analytics"
	"github.com/medwave/review-backend/internal/adapter/postgres/audit"
	"github.com/medwave/review-backend/internal/adapter/postgres/item"
	"github.com/medwave/review-backend/internal/adapter/postgres/review"
	"github.com/medwave/review-backend/internal/adapter/postgres/topic"
	"github.com/medwave/review-backend/internal/config"
	"github.com/medwave/review-backend/internal/service/workflow"
	"github.com/medwave/review-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// database pool, repositories, the workflow service, and the optional
// NATS notifier, then serves HTTP until the context is cancelled or a
// termination signal arrives.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc := workflow.NewService(
		logger,
		item.New(pool),
		review.New(pool),
		audit.New(pool),
		topic.New(pool),
		analytics.New(pool),
		postgres.NewTxManager(pool),
		cfg.Workflow,
	)

	var notifier *nats.Notifier
	if cfg.NATS.URL != "" {
		notifier, err = nats.NewNotifier(logger, cfg.NATS)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer notifier.Close()
		svc.SetNotifier(notifier)
	} else {
		logger.Info("notifications disabled, no nats url configured")
	}

	server := newHTTPServer(cfg.Server, pool, notifier)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped cleanly")
	return nil
}

func newHTTPServer(cfg config.ServerConfig, pool dbPinger, notifier *nats.Notifier) *http.Server {
	health := rest.NewHealthHandler(pool, brokerOrNil(notifier), BuildVersion())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

// brokerOrNil converts a possibly-nil *nats.Notifier into the handler's
// interface without producing a non-nil interface around a nil pointer.
func brokerOrNil(n *nats.Notifier) interface{ Connected() bool } {
	if n == nil {
		return nil
	}
	return n
}
