// Command roam-authd serves the mock authentication backend over HTTP so
// the roam client can be pointed at it with ROAM_API_URL.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/naveenspark/roam/internal/authmock"
	"github.com/naveenspark/roam/internal/config"
	"github.com/naveenspark/roam/internal/observability"
)

const serviceName = "roam-authd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "-"
	}
	instruments, shutdown, err := observability.Init(ctx, observability.Options{
		ServiceName: serviceName,
		Level:       cfg.LogLevel,
		LogFile:     logFile,
		TraceFile:   cfg.TraceFile,
	})
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	gin.SetMode(gin.ReleaseMode)
	router := authmock.NewRouter(newAuthenticator(cfg, logger),
		otelgin.Middleware(serviceName, otelgin.WithTracerProvider(instruments.TracerProvider)))

	srv := &http.Server{
		Addr:              cfg.AuthdAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	logger.Info("roam-authd listening", slog.String("addr", cfg.AuthdAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("roam-authd exited", slog.String("addr", cfg.AuthdAddr), slog.String("error", err.Error()))
	}
}

func newAuthenticator(cfg config.Config, logger *slog.Logger) *authmock.Authenticator {
	opts := []authmock.Option{authmock.WithDelay(cfg.MockDelay)}
	if cfg.AuthdJWTSecret != "" {
		opts = append(opts, authmock.WithJWT([]byte(cfg.AuthdJWTSecret), cfg.AuthdJWTTTL))
		logger.Info("issuing JWT access tokens", slog.Duration("ttl", cfg.AuthdJWTTTL))
	} else {
		logger.Info("issuing fixed mock token", slog.String("token", authmock.MockToken))
	}
	return authmock.New(opts...)
}
