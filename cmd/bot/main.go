package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intake-backend/internal/bootstrap"
	"intake-backend/internal/shared/config"
	"intake-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	addr := server.Addr(cfg.Port)
	srv := &http.Server{Addr: addr, Handler: app.Router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting webhook server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	webhookURL := cfg.WebhookBaseURL + app.WebhookPath
	if err := app.Telegram.SetWebhook(ctx, webhookURL); err != nil {
		log.Fatalf("set webhook: %v", err)
	}
	log.Printf("webhook registered at %s", app.WebhookPath)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight work", cfg.ShutdownTimeout)

	// Deregister first so no new updates arrive while draining.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Telegram.DeleteWebhook(cleanupCtx); err != nil {
		log.Printf("delete webhook: %v", err)
	}

	if !app.Pool.Drain(cfg.ShutdownTimeout) {
		log.Printf("shutdown timeout reached; exiting with in-flight appends")
	}

	if err := srv.Shutdown(cleanupCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
