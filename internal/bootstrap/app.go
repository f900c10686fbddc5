// Package bootstrap wires shared dependencies into a runnable application.
package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/intake"
	"intake-backend/internal/queue"
	"intake-backend/internal/sheets"
	"intake-backend/internal/shared/config"
	"intake-backend/internal/shared/server"
	"intake-backend/internal/telegram"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	Telegram    *telegram.Client
	Sheets      sheets.Appender
	Pool        *queue.Pool
	Engine      *intake.Engine
	Handler     *intake.Handler
	WebhookPath string
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tg, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	store, err := sheets.NewClient(ctx, cfg.GoogleCredentialsJSON, cfg.SheetID, cfg.SheetName)
	if err != nil {
		return nil, err
	}

	pool := queue.NewPool(cfg.AppendWorkers, cfg.AppendQueueSize)

	engine := intake.NewEngine(tg, store, pool, intake.Options{
		MediaIdleWindow: cfg.MediaIdleWindow,
		Policy: intake.MediaPolicy{
			Enabled:  cfg.RequireMediaOnFailure,
			Keywords: cfg.FailureKeywords,
		},
		AdminChatID: cfg.AdminChatID,
	})

	handler := intake.NewHandler(engine)
	webhookPath := telegram.WebhookPath(cfg.BotToken)

	return &App{
		Config:      cfg,
		Router:      server.NewRouter(handler, webhookPath),
		Telegram:    tg,
		Sheets:      store,
		Pool:        pool,
		Engine:      engine,
		Handler:     handler,
		WebhookPath: webhookPath,
	}, nil
}
