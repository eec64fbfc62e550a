package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"notare/internal/chat"
	"notare/internal/cli"
	"notare/internal/core"
	apphttp "notare/internal/http"
	"notare/internal/log"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	logger.Info("Starting notare", "backend", cfg.DataBackend)

	ctx := context.Background()
	store := cli.OpenBackend(ctx, logger, cfg)
	journal := cli.NewJournalService(cfg, logger, store.Store, cli.ConnectAMQP(logger, cfg))

	chatLogger := logger.WithComponent(log.ComponentChat)
	hub := chat.NewHub(chat.Config{
		Delay:   cfg.ChatReplyDelay,
		Replier: chat.NewRandomReplier(nil),
		Now:     journal.Now,
		OnReply: func(msg core.ChatMessage) {
			chatLogger.Debug("Chat reply sent", "message_id", msg.ID)
		},
	}, store.ChatHistory, cfg.ChatIdleTimeout)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Journal:            journal,
		Chat:               hub,
		Logger:             logger,
		Ping:               store.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CleanupInterval:    time.Minute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		hub.Close()
		if err := journal.Close(); err != nil {
			logger.Error("Failed to close journal", log.FieldError, err)
		}
	})

	logger.Info("Listening", "port", cfg.Port, "timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
