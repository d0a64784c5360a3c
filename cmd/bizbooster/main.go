package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/ai"
	"bizbooster/internal/bot"
	"bizbooster/internal/bot/handlers"
	"bizbooster/internal/config"
	"bizbooster/internal/database"
	"bizbooster/internal/lib/sl"
	"bizbooster/internal/notify"
	"bizbooster/internal/repository"
	"bizbooster/internal/scheduler"
	"bizbooster/internal/service"
	"bizbooster/internal/subscription"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A store that cannot be opened is fatal; the app never runs on an
	// in-memory fallback.
	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database opened", slog.String("path", cfg.DatabasePath))

	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Error("failed to create telegram api", sl.Err(err))
		os.Exit(1)
	}

	clientRepo := repository.NewClientRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	gate := subscription.NewGate(settingsRepo)
	notifier := notify.NewTelegramNotifier(api, cfg.TelegramChatID)

	sched := scheduler.New(notificationRepo, clientRepo, settingsRepo, notifier, log)
	sched.SetCheckInterval(cfg.CheckInterval)

	clientService := service.New(clientRepo, historyRepo, settingsRepo, gate, sched, log)

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Info("ai drafting enabled", slog.String("model", cfg.AIModel))
	} else {
		log.Info("ai drafting disabled, templates are used as-is")
	}

	// Reconcile pending notifications with stored reminder dates before the
	// polling loop starts.
	if err := sched.Refresh(ctx); err != nil {
		log.Error("failed to refresh reminders", sl.Err(err))
	}
	go sched.Start(ctx)

	h := handlers.New(api, clientService, settingsRepo, clientRepo, aiClient, log)
	b := bot.New(api, h, cfg.TelegramChatID, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return log.With(slog.String("env", env))
}
