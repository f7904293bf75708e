package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neurolux_bot/internal/app"
	"neurolux_bot/internal/infra/config"
	idb "neurolux_bot/internal/infra/database"
	"neurolux_bot/internal/infra/logger"
	"neurolux_bot/internal/infra/scheduler"
	"neurolux_bot/internal/infra/session"
	itelegram "neurolux_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Log.WithField("component", "main")
	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Operator ID: %d",
		cfg.LogLevel, cfg.Environment, cfg.AdminChatID)

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	if err := idb.RunMigrations(cfg.DatabaseURL); err != nil {
		mainLogger.Fatalf("FATAL: Could not apply database migrations: %v", err)
	}

	// Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	attemptRepo := idb.NewPostgresAttemptRepository(db)
	statsRepo := idb.NewPostgresStatsRepository(db)
	subscriptionRepo := idb.NewPostgresSubscriptionRepository(db)
	mainLogger.Info("Repositories initialized.")

	// Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Log.WithError(err).WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	tgClient := itelegram.NewTelebotAdapter(bot)

	// Services
	sessions := session.NewMemoryManager()
	dialogService := app.NewDialogService(
		userRepo, attemptRepo, statsRepo, subscriptionRepo, sessions, tgClient,
		logger.Log.WithField("component", "dialog_service"),
		cfg.AdminChatID, cfg.ManagerUsername,
	)
	adminService := app.NewAdminService(userRepo, attemptRepo, statsRepo, tgClient, cfg.AdminChatID)
	reminderService := app.NewReminderService(attemptRepo, tgClient,
		logger.Log.WithField("component", "reminder_service"))
	mainLogger.Info("Services initialized.")

	// Handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlerLogger := logger.Log.WithField("component", "telegram")
	itelegram.RegisterUserHandlers(ctx, bot, dialogService, adminService, cfg.AdminChatID, handlerLogger)
	itelegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminChatID, handlerLogger)
	mainLogger.Info("Bot handlers registered.")

	// Reminder scheduler
	reminderScheduler := scheduler.NewReminderScheduler(reminderService,
		logger.Log.WithField("component", "scheduler"), cfg.CronSpecReminder)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	mainLogger.Info("Application setup complete. Bot is starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	cancel()
	reminderScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
