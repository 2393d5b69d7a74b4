package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"

	"shift_report_bot/internal/app"
	"shift_report_bot/internal/domain/workflow"
	"shift_report_bot/internal/infra/cache"
	"shift_report_bot/internal/infra/config"
	idb "shift_report_bot/internal/infra/database"
	"shift_report_bot/internal/infra/logger"
	"shift_report_bot/internal/infra/scheduler"
	"shift_report_bot/internal/infra/session"
	"shift_report_bot/internal/infra/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and the daily reminder scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
	}).Info("Configuration loaded.")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer db.Close()
	if err := idb.Migrate(ctx, db); err != nil {
		return err
	}
	mainLogger.Info("Database connection established successfully.")

	// Reference data
	referenceRepo := idb.NewPostgresReferenceRepository(db)
	references := cache.NewReferenceCache(referenceRepo, logger.Component("reference_cache"))
	if err := references.Reload(ctx); err != nil {
		return fmt.Errorf("could not load reference data: %w", err)
	}

	// Dialogue sessions
	var sessions workflow.SessionStore
	if len(cfg.RedisAddrs) > 0 {
		redisStore := session.NewRedisStore(session.RedisConfig{
			Addrs:     cfg.RedisAddrs,
			Namespace: cfg.RedisNamespace,
			TTL:       cfg.SessionTTL,
		}, logger.Component("session_store"))
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("could not reach redis: %w", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		mainLogger.Info("Sessions are kept in Redis.")
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		mainLogger.Warn("REDIS_ADDR is not set; sessions are kept in memory and lost on restart.")
	}

	engine, err := workflow.NewEngine(references, workflow.Definitions()...)
	if err != nil {
		return fmt.Errorf("invalid workflow definitions: %w", err)
	}

	// Initialize Telegram Bot
	botLogger := logger.Component("telebot")
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		// Updates are only queued on the poller goroutine; UserLanes runs
		// the handlers, in order per user and in parallel across users.
		Synchronous: true,
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Handler failed")
		},
	})
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}
	client := telegram.NewTelebotAdapter(bot)

	// Services
	dispatcher := app.NewDispatcher(client, cfg.AdminTelegramID, logger.Component("dispatcher"))
	conversations := app.NewConversationService(
		engine,
		sessions,
		references,
		dispatcher,
		client,
		idb.NewPostgresShiftSummaryRepository(db),
		cfg.Location(),
		logger.Component("conversation"),
	)
	adminService := app.NewAdminService(referenceRepo, references, cfg.AdminTelegramID)

	policy, err := app.ParseRetentionPolicy(cfg.BroadcastRetain)
	if err != nil {
		return err
	}
	broadcasts := app.NewBroadcastService(client, references, app.BroadcastConfig{
		Text:     cfg.BroadcastText,
		Hour:     cfg.BroadcastHour,
		Location: cfg.Location(),
		Policy:   policy,
	}, logger.Component("broadcast"))

	broadcastScheduler := scheduler.NewBroadcastScheduler(
		broadcasts,
		logger.Component("scheduler"),
		cfg.BroadcastCronSpec,
		cfg.Location(),
	)
	if err := broadcastScheduler.Start(); err != nil {
		return fmt.Errorf("could not start broadcast scheduler: %w", err)
	}

	// Register Handlers. The lane middleware must be installed first.
	handlerLogger := logger.Component("handlers")
	lanes := telegram.NewUserLanes(handlerLogger)
	bot.Use(lanes.Middleware(bot.OnError))
	telegram.RegisterBotCommands(bot, references, adminService, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, handlerLogger)
	telegram.RegisterWorkflowHandlers(ctx, bot, conversations, engine, references,
		telegram.NewAlbumCollector(cfg.AlbumWait), lanes, handlerLogger)

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")
	go bot.Start()

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")
	bot.Stop()
	lanes.Wait()
	broadcastScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
	return nil
}
