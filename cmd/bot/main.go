package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/ai"
	"github.com/teheiw197/classbell/internal/app"
	"github.com/teheiw197/classbell/internal/config"
	"github.com/teheiw197/classbell/internal/controller"
	"github.com/teheiw197/classbell/internal/controller/render"
	"github.com/teheiw197/classbell/internal/service"
	"github.com/teheiw197/classbell/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer st.Close()

	var extractor service.CourseExtractor
	if cfg.AIAPIKey != "" {
		completer, err := ai.NewCompleter(ai.Config{
			Provider: cfg.AIProvider,
			APIKey:   cfg.AIAPIKey,
			BaseURL:  cfg.AIAPIBase,
			Model:    cfg.AIModel,
		})
		if err != nil {
			logger.Fatal("Failed to build completion client", zap.Error(err))
		}
		extractor = ai.NewExtractor(completer, cfg.AIRetries, logger)
	} else {
		logger.Warn("AI_API_KEY not set, AI-assisted parsing disabled")
	}

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	renderer, err := render.NewTimetable(cfg.FontPath)
	if err != nil {
		logger.Fatal("Failed to load timetable font", zap.Error(err))
	}

	scheduleService := service.NewScheduleService(st, extractor, logger)
	reminderService := service.NewReminderService(st, controller.NewTelegramDispatcher(b), service.Settings{
		Lead:           cfg.ReminderLead,
		PreviewTime:    cfg.DailyPreviewTime,
		EnableReminder: cfg.EnableReminder,
		EnableWeekend:  cfg.EnableWeekendReminder,
		EnableEvening:  cfg.EnableEveningReminder,
		EnablePreview:  cfg.EnableDailyPreview,
		TermStart:      cfg.TermStart,
	}, logger)

	botController := controller.NewBotController(b, scheduleService, reminderService, renderer, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	scheduler := app.NewScheduler(reminderService, st, cfg.TickInterval, logger)
	scheduler.Start(ctx)

	logger.Info("Starting class reminder bot",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageDriver))

	// Blocks until the context is cancelled by a signal.
	botController.Start(ctx)

	scheduler.Stop(context.Background())
	logger.Info("Shutdown complete")
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.StorageDriver == "file" {
		return store.NewFileStore(cfg.DataDir, logger)
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return nil, err
	}

	return store.NewPostgresStore(pool, logger), nil
}
