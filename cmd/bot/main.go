package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/salon_bot/internal/api"
	"github.com/Freeeeeet/salon_bot/internal/app"
	"github.com/Freeeeeet/salon_bot/internal/cache"
	"github.com/Freeeeeet/salon_bot/internal/config"
	"github.com/Freeeeeet/salon_bot/internal/controller"
	"github.com/Freeeeeet/salon_bot/internal/controller/notify"
	"github.com/Freeeeeet/salon_bot/internal/repository"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Salon bot stopped with error", zap.Error(err))
	}
	logger.Info("Salon bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	logger.Info("Starting salon bot",
		zap.String("environment", cfg.Environment),
		zap.String("salon", cfg.File.Salon.Name),
		zap.Int("masters", len(cfg.MasterIDs)),
	)

	loc, err := cfg.File.Salon.Location()
	if err != nil {
		return err
	}
	defaults, err := cfg.File.Salon.Settings()
	if err != nil {
		return err
	}

	pool, err := app.ConnectDB(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		return multierr.Append(err, migrator.Close())
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	// Без REDIS_ADDR слоты считаются на каждый запрос
	var slotCache service.SlotCache
	if cfg.RedisAddr != "" {
		c, cacheErr := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}, logger)
		if cacheErr != nil {
			return cacheErr
		}
		defer func() { err = multierr.Append(err, c.Close()) }()
		slotCache = c
		logger.Info("Slot cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	users := repository.NewUserRepository(pool)
	services := repository.NewServiceRepository(pool)
	appointments := repository.NewAppointmentRepository(pool, loc)
	reviews := repository.NewReviewRepository(pool)
	prompts := repository.NewPromptRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	userService := service.NewUserService(users, cfg.MasterIDs, logger)
	settingsService := service.NewSettingsService(settingsRepo, slotCache, defaults, loc, logger)
	catalogService := service.NewCatalogService(services, slotCache, defaults.Currency, logger)
	availabilityService := service.NewAvailabilityService(settingsService, appointments, services, slotCache, logger)
	bookingService := service.NewBookingService(settingsService, appointments, services, users, slotCache, logger)
	reviewService := service.NewReviewService(appointments, services, reviews, prompts, users, service.ReviewConfig{
		PromptDelay:   cfg.File.Reviews.PromptDelay,
		PromptTimeout: cfg.File.Reviews.PromptTimeout,
	}, logger)

	if _, err := settingsService.Load(ctx); err != nil {
		return err
	}

	botInstance, err := bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
		logger.Warn("Telegram API error", zap.Error(err))
	}))
	if err != nil {
		return err
	}

	notifier := notify.NewNotifier(botInstance, userService, logger)

	botController := controller.NewBotController(botInstance, controller.Services{
		Users:        userService,
		Bookings:     bookingService,
		Availability: availabilityService,
		Settings:     settingsService,
		Reviews:      reviewService,
		Catalog:      catalogService,
	}, notifier, cfg.WebAppURL, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot commands menu is not set", zap.Error(err))
	}

	scheduler := app.NewScheduler(reviewService, notifier, cfg.File.Reviews.ScanInterval, logger)
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return botController.Start(gctx)
	})
	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})

	if cfg.HTTPAddr != "" {
		if cfg.Environment == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		server := api.NewServer(api.Options{
			Addr:              cfg.HTTPAddr,
			BotToken:          cfg.TelegramToken,
			JWTSecret:         cfg.JWTSecret,
			TokenTTL:          cfg.File.API.TokenTTL,
			CORSOrigins:       cfg.File.API.CORSOrigins,
			RateLimitRequests: cfg.File.API.RateLimitRequests,
			RateLimitWindow:   cfg.File.API.RateLimitWindow,
		}, api.Services{
			Users:        userService,
			Catalog:      catalogService,
			Availability: availabilityService,
			Bookings:     bookingService,
			Reviews:      reviewService,
			Settings:     settingsService,
			Notifier:     notifier,
		}, logger)

		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	logger.Info("✅ Salon bot is running")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
