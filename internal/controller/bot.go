package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/handlers"
	"github.com/Freeeeeet/salon_bot/internal/controller/state"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sweepInterval как часто чистятся брошенные диалоги
const sweepInterval = 5 * time.Minute

// Services сервисы, которые нужны боту
type Services struct {
	Users        *service.UserService
	Bookings     *service.BookingService
	Availability *service.AvailabilityService
	Settings     *service.SettingsService
	Reviews      *service.ReviewService
	Catalog      *service.CatalogService
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	stateManager    *state.Manager
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	services Services,
	notifier callbacktypes.Notifier,
	webAppURL string,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager(state.DefaultDialogTTL)

	// Общие зависимости команд и callback handlers
	deps := &callbacktypes.Handler{
		UserService:         services.Users,
		BookingService:      services.Bookings,
		AvailabilityService: services.Availability,
		SettingsService:     services.Settings,
		ReviewService:       services.Reviews,
		CatalogService:      services.Catalog,
		Notifier:            notifier,
		StateManager:        stateManager,
		Logger:              logger,
	}

	return &BotController{
		bot:             botInstance,
		handlers:        handlers.NewHandlers(deps, webAppURL),
		callbackHandler: callbacks.NewHandler(deps),
		stateManager:    stateManager,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"/start":      c.handlers.HandleStart,
		"/help":       c.handlers.HandleHelp,
		"/cancel":     c.handlers.HandleCancel,
		"/book":       c.handlers.HandleBook,
		"/mybookings": c.handlers.HandleMyBookings,
		"/phone":      c.handlers.HandlePhone,
		"/hours":      c.handlers.HandleHours,

		// Команды мастера
		"/today":    c.handlers.HandleToday,
		"/week":     c.handlers.HandleWeek,
		"/reviews":  c.handlers.HandleReviews,
		"/services": c.handlers.HandleServices,
		"/checkin":  c.handlers.HandleCheckIn,
		"/sethours": c.handlers.HandleSetHours,
		"/closeday": c.handlers.HandleCloseDay,
		"/openday":  c.handlers.HandleOpenDay,
		"/clearday": c.handlers.HandleClearDay,
		"/policy":   c.handlers.HandlePolicy,
	}
	for name, handler := range commands {
		c.bot.RegisterHandlerMatchFunc(handlers.CommandMatch(name), handler)
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandlerMatchFunc(handlers.DialogMatch, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "book", Description: "💇 Записаться"},
		{Command: "mybookings", Description: "📅 Мои записи"},
		{Command: "hours", Description: "🕐 Часы работы"},
		{Command: "phone", Description: "📞 Изменить телефон"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "today", Description: "📋 Записи на сегодня (мастер)"},
		{Command: "week", Description: "🗓 Неделя (мастер)"},
		{Command: "reviews", Description: "⭐ Отзывы (мастер)"},
		{Command: "services", Description: "📝 Услуги (мастер)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	go c.sweepDialogs(ctx)
	c.bot.Start(ctx)
	return nil
}

// sweepDialogs периодически забывает брошенные диалоги
func (c *BotController) sweepDialogs(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := c.stateManager.Sweep(); removed > 0 {
				c.logger.Debug("Idle dialogs removed", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
