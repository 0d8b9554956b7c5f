package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	// Регистрируем пользователя
	user, err := h.userService.RegisterUser(ctx, service.TelegramProfile{
		TelegramID:   from.ID,
		Username:     from.Username,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	})
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}
	h.stateManager.ClearState(from.ID)

	salonName := "салон"
	if settings, err := h.settingsService.Get(ctx); err == nil && settings.Name != "" {
		salonName = settings.Name
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для записи в «%s». Здесь можно выбрать услугу и удобное время, "+
			"посмотреть свои записи и оставить отзыв о визите.\n\n%s",
		html.EscapeString(user.DisplayName()),
		html.EscapeString(salonName),
		common.MainMenuText(user),
	)

	kb := keyboard.NewBuilder()
	if h.webAppURL != "" {
		kb.Row(keyboard.WebAppButton("📱 Открыть приложение", h.webAppURL))
	}
	kb.Row(
		keyboard.Button("💇 Записаться", common.BookStart),
		keyboard.Button("📅 Мои записи", common.MyBookings),
	)
	h.sendMessage(ctx, b, chatID, welcomeText, kb.Build())

	h.promptReview(ctx, b, chatID, user)
}

// promptReview показывает запрос отзыва, если клиенту есть что оценить
func (h *Handlers) promptReview(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	if user.IsMaster() {
		return
	}

	appointment, err := h.reviewService.NextPrompt(ctx, user)
	if err != nil {
		h.logger.Warn("Failed to check review prompt", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if appointment == nil {
		return
	}

	if err := h.reviewService.MarkPrompted(ctx, user, appointment.ID); err != nil {
		h.logger.Warn("Failed to mark review prompt", zap.Int64("appointment_id", appointment.ID), zap.Error(err))
		return
	}

	text, kb := common.ReviewPromptScreen(appointment, common.UserLanguage(user), false)
	h.sendMessage(ctx, b, chatID, text, kb)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user, err := h.userService.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Warn("Failed to get user for help", zap.Error(err))
	}

	helpText := "📚 <b>Справка</b>\n\n" +
		"Запись: /book → услуга → день → время → подтверждение.\n" +
		"Отменить запись можно в /mybookings.\n" +
		"Прервать любой диалог - /cancel.\n\n" +
		common.MainMenuText(user)

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == callbacktypes.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	// Очищаем состояние
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !DialogMatch(update) || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("HandleTextMessage called",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	// Обрабатываем в зависимости от состояния
	switch currentState {
	case callbacktypes.StateNone:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Не понял сообщение. Список команд - /help", nil)
	case callbacktypes.StateBookingPhone:
		h.handleBookingPhone(ctx, b, update)
	case callbacktypes.StateEnteringPhone:
		h.handlePhoneStep(ctx, b, update)
	case callbacktypes.StateReviewComment:
		h.handleReviewComment(ctx, b, update)
	case callbacktypes.StateReviewReply:
		h.handleReviewReply(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}
