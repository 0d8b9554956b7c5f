package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/client"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/master"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const maxReviewTextLength = 1000

// handleBookingPhone телефон перед созданием записи
func (h *Handlers) handleBookingPhone(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	telegramID := user.TelegramID
	chatID := update.Message.Chat.ID

	if err := h.userService.SetPhone(ctx, user, update.Message.Text); err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			h.sendError(ctx, b, chatID, "❌ Не похоже на номер телефона. Пример: +7 999 123-45-67\n\nПопробуйте ещё раз или /cancel")
			return
		}
		h.sendFailure(ctx, b, chatID, "set phone", err)
		return
	}

	raw, ok := h.stateManager.GetData(telegramID, callbacktypes.DataBookingDraft)
	draft, draftOK := raw.(callbacktypes.BookingDraft)
	h.stateManager.ClearState(telegramID)
	if !ok || !draftOK {
		h.logger.Error("Missing booking draft in state", zap.Int64("telegram_id", telegramID))
		h.sendError(ctx, b, chatID, "❌ Данные записи не найдены. Начните заново: /book")
		return
	}

	appointment, err := client.CompleteBooking(ctx, h.deps, user, draft)
	if err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nВыберите другое время: /book")
			return
		}
		h.sendFailure(ctx, b, chatID, "book appointment", err)
		return
	}

	text, kb := common.BookedScreen(appointment, common.UserLanguage(user))
	h.sendMessage(ctx, b, chatID, text, kb)
}

// handlePhoneStep смена телефона через /phone
func (h *Handlers) handlePhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	if err := h.userService.SetPhone(ctx, user, update.Message.Text); err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			h.sendError(ctx, b, chatID, "❌ Не похоже на номер телефона. Пример: +7 999 123-45-67\n\nПопробуйте ещё раз или /cancel")
			return
		}
		h.sendFailure(ctx, b, chatID, "set phone", err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)
	h.sendMessage(ctx, b, chatID, "✅ Телефон сохранён: <b>"+user.Phone+"</b>", nil)
}

// handleReviewComment комментарий к поставленной оценке
func (h *Handlers) handleReviewComment(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	comment := strings.TrimSpace(update.Message.Text)
	if len([]rune(comment)) > maxReviewTextLength {
		h.sendError(ctx, b, chatID, "❌ Слишком длинный отзыв, сократите до 1000 символов.")
		return
	}

	appointmentID, rating, ok := client.PendingReview(h.stateManager, user.TelegramID)
	h.stateManager.ClearState(user.TelegramID)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Оценка не найдена. Оценить визит можно в /mybookings")
		return
	}

	if _, err := client.SubmitReview(ctx, h.deps, user, appointmentID, rating, comment); err != nil {
		h.sendFailure(ctx, b, chatID, "submit review", err)
		return
	}
	h.sendMessage(ctx, b, chatID, client.ThanksText(rating), nil)
}

// handleReviewReply ответ мастера на отзыв
func (h *Handlers) handleReviewReply(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireMaster(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(update.Message.From.ID)
		return
	}
	chatID := update.Message.Chat.ID

	text := strings.TrimSpace(update.Message.Text)
	if len([]rune(text)) > maxReviewTextLength {
		h.sendError(ctx, b, chatID, "❌ Слишком длинный ответ, сократите до 1000 символов.")
		return
	}

	reviewID, ok := master.PendingReply(h.stateManager, user.TelegramID)
	h.stateManager.ClearState(user.TelegramID)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Отзыв не найден. Откройте /reviews")
		return
	}

	if _, err := master.SubmitReply(ctx, h.deps, reviewID, text); err != nil {
		h.sendFailure(ctx, b, chatID, "reply review", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Ответ отправлен клиенту.", nil)
}
