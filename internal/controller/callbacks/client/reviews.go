package client

import (
	"context"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Review Prompt Flow
// ========================

// HandleReviewStart клиент сам открыл оценку визита из истории
func HandleReviewStart(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := ownAppointment(hc, id)
			if err != nil {
				common.HandleError(hc, err, "get appointment")
				return
			}
			if a.Status != model.AppointmentStatusCompleted {
				common.HandleError(hc, engagement.ErrNotEligible, "start review")
				return
			}

			text, kb := common.ReviewPromptScreen(a, hc.Lang(), true)
			_ = hc.EditMessage(text, kb)
			hc.Answer("")
		})
	})
}

// HandleRate оценка выбрана: rate:appointment_id:rating. Дальше ждём комментарий.
func HandleRate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		appointmentID, rating, err := common.ParseRateArgs(callback.Data)
		if err != nil {
			common.HandleError(hc, err, "parse rating")
			return
		}
		if err := engagement.ValidateRating(rating); err != nil {
			common.HandleError(hc, err, "validate rating")
			return
		}

		hc.SetState(callbacktypes.StateReviewComment)
		hc.SetData(callbacktypes.DataAppointmentID, appointmentID)
		hc.SetData(callbacktypes.DataRating, rating)

		text, kb := common.CommentScreen(rating)
		_ = hc.EditMessage(text, kb)
		hc.Answer("")
	})
}

// HandleSkipComment отправляет отзыв без комментария
func HandleSkipComment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		appointmentID, rating, ok := PendingReview(h.StateManager, hc.TelegramID)
		if !ok {
			hc.ClearState()
			_ = hc.EditMessage("⏰ Время на отзыв истекло. Оценить визит можно в /mybookings.", nil)
			hc.Answer("")
			return
		}

		_, err := SubmitReview(ctx, h, hc.User, appointmentID, rating, "")
		hc.ClearState()
		if err != nil {
			common.HandleError(hc, err, "submit review")
			return
		}

		_ = hc.EditMessage(ThanksText(rating), nil)
		common.LogAndAnswer(hc, "Review submitted without comment", "🙏 Спасибо!")
	})
}

// PendingReview оценка, ожидающая комментария
func PendingReview(sm callbacktypes.StateManager, telegramID int64) (int64, int, bool) {
	if sm.GetState(telegramID) != callbacktypes.StateReviewComment {
		return 0, 0, false
	}
	rawID, ok1 := sm.GetData(telegramID, callbacktypes.DataAppointmentID)
	rawRating, ok2 := sm.GetData(telegramID, callbacktypes.DataRating)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	appointmentID, ok1 := rawID.(int64)
	rating, ok2 := rawRating.(int)
	return appointmentID, rating, ok1 && ok2
}

// SubmitReview сохраняет отзыв и уведомляет мастеров
func SubmitReview(ctx context.Context, h *callbacktypes.Handler, user *model.User, appointmentID int64, rating int, comment string) (*model.Review, error) {
	review, err := h.ReviewService.Submit(ctx, user, appointmentID, rating, comment)
	if err != nil {
		return nil, err
	}

	if h.Notifier != nil {
		a, err := h.BookingService.Get(ctx, appointmentID)
		if err != nil {
			h.Logger.Warn("Failed to load reviewed appointment", zap.Int64("appointment_id", appointmentID), zap.Error(err))
		}
		h.Notifier.ReviewSubmitted(ctx, review, a)
	}
	return review, nil
}

// ThanksText ответ после отзыва
func ThanksText(rating int) string {
	if rating <= 3 {
		return "🙏 Спасибо за честный отзыв! Мастер обязательно его прочитает."
	}
	return "🙏 Спасибо за отзыв! Будем рады видеть вас снова. Записаться - /book"
}

// HandleReviewLater клиент откладывает отзыв
func HandleReviewLater(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			showHint, err := h.ReviewService.Defer(ctx, hc.User, id)
			if err != nil {
				common.HandleError(hc, err, "defer review")
				return
			}

			text := "⏰ Хорошо, спросим в другой раз."
			if showHint {
				text += "\n\n💡 Оценить визит можно в любой момент: /mybookings → «⭐ Оценить визит»."
			}
			_ = hc.EditMessage(text, nil)
			hc.Answer("")
		})
	})
}

// HandleReviewClose клиент отказывается от отзыва
func HandleReviewClose(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			if err := h.ReviewService.Dismiss(ctx, hc.User, id); err != nil {
				common.HandleError(hc, err, "dismiss review")
				return
			}
			_ = hc.EditMessage("👌 Хорошо, больше не спрашиваем об этом визите.", nil)
			hc.Answer("")
		})
	})
}
