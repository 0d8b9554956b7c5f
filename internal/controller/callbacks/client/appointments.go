package client

import (
	"context"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// AppointmentsScreen экран /mybookings для пользователя
func AppointmentsScreen(ctx context.Context, h *callbacktypes.Handler, user *model.User) (string, *models.InlineKeyboardMarkup, error) {
	list, err := h.BookingService.ClientAppointments(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	reviewable, err := h.ReviewService.Reviewable(ctx, user)
	if err != nil {
		// без кнопок оценки список всё равно полезен
		h.Logger.Warn("Failed to load reviewable visits", zap.Int64("client_id", user.ID), zap.Error(err))
		reviewable = nil
	}

	text, kb := common.ClientAppointmentsScreen(list, reviewable, common.UserLanguage(user))
	return text, kb, nil
}

// HandleMyBookings список записей клиента
func HandleMyBookings(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		text, kb, err := AppointmentsScreen(ctx, h, hc.User)
		if err != nil {
			common.HandleError(hc, err, "list client appointments")
			return
		}
		_ = hc.EditMessage(text, kb)
		hc.Answer("")
	})
}

// ownAppointment запись клиента; чужая - ErrNotOwner
func ownAppointment(hc *common.HandlerContext, id int64) (*model.Appointment, error) {
	a, err := hc.Handler.BookingService.Get(hc.Ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClientID != hc.User.ID {
		return nil, service.ErrNotOwner
	}
	return a, nil
}

// HandleCancelBooking запрашивает подтверждение отмены
func HandleCancelBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := ownAppointment(hc, id)
			if err != nil {
				common.HandleError(hc, err, "get appointment")
				return
			}
			if !a.IsActive() {
				common.HandleError(hc, service.ErrInvalidTransition, "cancel appointment")
				return
			}

			text, kb := common.CancelConfirmScreen(a, hc.Lang())
			_ = hc.EditMessage(text, kb)
			hc.Answer("")
		})
	})
}

// HandleConfirmCancel отменяет запись клиента
func HandleConfirmCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := h.BookingService.Cancel(ctx, id, hc.User)
			if err != nil {
				common.HandleError(hc, err, "cancel appointment")
				return
			}
			if h.Notifier != nil {
				h.Notifier.AppointmentCancelled(ctx, a, false)
			}

			text, kb, err := AppointmentsScreen(ctx, h, hc.User)
			if err != nil {
				common.HandleError(hc, err, "list client appointments")
				return
			}
			_ = hc.EditMessage(text, kb)
			common.LogAndAnswer(hc, "Appointment cancelled by client", "✅ Запись отменена")
		})
	})
}
