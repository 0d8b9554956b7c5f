package master

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DayScreen записи мастера на дату
func DayScreen(ctx context.Context, h *callbacktypes.Handler, date time.Time, lang string) (string, *models.InlineKeyboardMarkup, error) {
	list, err := h.BookingService.AppointmentsForDate(ctx, date)
	if err != nil {
		return "", nil, err
	}
	text, kb := common.MasterDayScreen(date, h.SettingsService.Today(), list, lang)
	return text, kb, nil
}

func showDay(hc *common.HandlerContext, date time.Time) {
	text, kb, err := DayScreen(hc.Ctx, hc.Handler, date, hc.Lang())
	if err != nil {
		common.HandleError(hc, err, "list day appointments")
		return
	}
	_ = hc.EditMessage(text, kb)
}

// HandleDay день расписания: day:YYYY-MM-DD
func HandleDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, err := h.SettingsService.ParseDate(strings.TrimPrefix(callback.Data, common.MasterDay))
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse day")
			return
		}
		showDay(hc, date)
		hc.Answer("")
	})
}

// HandleApptConfirm мастер подтверждает запись
func HandleApptConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := h.BookingService.Confirm(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "confirm appointment")
				return
			}
			if h.Notifier != nil {
				h.Notifier.AppointmentConfirmed(ctx, a)
			}
			showDay(hc, a.Date)
			common.LogAndAnswer(hc, "Appointment confirmed by master", "✅ Подтверждено")
		})
	})
}

// HandleApptComplete мастер отмечает визит состоявшимся
func HandleApptComplete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := h.BookingService.Complete(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "complete appointment")
				return
			}
			showDay(hc, a.Date)
			common.LogAndAnswer(hc, "Appointment completed by master", "✔️ Визит отмечен")
		})
	})
}

// HandleApptCancel запрашивает подтверждение отмены
func HandleApptCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := h.BookingService.Get(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "get appointment")
				return
			}
			text, kb := common.MasterCancelConfirmScreen(a, hc.Lang())
			_ = hc.EditMessage(text, kb)
			hc.Answer("")
		})
	})
}

// HandleApptCancelConfirm отменяет запись клиента
func HandleApptCancelConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			a, err := h.BookingService.Cancel(ctx, id, hc.User)
			if err != nil {
				common.HandleError(hc, err, "cancel appointment")
				return
			}
			if h.Notifier != nil {
				h.Notifier.AppointmentCancelled(ctx, a, true)
			}
			showDay(hc, a.Date)
			common.LogAndAnswer(hc, "Appointment cancelled by master", "❌ Запись отменена")
		})
	})
}
