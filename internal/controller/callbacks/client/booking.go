package client

import (
	"context"
	"errors"
	"strconv"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Booking Flow
// ========================
// услуга -> день -> время -> подтверждение -> (телефон) -> запись

// HandleBookStart показывает список услуг
func HandleBookStart(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()

		services, err := h.CatalogService.List(ctx, true)
		if err != nil {
			common.HandleError(hc, err, "list services")
			return
		}

		text, kb := common.ServicesScreen(services, hc.Lang())
		_ = hc.EditMessage(text, kb)
		hc.Answer("")
	})
}

// HandleBookService открывает календарь выбранной услуги
func HandleBookService(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(serviceID int64) {
			showDates(hc, serviceID, 0)
		})
	})
}

// HandleBookDatesPage листает календарь: book_dates:service_id:page
func HandleBookDatesPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.BookDatesPage, 2)
		if err != nil {
			common.HandleError(hc, err, "parse dates page")
			return
		}
		serviceID, err1 := strconv.ParseInt(args[0], 10, 64)
		page, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse dates page")
			return
		}
		showDates(hc, serviceID, page)
	})
}

func showDates(hc *common.HandlerContext, serviceID int64, page int) {
	h := hc.Handler

	svc, err := h.CatalogService.Get(hc.Ctx, serviceID)
	if err != nil {
		common.HandleError(hc, err, "get service")
		return
	}
	if !svc.IsActive {
		common.HandleError(hc, service.ErrServiceInactive, "get service")
		return
	}

	days, err := h.AvailabilityService.Calendar(hc.Ctx, serviceID)
	if err != nil {
		common.HandleError(hc, err, "build calendar")
		return
	}

	text, kb := common.DatesScreen(svc, days, page, hc.Lang())
	_ = hc.EditMessage(text, kb)
	hc.Answer("")
}

// HandleBookDate показывает свободное время: book_date:service_id:YYYY-MM-DD
func HandleBookDate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.BookDate, 2)
		if err != nil {
			common.HandleError(hc, err, "parse book date")
			return
		}
		serviceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse book date")
			return
		}
		showSlots(hc, serviceID, args[1])
		hc.Answer("")
	})
}

func showSlots(hc *common.HandlerContext, serviceID int64, dateKey string) {
	h := hc.Handler

	date, err := h.SettingsService.ParseDate(dateKey)
	if err != nil {
		common.HandleError(hc, common.ErrInvalidFormat, "parse date")
		return
	}
	svc, err := h.CatalogService.Get(hc.Ctx, serviceID)
	if err != nil {
		common.HandleError(hc, err, "get service")
		return
	}

	slots, err := h.AvailabilityService.SlotsForDate(hc.Ctx, date, serviceID)
	if err != nil {
		common.HandleError(hc, err, "compute slots")
		return
	}

	text, kb := common.SlotsScreen(svc, date, slots, hc.Lang())
	_ = hc.EditMessage(text, kb)
}

// HandleBookSlot экран подтверждения: book_slot:service_id:YYYY-MM-DD:minutes
func HandleBookSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseSlotArgs(callback.Data, common.BookSlot)
		if err != nil {
			common.HandleError(hc, err, "parse slot")
			return
		}
		date, err := h.SettingsService.ParseDate(args.Date)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse slot date")
			return
		}
		svc, err := h.CatalogService.Get(ctx, args.ServiceID)
		if err != nil {
			common.HandleError(hc, err, "get service")
			return
		}

		text, kb := common.ConfirmScreen(svc, date, args.Time, hc.Lang())
		_ = hc.EditMessage(text, kb)
		hc.Answer("")
	})
}

// HandleBookConfirm создаёт запись; без телефона сначала спрашивает номер
func HandleBookConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseSlotArgs(callback.Data, common.BookConfirm)
		if err != nil {
			common.HandleError(hc, err, "parse booking confirm")
			return
		}
		draft := callbacktypes.BookingDraft{ServiceID: args.ServiceID, Date: args.Date, Time: args.Time}

		if hc.User.Phone == "" {
			hc.SetState(callbacktypes.StateBookingPhone)
			hc.SetData(callbacktypes.DataBookingDraft, draft)

			kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.BookAbort)).Build()
			_ = hc.EditMessage(
				"📞 <b>Укажите номер телефона</b>\n\n"+
					"Он нужен мастеру, чтобы связаться с вами. Отправьте номер одним сообщением, например +7 999 123-45-67.",
				kb,
			)
			hc.Answer("")
			return
		}

		appointment, err := CompleteBooking(ctx, h, hc.User, draft)
		if err != nil {
			if errors.Is(err, service.ErrSlotUnavailable) {
				// слот заняли, пока клиент думал: показываем актуальное время
				hc.AnswerAlert(common.ErrorMessage(err))
				showSlots(hc, draft.ServiceID, draft.Date)
				return
			}
			common.HandleError(hc, err, "book appointment")
			return
		}

		text, kb := common.BookedScreen(appointment, hc.Lang())
		_ = hc.EditMessage(text, kb)
		common.LogAndAnswer(hc, "Appointment booked via bot", "✅ Готово")
	})
}

// CompleteBooking создаёт запись по черновику и уведомляет мастеров
func CompleteBooking(ctx context.Context, h *callbacktypes.Handler, user *model.User, draft callbacktypes.BookingDraft) (*model.Appointment, error) {
	date, err := h.SettingsService.ParseDate(draft.Date)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}

	appointment, err := h.BookingService.Book(ctx, service.BookRequest{
		ClientID:  user.ID,
		ServiceID: draft.ServiceID,
		Date:      date,
		Time:      draft.Time,
		Phone:     user.Phone,
	})
	if err != nil {
		return nil, err
	}

	h.Logger.Info("Booking completed",
		zap.Int64("appointment_id", appointment.ID),
		zap.Int64("client_id", user.ID))

	if h.Notifier != nil {
		h.Notifier.AppointmentCreated(ctx, appointment, user)
	}
	return appointment, nil
}

// HandleBookAbort прерывает запись
func HandleBookAbort(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	hc.ClearState()
	_ = hc.EditMessage("Запись отменена. Начать заново - /book", nil)
	hc.Answer("")
}

// HandleDayClosed нажатие на выходной день
func HandleDayClosed(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	common.AnswerCallbackAlert(ctx, b, callback.ID, "⚪️ В этот день салон не работает")
}

// HandleDayFull нажатие на полностью занятый день
func HandleDayFull(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	common.AnswerCallbackAlert(ctx, b, callback.ID, "🔴 На этот день всё занято, выберите другой")
}
