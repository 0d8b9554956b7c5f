package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/client"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleBook /book - список услуг для записи
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.stateManager.ClearState(user.TelegramID)

	services, err := h.catalogService.List(ctx, true)
	if err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "list services", err)
		return
	}

	text, kb := common.ServicesScreen(services, common.UserLanguage(user))
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleMyBookings /mybookings - записи клиента
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	text, kb, err := client.AppointmentsScreen(ctx, h.deps, user)
	if err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "list client appointments", err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandlePhone /phone - изменить номер телефона
func (h *Handlers) HandlePhone(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	current := "не указан"
	if user.Phone != "" {
		current = user.Phone
	}

	h.stateManager.SetState(user.TelegramID, callbacktypes.StateEnteringPhone)
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"📞 Текущий номер: <b>%s</b>\n\nОтправьте новый номер одним сообщением. Отмена - /cancel",
		html.EscapeString(current),
	), nil)
}

// HandleHours /hours - часы работы и ближайшие исключения
func (h *Handlers) HandleHours(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "get settings", err)
		return
	}
	overrides, err := h.settingsService.Overrides(ctx)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "get overrides", err)
		return
	}
	window, err := h.settingsService.BookingWindow(ctx)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "get booking window", err)
		return
	}

	// только будущие исключения
	today := h.settingsService.Today()
	upcoming := make(model.Overrides, len(overrides))
	for key, day := range overrides {
		if date, err := h.settingsService.ParseDate(key); err == nil && !date.Before(today) {
			upcoming[key] = day
		}
	}

	text := fmt.Sprintf(
		"🕐 <b>Часы работы «%s»</b>\n\n%s\n"+
			"📌 <b>Особые дни:</b>\n%s\n"+
			"📅 Запись открыта до %s",
		html.EscapeString(settings.Name),
		formatting.FormatWeekSchedule(settings.Schedule),
		formatting.FormatOverrides(upcoming),
		formatting.FormatDate(window.To),
	)
	h.sendMessage(ctx, b, chatID, text, nil)
}
