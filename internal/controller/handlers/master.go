package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/master"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleToday /today - записи на сегодня
func (h *Handlers) HandleToday(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireMaster(ctx, b, update)
	if !ok {
		return
	}

	text, kb, err := master.DayScreen(ctx, h.deps, h.settingsService.Today(), common.UserLanguage(user))
	if err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "list today appointments", err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleWeek /week - текущая неделя картинкой
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireMaster(ctx, b, update)
	if !ok {
		return
	}

	if err := master.SendWeek(ctx, b, h.deps, update.Message.Chat.ID, h.settingsService.Today(), common.UserLanguage(user)); err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "send week", err)
	}
}

// HandleReviews /reviews - отзывы клиентов
func (h *Handlers) HandleReviews(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}

	text, kb, err := master.ReviewsScreen(ctx, h.deps, 0)
	if err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "list reviews", err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleServices /services - управление каталогом
func (h *Handlers) HandleServices(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireMaster(ctx, b, update)
	if !ok {
		return
	}

	text, kb, err := master.ServicesScreen(ctx, h.deps, common.UserLanguage(user))
	if err != nil {
		h.sendFailure(ctx, b, update.Message.Chat.ID, "list services", err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleCheckIn /checkin <код> - отметить приход клиента
func (h *Handlers) HandleCheckIn(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireMaster(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 1 {
		h.sendMessage(ctx, b, chatID, "Использование: <code>/checkin КОД</code>\nКод клиент видит в /mybookings.", nil)
		return
	}

	a, err := h.bookingService.CheckIn(ctx, args[0])
	if err != nil {
		h.sendFailure(ctx, b, chatID, "check in", err)
		return
	}

	h.logger.Info("Client checked in", zap.Int64("appointment_id", a.ID), zap.Int64("master_id", user.ID))
	h.sendMessage(ctx, b, chatID, "✔️ <b>Визит отмечен</b>\n\n"+
		formatting.FormatAppointmentForMaster(a, common.UserLanguage(user)), nil)
}

// HandleSetHours /sethours <день> <ЧЧ:ММ-ЧЧ:ММ|выходной>
func (h *Handlers) HandleSetHours(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 2 {
		settings, err := h.settingsService.Get(ctx)
		if err != nil {
			h.sendFailure(ctx, b, chatID, "get settings", err)
			return
		}
		h.sendMessage(ctx, b, chatID, "🕐 <b>Часы работы</b>\n\n"+
			formatting.FormatWeekSchedule(settings.Schedule)+
			"\nИзменить: <code>/sethours monday 10:00-19:00</code>\n"+
			"Выходной: <code>/sethours sunday выходной</code>", nil)
		return
	}

	weekday, ok := ParseWeekdayArg(args[0])
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Неизвестный день недели. Примеры: monday, вторник, пт")
		return
	}
	day, err := model.ParseDayRange(args[1])
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверные часы. Формат: 10:00-19:00 или выходной")
		return
	}

	settings, err := h.settingsService.UpdateDay(ctx, weekday, day)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "update working hours", err)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Часы работы обновлены\n\n"+formatting.FormatWeekSchedule(settings.Schedule), nil)
}

// HandleCloseDay /closeday <дата> - выходной в конкретный день
func (h *Handlers) HandleCloseDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 1 {
		h.sendMessage(ctx, b, chatID, "Использование: <code>/closeday 20.01.2025</code>", nil)
		return
	}
	date, ok := ParseUserDate(args[0], h.settingsService.Today())
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Неверная дата. Формат: 20.01.2025 или 2025-01-20")
		return
	}

	if err := h.settingsService.SetOverride(ctx, date, model.ClosedDay); err != nil {
		h.sendFailure(ctx, b, chatID, "close day", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"⚪️ %s - выходной. Уже созданные записи остаются, отменить их можно в /today.",
		formatting.FormatDateWithWeekday(date)), nil)
}

// HandleOpenDay /openday <дата> <ЧЧ:ММ-ЧЧ:ММ> - особые часы на дату
func (h *Handlers) HandleOpenDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 2 {
		h.sendMessage(ctx, b, chatID, "Использование: <code>/openday 20.01.2025 12:00-16:00</code>", nil)
		return
	}
	date, ok := ParseUserDate(args[0], h.settingsService.Today())
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Неверная дата. Формат: 20.01.2025 или 2025-01-20")
		return
	}
	day, err := model.ParseDayRange(args[1])
	if err != nil || !day.IsOpen {
		h.sendError(ctx, b, chatID, "❌ Неверные часы. Формат: 12:00-16:00")
		return
	}

	if err := h.settingsService.SetOverride(ctx, date, day); err != nil {
		h.sendFailure(ctx, b, chatID, "open day", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🟢 %s работаем %s",
		formatting.FormatDateWithWeekday(date), day.String()), nil)
}

// HandleClearDay /clearday <дата> - вернуть обычное расписание
func (h *Handlers) HandleClearDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 1 {
		h.sendMessage(ctx, b, chatID, "Использование: <code>/clearday 20.01.2025</code>", nil)
		return
	}
	date, ok := ParseUserDate(args[0], h.settingsService.Today())
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Неверная дата. Формат: 20.01.2025 или 2025-01-20")
		return
	}

	removed, err := h.settingsService.ClearOverride(ctx, date)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "clear day", err)
		return
	}
	if !removed {
		h.sendMessage(ctx, b, chatID, "На эту дату особых часов не было.", nil)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("↩️ %s - обычное расписание", formatting.FormatDateWithWeekday(date)), nil)
}

// HandlePolicy /policy <месяцев> <шаг минут> <подтверждение да|нет>
func (h *Handlers) HandlePolicy(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireMaster(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update)
	if len(args) != 3 {
		settings, err := h.settingsService.Get(ctx)
		if err != nil {
			h.sendFailure(ctx, b, chatID, "get settings", err)
			return
		}
		h.sendMessage(ctx, b, chatID, fmt.Sprintf(
			"⚙️ <b>Правила записи</b>\n\n"+
				"Запись открыта на: %d мес.\nШаг времени: %d мин\nПодтверждение мастером: %s\n\n"+
				"Изменить: <code>/policy 2 30 да</code>",
			settings.BookingPeriodMonths, settings.SlotIntervalMinutes, yesNo(settings.RequiresConfirmation)), nil)
		return
	}

	months, err1 := strconv.Atoi(args[0])
	interval, err2 := strconv.Atoi(args[1])
	confirm, ok := parseYesNo(args[2])
	if err1 != nil || err2 != nil || !ok {
		h.sendError(ctx, b, chatID, "❌ Формат: /policy <месяцев> <шаг минут> <да|нет>")
		return
	}

	settings, err := h.settingsService.SetPolicy(ctx, months, interval, confirm)
	if err != nil {
		h.sendFailure(ctx, b, chatID, "set policy", err)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Запись на %d мес., шаг %d мин, подтверждение: %s",
		settings.BookingPeriodMonths, settings.SlotIntervalMinutes, yesNo(settings.RequiresConfirmation)), nil)
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "да", "yes", "on", "1":
		return true, true
	case "нет", "no", "off", "0":
		return false, true
	}
	return false, false
}
