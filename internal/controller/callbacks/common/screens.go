package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

const (
	DatesPerPage   = 7
	SlotsPerRow    = 4
	ReviewsPerPage = 5
	historyLimit   = 5
)

// ========================
// Client screens
// ========================

// ServicesScreen список услуг для записи
func ServicesScreen(services []*model.Service, lang string) (string, *models.InlineKeyboardMarkup) {
	if len(services) == 0 {
		return "😔 Сейчас нет доступных услуг для записи.", nil
	}

	var sb strings.Builder
	sb.WriteString("💇 <b>Выберите услугу</b>\n\n")

	kb := keyboard.NewBuilder()
	for i, svc := range services {
		sb.WriteString(html.EscapeString(formatting.FormatServiceShort(svc, lang, i+1)))
		sb.WriteString("\n\n")
		kb.Row(keyboard.Button(
			fmt.Sprintf("%s · %s", svc.DisplayName(lang), formatting.FormatPriceShort(svc.Price, svc.Currency)),
			IDData(BookService, svc.ID),
		))
	}
	kb.AddBackToMainButton()

	return sb.String(), kb.Build()
}

// DatesScreen страница календаря записи на услугу
func DatesScreen(svc *model.Service, days []service.CalendarDay, page int, lang string) (string, *models.InlineKeyboardMarkup) {
	totalPages := keyboard.TotalPages(len(days), DatesPerPage)
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * DatesPerPage
	end := start + DatesPerPage
	if end > len(days) {
		end = len(days)
	}

	kb := keyboard.NewBuilder()
	for _, day := range days[start:end] {
		label := formatting.FormatDayButton(day.Date)
		switch day.Status {
		case availability.DayAvailable:
			kb.Row(keyboard.Button(
				fmt.Sprintf("🟢 %s · %d %s", label, day.FreeSlots, formatting.PluralizeSlots(day.FreeSlots)),
				BookDateData(svc.ID, day.Key),
			))
		case availability.DayFull:
			kb.Row(keyboard.Button("🔴 "+label, BookDayFull))
		case availability.DayClosed:
			kb.Row(keyboard.Button("⚪️ "+label, BookDayClosed))
		}
	}
	kb.AddPagination(fmt.Sprintf("%s%d:", BookDatesPage, svc.ID), page, totalPages)
	kb.AddBackButton(BookStart)

	text := fmt.Sprintf(
		"📅 <b>%s</b>\n⏱ %s\n\n"+
			"Выберите день:\n"+
			"🟢 есть время  🔴 всё занято  ⚪️ выходной",
		html.EscapeString(svc.DisplayName(lang)),
		formatting.FormatDuration(svc.DurationMinutes),
	)
	return text, kb.Build()
}

// SlotsScreen свободное время на выбранный день
func SlotsScreen(svc *model.Service, date time.Time, slots []model.TimeOfDay, lang string) (string, *models.InlineKeyboardMarkup) {
	dateKey := date.Format(model.DateLayout)

	kb := keyboard.NewBuilder()
	buttons := make([]models.InlineKeyboardButton, 0, len(slots))
	for _, slot := range slots {
		buttons = append(buttons, keyboard.Button(slot.String(), BookSlotData(BookSlot, svc.ID, dateKey, slot)))
	}
	kb.Chunk(SlotsPerRow, buttons...)
	kb.AddBackButton(BookDatesData(svc.ID, 0))

	if len(slots) == 0 {
		return fmt.Sprintf("😔 На %s свободного времени не осталось. Выберите другой день.",
			formatting.FormatDateWithWeekday(date)), kb.Build()
	}

	text := fmt.Sprintf(
		"🕐 <b>%s</b>\n📅 %s\n\nСвободно %d %s. Выберите время:",
		html.EscapeString(svc.DisplayName(lang)),
		formatting.FormatDateWithWeekday(date),
		len(slots),
		formatting.PluralizeSlots(len(slots)),
	)
	return text, kb.Build()
}

// ConfirmScreen подтверждение записи перед созданием
func ConfirmScreen(svc *model.Service, date time.Time, at model.TimeOfDay, lang string) (string, *models.InlineKeyboardMarkup) {
	dateKey := date.Format(model.DateLayout)

	text := fmt.Sprintf(
		"📝 <b>Проверьте запись</b>\n\n"+
			"💇 %s\n"+
			"📅 %s\n"+
			"🕐 %s\n"+
			"💰 %s\n\n"+
			"Всё верно?",
		html.EscapeString(svc.DisplayName(lang)),
		formatting.FormatDateWithWeekday(date),
		formatting.FormatTimeRange(at, svc.DurationMinutes),
		formatting.FormatPriceShort(svc.Price, svc.Currency),
	)

	kb := keyboard.NewBuilder().
		Row(keyboard.ConfirmButton(BookSlotData(BookConfirm, svc.ID, dateKey, at))).
		Row(keyboard.BackButton(BookDateData(svc.ID, dateKey)), keyboard.CancelButton(BookAbort)).
		Build()
	return text, kb
}

// BookedScreen запись создана
func BookedScreen(a *model.Appointment, lang string) (string, *models.InlineKeyboardMarkup) {
	note := "Ждём вас! Напоминание о записи всегда есть в /mybookings."
	if a.Status == model.AppointmentStatusPending {
		note = "Мастер подтвердит запись, и мы пришлём уведомление."
	}

	text := fmt.Sprintf(
		"✅ <b>Вы записаны!</b>\n\n%s\n\n🔑 Код визита: <code>%s</code>\n\n%s",
		formatting.FormatAppointmentInfo(a, lang),
		a.Code,
		note,
	)
	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📅 Мои записи", MyBookings)).
		Row(keyboard.Button("➕ Записаться ещё", BookStart)).
		Build()
	return text, kb
}

// ClientAppointmentsScreen предстоящие записи и история визитов клиента
func ClientAppointmentsScreen(list []*model.Appointment, reviewable map[int64]bool, lang string) (string, *models.InlineKeyboardMarkup) {
	var upcoming, history []*model.Appointment
	for _, a := range list {
		if a.IsActive() {
			upcoming = append(upcoming, a)
		} else {
			history = append(history, a)
		}
	}

	kb := keyboard.NewBuilder()
	var sb strings.Builder
	sb.WriteString("📅 <b>Мои записи</b>\n\n")

	if len(upcoming) == 0 {
		sb.WriteString("Предстоящих записей нет.\n\n")
	}
	for _, a := range upcoming {
		sb.WriteString(formatting.FormatAppointmentInfo(a, lang))
		fmt.Fprintf(&sb, "\n🔑 Код: <code>%s</code>\n\n", a.Code)
		kb.Row(keyboard.Button(
			fmt.Sprintf("❌ Отменить %s %s", a.Date.Format("02.01"), a.Time),
			IDData(CancelBooking, a.ID),
		))
	}

	// история - последние визиты, новые сверху
	if len(history) > 0 {
		sb.WriteString("🗂 <b>История</b>\n\n")
		shown := 0
		for i := len(history) - 1; i >= 0 && shown < historyLimit; i-- {
			a := history[i]
			sb.WriteString(formatting.FormatAppointmentInfo(a, lang))
			sb.WriteString("\n\n")
			if reviewable[a.ID] {
				kb.Row(keyboard.Button(
					fmt.Sprintf("⭐ Оценить визит %s", a.Date.Format("02.01")),
					IDData(ReviewStart, a.ID),
				))
			}
			shown++
		}
	}

	kb.Row(keyboard.Button("➕ Записаться", BookStart))
	kb.AddBackToMainButton()
	return sb.String(), kb.Build()
}

// CancelConfirmScreen подтверждение отмены записи клиентом
func CancelConfirmScreen(a *model.Appointment, lang string) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("❓ <b>Отменить запись?</b>\n\n%s", formatting.FormatAppointmentInfo(a, lang))
	kb := keyboard.NewBuilder().
		Row(keyboard.YesNoRow(IDData(ConfirmCancel, a.ID), MyBookings)...).
		Build()
	return text, kb
}

// ========================
// Review screens
// ========================

// ReviewPromptScreen запрос оценки визита. manual - клиент сам открыл из истории, без "позже" и "не спрашивать".
func ReviewPromptScreen(a *model.Appointment, lang string, manual bool) (string, *models.InlineKeyboardMarkup) {
	serviceName := "визит"
	if a.Service != nil {
		serviceName = a.Service.DisplayName(lang)
	}

	text := fmt.Sprintf(
		"💬 <b>Как прошёл визит?</b>\n\n"+
			"💇 %s\n📅 %s\n\n"+
			"Оцените от 1 до 5:",
		html.EscapeString(serviceName),
		formatting.FormatDateWithWeekday(a.Date),
	)

	ratings := make([]models.InlineKeyboardButton, 0, model.MaxRating)
	for r := model.MinRating; r <= model.MaxRating; r++ {
		ratings = append(ratings, keyboard.Button(fmt.Sprintf("%d⭐", r), RateData(a.ID, r)))
	}

	kb := keyboard.NewBuilder().Row(ratings...)
	if manual {
		kb.AddBackButton(MyBookings)
	} else {
		kb.Row(
			keyboard.Button("⏰ Позже", IDData(ReviewLater, a.ID)),
			keyboard.Button("✖️ Не спрашивать", IDData(ReviewClose, a.ID)),
		)
	}
	return text, kb.Build()
}

// CommentScreen после оценки: комментарий или пропуск
func CommentScreen(rating int) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"Спасибо за оценку %s!\n\n"+
			"Напишите пару слов о визите одним сообщением или нажмите «Пропустить».",
		formatting.RatingStars(rating),
	)
	kb := keyboard.NewBuilder().
		Row(keyboard.Button("⏭ Пропустить", ReviewSkipComment)).
		Build()
	return text, kb
}

// ========================
// Master screens
// ========================

// MasterDayScreen записи на день с кнопками действий
func MasterDayScreen(date, today time.Time, list []*model.Appointment, lang string) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Записи на %s</b>\n\n", formatting.FormatDateWithWeekday(date))

	kb := keyboard.NewBuilder()
	active := 0
	if len(list) == 0 {
		sb.WriteString("Записей нет.")
	}
	for i, a := range list {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, formatting.FormatAppointmentForMaster(a, lang))
		if !a.IsActive() {
			continue
		}
		active++

		var row []models.InlineKeyboardButton
		if a.Status == model.AppointmentStatusPending {
			row = append(row, keyboard.Button("✅ "+a.Time.String(), IDData(ApptConfirm, a.ID)))
		}
		row = append(row,
			keyboard.Button("✔️ Пришёл "+a.Time.String(), IDData(ApptComplete, a.ID)),
			keyboard.Button("❌", IDData(ApptCancel, a.ID)),
		)
		kb.Row(row...)
	}
	if active > 0 {
		fmt.Fprintf(&sb, "\nАктивных: %d %s", active, formatting.PluralizeBookings(active))
	}

	prev := MasterDay + date.AddDate(0, 0, -1).Format(model.DateLayout)
	next := MasterDay + date.AddDate(0, 0, 1).Format(model.DateLayout)
	kb.Row(keyboard.DayPagination(prev, date.Format("02.01"), next)...)

	nav := []models.InlineKeyboardButton{keyboard.Button("🗓 Неделя", MasterWeek+date.Format(model.DateLayout))}
	if !date.Equal(today) {
		nav = append(nav, keyboard.Button("📍 Сегодня", MasterDay+today.Format(model.DateLayout)))
	}
	kb.Row(nav...)
	kb.AddBackToMainButton()

	return sb.String(), kb.Build()
}

// MasterCancelConfirmScreen подтверждение отмены записи мастером
func MasterCancelConfirmScreen(a *model.Appointment, lang string) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("❓ <b>Отменить запись клиента?</b>\n\n%s\n\nКлиент получит уведомление.",
		formatting.FormatAppointmentForMaster(a, lang))
	kb := keyboard.NewBuilder().
		Row(keyboard.YesNoRow(IDData(ApptCancelConfirm, a.ID), MasterDay+a.DateKey())...).
		Build()
	return text, kb
}

// WeekKeyboard навигация под картинкой недели
func WeekKeyboard(weekStart time.Time) *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(
			keyboard.Button("◀️ Пред. неделя", MasterWeek+weekStart.AddDate(0, 0, -7).Format(model.DateLayout)),
			keyboard.Button("▶️ След. неделя", MasterWeek+weekStart.AddDate(0, 0, 7).Format(model.DateLayout)),
		).
		Row(keyboard.Button("📋 По дням", MasterDay+weekStart.Format(model.DateLayout))).
		Build()
}

// WeekCaption подпись к картинке недели
func WeekCaption(weekStart time.Time, list []*model.Appointment) string {
	counts := make(map[model.AppointmentStatus]int)
	for _, a := range list {
		counts[a.Status]++
	}
	total := counts[model.AppointmentStatusPending] + counts[model.AppointmentStatusConfirmed] + counts[model.AppointmentStatusCompleted]

	return fmt.Sprintf(
		"🗓 <b>Неделя %s - %s</b>\n\n"+
			"Всего: %d %s\n⏳ Ожидают: %d\n✅ Подтверждены: %d\n✔️ Завершены: %d",
		weekStart.Format("02.01"),
		weekStart.AddDate(0, 0, 6).Format("02.01"),
		total, formatting.PluralizeBookings(total),
		counts[model.AppointmentStatusPending],
		counts[model.AppointmentStatusConfirmed],
		counts[model.AppointmentStatusCompleted],
	)
}

// ReviewsStats сводка по отзывам для заголовка
type ReviewsStats struct {
	Average float64
	Total   int
	Unread  int
}

// ReviewsScreen страница отзывов мастера
func ReviewsScreen(reviews []*model.Review, page int, stats ReviewsStats) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	if stats.Total == 0 {
		return "⭐ <b>Отзывы</b>\n\nОтзывов пока нет.", nil
	}

	fmt.Fprintf(&sb, "⭐ <b>Отзывы</b>: %.1f из 5 (%d %s)\n🆕 Непрочитанных: %d\n\n",
		stats.Average, stats.Total, formatting.PluralizeReviews(stats.Total), stats.Unread)

	kb := keyboard.NewBuilder()
	for _, r := range reviews {
		marker := ""
		if !r.IsRead {
			marker = "🆕 "
		}
		client := "Клиент"
		if r.Client != nil {
			client = r.Client.DisplayName()
		}
		fmt.Fprintf(&sb, "%s<b>#%d</b> %s %s, %s\n",
			marker, r.ID, formatting.RatingStars(r.Rating), html.EscapeString(client), formatting.FormatDate(r.CreatedAt))
		if r.Comment != "" {
			fmt.Fprintf(&sb, "<i>%s</i>\n", html.EscapeString(r.Comment))
		}
		if r.HasReply() {
			fmt.Fprintf(&sb, "↪️ %s\n", html.EscapeString(*r.Reply))
		}
		sb.WriteString("\n")

		var row []models.InlineKeyboardButton
		if !r.IsRead {
			row = append(row, keyboard.Button(fmt.Sprintf("👁 #%d", r.ID), IDData(ReviewRead, r.ID)))
		}
		if !r.HasReply() {
			row = append(row, keyboard.Button(fmt.Sprintf("💬 Ответить #%d", r.ID), IDData(ReviewReply, r.ID)))
		}
		kb.Row(row...)
	}

	if stats.Unread > 0 {
		kb.Row(keyboard.Button("✅ Прочитать все", ReviewsReadAll))
	}
	kb.AddPagination(ReviewsPage, page, keyboard.TotalPages(stats.Total, ReviewsPerPage))
	kb.AddBackToMainButton()

	return sb.String(), kb.Build()
}

// ServicesAdminScreen каталог услуг с переключением активности
func ServicesAdminScreen(services []*model.Service, lang string) (string, *models.InlineKeyboardMarkup) {
	if len(services) == 0 {
		return "📋 Услуг пока нет.", nil
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Услуги салона</b>\n\n")
	kb := keyboard.NewBuilder()
	for i, svc := range services {
		sb.WriteString(html.EscapeString(formatting.FormatServiceShort(svc, lang, i+1)))
		sb.WriteString("\n\n")

		label := "⏸ Скрыть " + svc.DisplayName(lang)
		if !svc.IsActive {
			label = "▶️ Показать " + svc.DisplayName(lang)
		}
		kb.Row(keyboard.Button(label, IDData(ServiceToggle, svc.ID)))
	}
	kb.AddBackToMainButton()
	return sb.String(), kb.Build()
}
