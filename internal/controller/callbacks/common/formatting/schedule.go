package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// FormatDaySchedule часы работы дня
func FormatDaySchedule(day model.DaySchedule) string {
	if !day.Effective() {
		return "выходной"
	}
	return fmt.Sprintf("%s-%s", day.Start, day.End)
}

// FormatWeekSchedule недельное расписание салона, по строке на день
func FormatWeekSchedule(schedule model.WeekSchedule) string {
	var sb strings.Builder
	for _, wd := range model.Weekdays {
		fmt.Fprintf(&sb, "%s: %s\n", WeekdayTitle(wd), FormatDaySchedule(schedule.Day(wd)))
	}
	return sb.String()
}

// FormatOverrides исключения из расписания, отсортированные по дате
func FormatOverrides(overrides model.Overrides) string {
	if len(overrides) == 0 {
		return "нет"
	}

	dates := make([]string, 0, len(overrides))
	for date := range overrides {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var sb strings.Builder
	for _, date := range dates {
		fmt.Fprintf(&sb, "• %s: %s\n", date, FormatDaySchedule(overrides[date]))
	}
	return sb.String()
}

// FormatServiceShort краткая строка услуги для списка
func FormatServiceShort(svc *model.Service, lang string, index int) string {
	status := ""
	if !svc.IsActive {
		status = " ⏸"
	}
	return fmt.Sprintf(
		"%d. %s%s\n   💰 %s | ⏱ %s",
		index,
		svc.DisplayName(lang),
		status,
		FormatPriceShort(svc.Price, svc.Currency),
		FormatDuration(svc.DurationMinutes),
	)
}

// FormatAppointmentInfo карточка записи для клиента
func FormatAppointmentInfo(a *model.Appointment, lang string) string {
	status := GetAppointmentStatusDisplay(a.Status)

	serviceName := "Услуга"
	price := ""
	if a.Service != nil {
		serviceName = a.Service.DisplayName(lang)
		price = fmt.Sprintf("\n💰 %s", FormatPriceShort(a.Service.Price, a.Service.Currency))
	}

	return fmt.Sprintf(
		"%s <b>%s</b>\n"+
			"📅 %s, %s%s\n"+
			"📊 %s",
		status.Emoji,
		serviceName,
		FormatDateWithWeekday(a.Date),
		FormatTimeRange(a.Time, a.DurationMinutes),
		price,
		status.Text,
	)
}

// FormatAppointmentForMaster строка записи в расписании мастера
func FormatAppointmentForMaster(a *model.Appointment, lang string) string {
	status := GetAppointmentStatusDisplay(a.Status)

	client := "Клиент"
	if a.Client != nil {
		client = a.Client.DisplayName()
	}
	serviceName := ""
	if a.Service != nil {
		serviceName = a.Service.DisplayName(lang)
	}
	phone := ""
	if a.ClientPhone != "" {
		phone = " 📞 " + a.ClientPhone
	}

	return fmt.Sprintf("%s <b>%s</b> %s\n   👤 %s%s",
		status.Emoji,
		FormatTimeRange(a.Time, a.DurationMinutes),
		serviceName,
		client,
		phone,
	)
}
