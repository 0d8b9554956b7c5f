package availability

import "time"

// BookingWindow окно бронирования [From, To], обе даты включительно
type BookingWindow struct {
	From time.Time
	To   time.Time
}

// NewBookingWindow окно от сегодняшней даты на months месяцев вперёд.
// Если в целевом месяце нет такого числа, берётся последний день месяца (31 января + 1 = 29 февраля).
func NewBookingWindow(today time.Time, months int) BookingWindow {
	if months <= 0 {
		months = 1
	}
	from := StartOfDay(today)
	return BookingWindow{From: from, To: addMonthsClamped(from, months)}
}

// Contains входит ли календарная дата в окно
func (w BookingWindow) Contains(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, w.From.Location())
	return !d.Before(w.From) && !d.After(w.To)
}

// Days все даты окна по порядку
func (w BookingWindow) Days() []time.Time {
	var days []time.Time
	for d := w.From; !d.After(w.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, date.Location())
}
