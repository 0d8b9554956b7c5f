// Package availability считает свободные слоты записи и границы окна бронирования.
//
// Все функции пакета чистые: время "сейчас" передаётся во входных данных,
// одинаковый вход всегда даёт одинаковый результат.
package availability

import (
	"iter"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// Input данные для расчёта слотов на дату
type Input struct {
	Settings     model.SalonSettings
	Overrides    model.Overrides
	Appointments []*model.Appointment
	Services     map[int64]*model.Service
	// Now текущий момент в часовом поясе салона
	Now time.Time
	// DurationMinutes длительность запрашиваемой услуги; 0 - слоты размером с шаг сетки
	DurationMinutes int
}

// DateKey календарная дата в формате YYYY-MM-DD
func DateKey(date time.Time) string {
	return date.Format(model.DateLayout)
}

// StartOfDay полночь даты в её часовом поясе
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate совпадают ли календарные даты
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EffectiveDay расписание на дату: исключение важнее недельного расписания
func EffectiveDay(date time.Time, settings model.SalonSettings, overrides model.Overrides) model.DaySchedule {
	if day, ok := overrides[DateKey(date)]; ok {
		return day
	}
	return settings.Schedule.Day(model.WeekdayOf(date))
}

// Candidates ленивая последовательность начал слотов в рабочих часах дня.
// Последовательность конечна и может обходиться повторно.
func Candidates(day model.DaySchedule, stepMinutes int) iter.Seq[model.TimeOfDay] {
	return func(yield func(model.TimeOfDay) bool) {
		if !day.Effective() || stepMinutes <= 0 {
			return
		}
		for t := day.Start; t < day.End; t = t.Add(stepMinutes) {
			if !yield(t) {
				return
			}
		}
	}
}

// interval полуоткрытый интервал [start, end) в минутах от полуночи
type interval struct {
	start, end model.TimeOfDay
}

func (i interval) overlaps(other interval) bool {
	return i.start < other.end && other.start < i.end
}

// ComputeSlotsForDate возвращает свободные слоты на дату в хронологическом порядке
func ComputeSlotsForDate(date time.Time, in Input) []model.TimeOfDay {
	day := EffectiveDay(date, in.Settings, in.Overrides)
	if !day.Effective() {
		return []model.TimeOfDay{}
	}

	step := stepOf(in.Settings)
	length := step
	if in.DurationMinutes > length {
		length = in.DurationMinutes
	}

	busy := busyIntervals(date, in, step)
	today := !in.Now.IsZero() && SameDate(date, in.Now)

	slots := make([]model.TimeOfDay, 0)
	for start := range Candidates(day, step) {
		candidate := interval{start: start, end: start.Add(length)}

		if in.DurationMinutes > 0 && candidate.end > day.End {
			continue
		}
		if today && start.On(date).Before(in.Now) {
			continue
		}
		if overlapsAny(candidate, busy) {
			continue
		}
		slots = append(slots, start)
	}

	return slots
}

// OpenSlots слоты рабочих часов без учёта записей и текущего времени
func OpenSlots(date time.Time, settings model.SalonSettings, overrides model.Overrides) []model.TimeOfDay {
	return ComputeSlotsForDate(date, Input{Settings: settings, Overrides: overrides})
}

// IsDateBookable можно ли выбрать дату в календаре: дата в окне бронирования
// и салон в этот день работает. Полностью занятый день остаётся доступным.
func IsDateBookable(date time.Time, in Input) bool {
	window := NewBookingWindow(in.Now, in.Settings.BookingPeriodMonths)
	if !window.Contains(date) {
		return false
	}
	return len(OpenSlots(date, in.Settings, in.Overrides)) > 0
}

// DayStatus состояние дня для подсветки календаря
type DayStatus string

const (
	DayOutOfWindow DayStatus = "out_of_window"
	DayClosed      DayStatus = "closed"
	DayFull        DayStatus = "full"
	DayAvailable   DayStatus = "available"
)

// DayStatusFor различает закрытые и полностью занятые дни
func DayStatusFor(date time.Time, in Input) DayStatus {
	window := NewBookingWindow(in.Now, in.Settings.BookingPeriodMonths)
	if !window.Contains(date) {
		return DayOutOfWindow
	}
	if len(OpenSlots(date, in.Settings, in.Overrides)) == 0 {
		return DayClosed
	}
	if len(ComputeSlotsForDate(date, in)) == 0 {
		return DayFull
	}
	return DayAvailable
}

// Contains входит ли слот в список
func Contains(slots []model.TimeOfDay, t model.TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

func stepOf(settings model.SalonSettings) int {
	if settings.SlotIntervalMinutes > 0 {
		return settings.SlotIntervalMinutes
	}
	return model.DefaultSlotIntervalMinutes
}

// busyIntervals занятые интервалы на дату; отменённые записи время не занимают
func busyIntervals(date time.Time, in Input, step int) []interval {
	var busy []interval
	for _, a := range in.Appointments {
		if a == nil || !a.BlocksTime() || !SameDate(a.Date, date) {
			continue
		}
		busy = append(busy, interval{start: a.Time, end: a.Time.Add(appointmentDuration(a, in.Services, step))})
	}
	return busy
}

// appointmentDuration длительность записи: по услуге, затем по снимку в записи, затем шаг сетки
func appointmentDuration(a *model.Appointment, services map[int64]*model.Service, step int) int {
	if svc, ok := services[a.ServiceID]; ok && svc != nil && svc.DurationMinutes > 0 {
		return svc.DurationMinutes
	}
	if a.DurationMinutes > 0 {
		return a.DurationMinutes
	}
	return step
}

func overlapsAny(candidate interval, busy []interval) bool {
	for _, b := range busy {
		if candidate.overlaps(b) {
			return true
		}
	}
	return false
}
