package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay время суток в минутах от полуночи
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay разбирает строку формата "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	// 24:00 допустимо только как конец рабочего дня
	if hour == 24 && minute != 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// MustTime используется в тестах и для констант
func MustTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayFrom возвращает время суток для момента времени
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Add сдвигает время на указанное число минут
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// On возвращает момент времени для этого времени суток в указанную дату
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Valid проверяет что время лежит в пределах суток
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= minutesPerDay
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Weekday ключ дня недели в расписании салона
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays все дни недели, начиная с понедельника
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf возвращает ключ дня недели для даты
func WeekdayOf(date time.Time) Weekday {
	return WeekdayFromTime(date.Weekday())
}

// WeekdayFromTime конвертирует time.Weekday в ключ расписания
func WeekdayFromTime(wd time.Weekday) Weekday {
	switch wd {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ParseWeekday разбирает название дня недели
func ParseWeekday(s string) (Weekday, bool) {
	wd := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Weekdays {
		if wd == known {
			return wd, true
		}
	}
	return "", false
}

// DaySchedule рабочие часы одного дня
type DaySchedule struct {
	IsOpen bool      `json:"isOpen"`
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
}

// ClosedDay выходной
var ClosedDay = DaySchedule{}

// OpenDay рабочий день с указанными часами
func OpenDay(start, end TimeOfDay) DaySchedule {
	return DaySchedule{IsOpen: true, Start: start, End: end}
}

// Effective сообщает открыт ли день на самом деле.
// Некорректные часы (start >= end) считаются выходным.
func (d DaySchedule) Effective() bool {
	return d.IsOpen && d.Start.Valid() && d.End.Valid() && d.Start < d.End
}

func (d DaySchedule) String() string {
	if !d.Effective() {
		return "closed"
	}
	return d.Start.String() + "-" + d.End.String()
}

// UnmarshalJSON не возвращает ошибку на кривых часах: такой день становится выходным
func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsOpen *bool           `json:"isOpen"`
		Start  json.RawMessage `json:"start"`
		End    json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = ClosedDay
		return nil
	}

	var start, end TimeOfDay
	startErr := start.UnmarshalJSON(raw.Start)
	endErr := end.UnmarshalJSON(raw.End)
	if raw.IsOpen == nil || startErr != nil || endErr != nil {
		*d = ClosedDay
		return nil
	}

	*d = DaySchedule{IsOpen: *raw.IsOpen, Start: start, End: end}
	return nil
}

// ParseDayRange разбирает "HH:MM-HH:MM" или "closed"
func ParseDayRange(s string) (DaySchedule, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "closed" || s == "выходной" {
		return ClosedDay, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return ClosedDay, fmt.Errorf("invalid range %q", s)
	}

	start, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return ClosedDay, err
	}
	end, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return ClosedDay, err
	}

	day := OpenDay(start, end)
	if !day.Effective() {
		return ClosedDay, fmt.Errorf("start must be before end in %q", s)
	}
	return day, nil
}

// WeekSchedule недельное расписание салона
type WeekSchedule map[Weekday]DaySchedule

// Day возвращает расписание дня; отсутствующий день считается выходным
func (w WeekSchedule) Day(wd Weekday) DaySchedule {
	if w == nil {
		return ClosedDay
	}
	if day, ok := w[wd]; ok {
		return day
	}
	return ClosedDay
}

// Clone копирует расписание
func (w WeekSchedule) Clone() WeekSchedule {
	out := make(WeekSchedule, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// DefaultWeekSchedule расписание по умолчанию: будни 10-20, суббота 10-18, воскресенье выходной
func DefaultWeekSchedule() WeekSchedule {
	weekday := OpenDay(MustTime("10:00"), MustTime("20:00"))
	return WeekSchedule{
		Monday:    weekday,
		Tuesday:   weekday,
		Wednesday: weekday,
		Thursday:  weekday,
		Friday:    weekday,
		Saturday:  OpenDay(MustTime("10:00"), MustTime("18:00")),
		Sunday:    ClosedDay,
	}
}

// ScheduleOverride исключение из расписания на конкретную дату
type ScheduleOverride struct {
	Date string      `json:"date"` // YYYY-MM-DD
	Day  DaySchedule `json:"day"`
}

// Closed сообщает что дата закрыта
func (o ScheduleOverride) Closed() bool {
	return !o.Day.Effective()
}

// Overrides исключения по датам (ключ YYYY-MM-DD)
type Overrides map[string]DaySchedule

// UnmarshalJSON принимает объект дня или явную отметку закрытия ("closed", false, null)
func (o *Overrides) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Overrides, len(raw))
	for date, value := range raw {
		trimmed := bytes.TrimSpace(value)
		switch {
		case bytes.Equal(trimmed, []byte("null")),
			bytes.Equal(trimmed, []byte("false")),
			bytes.Equal(trimmed, []byte(`"closed"`)):
			out[date] = ClosedDay
		default:
			var day DaySchedule
			_ = day.UnmarshalJSON(trimmed)
			out[date] = day
		}
	}

	*o = out
	return nil
}
