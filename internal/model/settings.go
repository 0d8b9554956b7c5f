package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// CurrentSettingsVersion текущая версия схемы настроек салона
	CurrentSettingsVersion = 2

	DefaultBookingPeriodMonths = 1
	DefaultSlotIntervalMinutes = 30
	DefaultTimezone            = "Europe/Moscow"
	DefaultCurrency            = "RUB"
)

// SalonSettings настройки салона
type SalonSettings struct {
	SchemaVersion        int          `json:"schemaVersion"`
	Name                 string       `json:"name"`
	Timezone             string       `json:"timezone"`
	Currency             string       `json:"currency"`
	Schedule             WeekSchedule `json:"schedule"`
	BookingPeriodMonths  int          `json:"bookingPeriodMonths"`
	SlotIntervalMinutes  int          `json:"slotIntervalMinutes"`
	RequiresConfirmation bool         `json:"requiresConfirmation"`
}

// Normalize подставляет значения по умолчанию
func (s *SalonSettings) Normalize() {
	if s.BookingPeriodMonths <= 0 {
		s.BookingPeriodMonths = DefaultBookingPeriodMonths
	}
	if s.SlotIntervalMinutes <= 0 {
		s.SlotIntervalMinutes = DefaultSlotIntervalMinutes
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.Schedule == nil {
		s.Schedule = DefaultWeekSchedule()
	}
	s.SchemaVersion = CurrentSettingsVersion
}

// DefaultSettings настройки нового салона
func DefaultSettings() SalonSettings {
	s := SalonSettings{Schedule: DefaultWeekSchedule()}
	s.Normalize()
	return s
}

// MigrationResult результат миграции схемы настроек
type MigrationResult string

const (
	MigrationAlreadyCurrent MigrationResult = "already_current"
	MigrationMigrated       MigrationResult = "migrated"
)

// legacySchedule старый формат расписания: одни часы на все рабочие дни
type legacySchedule struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	WorkDays []int  `json:"workDays"` // 0 = воскресенье
}

// MigrateSettings приводит сохранённые настройки к текущей схеме.
// Старая схема определяется по отсутствию ключа monday в расписании.
// Нечитаемое расписание заменяется расписанием по умолчанию, нечитаемое поле
// получает значение по умолчанию; ошибка только если документ не JSON-объект.
// Вызывается один раз при загрузке, результат нужно сохранить если вернулся MigrationMigrated.
func MigrateSettings(raw []byte) (SalonSettings, MigrationResult, error) {
	if len(raw) == 0 {
		return DefaultSettings(), MigrationMigrated, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return SalonSettings{}, "", fmt.Errorf("decode settings: %w", err)
	}

	var settings SalonSettings
	clean := decodeField(fields, "schemaVersion", &settings.SchemaVersion)
	clean = decodeField(fields, "name", &settings.Name) && clean
	clean = decodeField(fields, "timezone", &settings.Timezone) && clean
	clean = decodeField(fields, "currency", &settings.Currency) && clean
	clean = decodeField(fields, "bookingPeriodMonths", &settings.BookingPeriodMonths) && clean
	clean = decodeField(fields, "slotIntervalMinutes", &settings.SlotIntervalMinutes) && clean
	clean = decodeField(fields, "requiresConfirmation", &settings.RequiresConfirmation) && clean
	wasCurrent := clean && settings.SchemaVersion == CurrentSettingsVersion

	if schedule, ok := currentSchedule(fields["schedule"]); ok {
		settings.Schedule = schedule
		settings.Normalize()
		if wasCurrent {
			return settings, MigrationAlreadyCurrent, nil
		}
		return settings, MigrationMigrated, nil
	}

	settings.Schedule = migrateLegacySchedule(fields["schedule"])
	settings.Normalize()

	return settings, MigrationMigrated, nil
}

// decodeField разбирает поле верхнего уровня; false если поле есть, но не читается
func decodeField(fields map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := fields[key]
	if !ok {
		return true
	}
	return json.Unmarshal(raw, dst) == nil
}

// currentSchedule расписание в текущем формате: объект с ключом monday
func currentSchedule(raw json.RawMessage) (WeekSchedule, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	if _, ok := probe[string(Monday)]; !ok {
		return nil, false
	}

	var schedule WeekSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return DefaultWeekSchedule(), true
	}
	return schedule, true
}

// migrateLegacySchedule переносит общие часы на рабочие дни, иначе берёт расписание по умолчанию
func migrateLegacySchedule(raw json.RawMessage) WeekSchedule {
	var legacy legacySchedule
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return DefaultWeekSchedule()
	}

	start, errStart := ParseTimeOfDay(legacy.Start)
	end, errEnd := ParseTimeOfDay(legacy.End)
	if errStart != nil || errEnd != nil || len(legacy.WorkDays) == 0 || start >= end {
		return DefaultWeekSchedule()
	}

	schedule := make(WeekSchedule, len(Weekdays))
	for _, wd := range Weekdays {
		schedule[wd] = ClosedDay
	}
	for _, d := range legacy.WorkDays {
		if d < 0 || d > 6 {
			continue
		}
		schedule[WeekdayFromTime(time.Weekday(d))] = OpenDay(start, end)
	}
	return schedule
}
