package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"go.uber.org/zap"
)

const (
	MaxBookingPeriodMonths = 12
	MinSlotIntervalMinutes = 5
	MaxSlotIntervalMinutes = 240
)

// SettingsService настройки салона и исключения из расписания.
// Настройки читаются из хранилища один раз и держатся в памяти.
type SettingsService struct {
	store    SettingsStore
	cache    SlotCache
	defaults model.SalonSettings
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	current *model.SalonSettings
}

func NewSettingsService(
	store SettingsStore,
	cache SlotCache,
	defaults model.SalonSettings,
	loc *time.Location,
	logger *zap.Logger,
) *SettingsService {
	if loc == nil {
		loc = time.UTC
	}
	defaults.Normalize()
	defaults.Timezone = loc.String()

	return &SettingsService{
		store:    store,
		cache:    orNoCache(cache),
		defaults: defaults,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Location часовой пояс салона
func (s *SettingsService) Location() *time.Location {
	return s.loc
}

// Now текущий момент в часовом поясе салона
func (s *SettingsService) Now() time.Time {
	return s.now().In(s.loc)
}

// Today сегодняшняя дата салона (полночь)
func (s *SettingsService) Today() time.Time {
	return availability.StartOfDay(s.Now())
}

// Date приводит календарную дату к полуночи в часовом поясе салона
func (s *SettingsService) Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// ParseDate разбирает YYYY-MM-DD в часовом поясе салона
func (s *SettingsService) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, value, s.loc)
}

// Load читает настройки из хранилища, один раз приводя старую схему к текущей.
// Мигрированные настройки сразу сохраняются.
func (s *SettingsService) Load(ctx context.Context) (model.SalonSettings, error) {
	raw, err := s.store.LoadRaw(ctx)
	if err != nil {
		return model.SalonSettings{}, fmt.Errorf("load settings: %w", err)
	}

	var (
		settings model.SalonSettings
		result   model.MigrationResult
	)
	if raw == nil {
		settings = s.defaults
		settings.Schedule = s.defaults.Schedule.Clone()
		result = model.MigrationMigrated
		s.logger.Info("No salon settings stored, using defaults")
	} else {
		settings, result, err = model.MigrateSettings(raw)
		if err != nil {
			return model.SalonSettings{}, fmt.Errorf("migrate settings: %w", err)
		}
	}
	settings.Timezone = s.loc.String()

	if result == model.MigrationMigrated {
		if err := s.store.Save(ctx, settings); err != nil {
			return model.SalonSettings{}, fmt.Errorf("save migrated settings: %w", err)
		}
		s.logger.Info("Salon settings migrated",
			zap.Int("schema_version", settings.SchemaVersion),
		)
	}

	s.mu.Lock()
	s.current = &settings
	s.mu.Unlock()

	return settings, nil
}

// Get текущие настройки (копия)
func (s *SettingsService) Get(ctx context.Context) (model.SalonSettings, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current == nil {
		return s.Load(ctx)
	}

	settings := *current
	settings.Schedule = current.Schedule.Clone()
	return settings, nil
}

// update применяет изменение к копии настроек, сохраняет и сбрасывает кэш слотов
func (s *SettingsService) update(ctx context.Context, change func(*model.SalonSettings) error) (model.SalonSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return model.SalonSettings{}, err
	}

	if err := change(&settings); err != nil {
		return model.SalonSettings{}, err
	}
	settings.Normalize()
	settings.Timezone = s.loc.String()

	if err := s.store.Save(ctx, settings); err != nil {
		return model.SalonSettings{}, fmt.Errorf("save settings: %w", err)
	}

	s.mu.Lock()
	s.current = &settings
	s.mu.Unlock()

	s.cache.InvalidateAll(ctx)
	return settings, nil
}

func validateDay(day model.DaySchedule) error {
	if day.IsOpen && !day.Effective() {
		return ErrInvalidSchedule
	}
	return nil
}

func validatePolicy(months, interval int) error {
	if months < 1 || months > MaxBookingPeriodMonths {
		return ErrInvalidPolicy
	}
	if interval < MinSlotIntervalMinutes || interval > MaxSlotIntervalMinutes {
		return ErrInvalidPolicy
	}
	return nil
}

// UpdateDay меняет часы работы дня недели
func (s *SettingsService) UpdateDay(ctx context.Context, weekday model.Weekday, day model.DaySchedule) (model.SalonSettings, error) {
	if err := validateDay(day); err != nil {
		return model.SalonSettings{}, err
	}
	if !day.IsOpen {
		day = model.ClosedDay
	}

	settings, err := s.update(ctx, func(settings *model.SalonSettings) error {
		settings.Schedule[weekday] = day
		return nil
	})
	if err != nil {
		return model.SalonSettings{}, err
	}

	s.logger.Info("Working hours updated",
		zap.String("weekday", string(weekday)),
		zap.String("hours", day.String()),
	)
	return settings, nil
}

// SetPolicy меняет окно бронирования, шаг сетки и необходимость подтверждения
func (s *SettingsService) SetPolicy(ctx context.Context, months, interval int, requiresConfirmation bool) (model.SalonSettings, error) {
	if err := validatePolicy(months, interval); err != nil {
		return model.SalonSettings{}, err
	}

	return s.update(ctx, func(settings *model.SalonSettings) error {
		settings.BookingPeriodMonths = months
		settings.SlotIntervalMinutes = interval
		settings.RequiresConfirmation = requiresConfirmation
		return nil
	})
}

// Replace заменяет настройки целиком (редактирование из Mini App)
func (s *SettingsService) Replace(ctx context.Context, next model.SalonSettings) (model.SalonSettings, error) {
	if err := validatePolicy(next.BookingPeriodMonths, next.SlotIntervalMinutes); err != nil {
		return model.SalonSettings{}, err
	}
	for _, day := range next.Schedule {
		if err := validateDay(day); err != nil {
			return model.SalonSettings{}, err
		}
	}

	return s.update(ctx, func(settings *model.SalonSettings) error {
		schedule := make(model.WeekSchedule, len(model.Weekdays))
		for _, wd := range model.Weekdays {
			schedule[wd] = next.Schedule.Day(wd)
		}

		settings.Name = next.Name
		if next.Currency != "" {
			settings.Currency = next.Currency
		}
		settings.Schedule = schedule
		settings.BookingPeriodMonths = next.BookingPeriodMonths
		settings.SlotIntervalMinutes = next.SlotIntervalMinutes
		settings.RequiresConfirmation = next.RequiresConfirmation
		return nil
	})
}

// Overrides исключения начиная с сегодняшнего дня
func (s *SettingsService) Overrides(ctx context.Context) (model.Overrides, error) {
	overrides, err := s.store.ListOverrides(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overrides, nil
}

// SetOverride задаёт особые часы или выходной на дату
func (s *SettingsService) SetOverride(ctx context.Context, date time.Time, day model.DaySchedule) error {
	date = s.Date(date)
	if date.Before(s.Today()) {
		return ErrPastDate
	}
	if err := validateDay(day); err != nil {
		return err
	}
	if !day.IsOpen {
		day = model.ClosedDay
	}

	key := availability.DateKey(date)
	if err := s.store.SetOverride(ctx, model.ScheduleOverride{Date: key, Day: day}); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	s.cache.InvalidateDate(ctx, key)

	s.logger.Info("Schedule override set",
		zap.String("date", key),
		zap.String("hours", day.String()),
	)
	return nil
}

// ClearOverride возвращает дате обычное расписание
func (s *SettingsService) ClearOverride(ctx context.Context, date time.Time) (bool, error) {
	key := availability.DateKey(s.Date(date))

	removed, err := s.store.DeleteOverride(ctx, key)
	if err != nil {
		return false, fmt.Errorf("clear override: %w", err)
	}
	if removed {
		s.cache.InvalidateDate(ctx, key)
		s.logger.Info("Schedule override cleared", zap.String("date", key))
	}
	return removed, nil
}

// BookingWindow окно бронирования от сегодняшнего дня
func (s *SettingsService) BookingWindow(ctx context.Context) (availability.BookingWindow, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return availability.BookingWindow{}, err
	}
	return availability.NewBookingWindow(s.Now(), settings.BookingPeriodMonths), nil
}
