package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"go.uber.org/zap"
)

// AvailabilityService собирает данные из хранилищ и считает свободное время
type AvailabilityService struct {
	settings     *SettingsService
	appointments AppointmentStore
	services     ServiceStore
	cache        SlotCache
	logger       *zap.Logger
}

func NewAvailabilityService(
	settings *SettingsService,
	appointments AppointmentStore,
	services ServiceStore,
	cache SlotCache,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		settings:     settings,
		appointments: appointments,
		services:     services,
		cache:        orNoCache(cache),
		logger:       logger,
	}
}

// CalendarDay день календаря записи
type CalendarDay struct {
	Date      time.Time              `json:"-"`
	Key       string                 `json:"date"`
	Status    availability.DayStatus `json:"status"`
	FreeSlots int                    `json:"freeSlots"`
}

// servicesByID все услуги, включая выключенные: у старых записей длительность берётся из них
func servicesByID(ctx context.Context, store ServiceStore) (map[int64]*model.Service, error) {
	list, err := store.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make(map[int64]*model.Service, len(list))
	for _, svc := range list {
		out[svc.ID] = svc
	}
	return out, nil
}

// activeService услуга для записи; 0 - без услуги (слоты размером с шаг сетки)
func activeService(services map[int64]*model.Service, serviceID int64) (*model.Service, error) {
	if serviceID == 0 {
		return nil, nil
	}
	svc, ok := services[serviceID]
	if !ok {
		return nil, ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

func durationOf(svc *model.Service) int {
	if svc == nil {
		return 0
	}
	return svc.DurationMinutes
}

// baseInput настройки, исключения и услуги без записей
func (s *AvailabilityService) baseInput(ctx context.Context) (availability.Input, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return availability.Input{}, err
	}
	overrides, err := s.settings.Overrides(ctx)
	if err != nil {
		return availability.Input{}, err
	}
	services, err := servicesByID(ctx, s.services)
	if err != nil {
		return availability.Input{}, err
	}

	return availability.Input{
		Settings:  settings,
		Overrides: overrides,
		Services:  services,
		Now:       s.settings.Now(),
	}, nil
}

// SlotsForDate свободные слоты на дату для услуги.
// Для дат вне окна бронирования возвращается пустой список.
func (s *AvailabilityService) SlotsForDate(ctx context.Context, date time.Time, serviceID int64) ([]model.TimeOfDay, error) {
	date = s.settings.Date(date)

	in, err := s.baseInput(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := activeService(in.Services, serviceID)
	if err != nil {
		return nil, err
	}
	in.DurationMinutes = durationOf(svc)

	window := availability.NewBookingWindow(in.Now, in.Settings.BookingPeriodMonths)
	if !window.Contains(date) {
		return []model.TimeOfDay{}, nil
	}

	key := availability.DateKey(date)
	// сегодняшние слоты зависят от текущего времени, их не кэшируем
	cacheable := !availability.SameDate(date, in.Now)
	if cacheable {
		if slots, ok := s.cache.Get(ctx, key, in.DurationMinutes); ok {
			return slots, nil
		}
	}

	in.Appointments, err = s.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	slots := availability.ComputeSlotsForDate(date, in)
	if cacheable {
		s.cache.Set(ctx, key, in.DurationMinutes, slots)
	}

	s.logger.Debug("Slots computed",
		zap.String("date", key),
		zap.Int64("service_id", serviceID),
		zap.Int("slots", len(slots)),
	)
	return slots, nil
}

// IsDateBookable можно ли выбрать дату в календаре
func (s *AvailabilityService) IsDateBookable(ctx context.Context, date time.Time) (bool, error) {
	in, err := s.baseInput(ctx)
	if err != nil {
		return false, err
	}
	return availability.IsDateBookable(s.settings.Date(date), in), nil
}

// Calendar состояние каждого дня окна бронирования для услуги
func (s *AvailabilityService) Calendar(ctx context.Context, serviceID int64) ([]CalendarDay, error) {
	in, err := s.baseInput(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := activeService(in.Services, serviceID)
	if err != nil {
		return nil, err
	}
	in.DurationMinutes = durationOf(svc)

	window := availability.NewBookingWindow(in.Now, in.Settings.BookingPeriodMonths)
	appointments, err := s.appointments.ListByRange(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	byDate := make(map[string][]*model.Appointment)
	for _, a := range appointments {
		byDate[a.DateKey()] = append(byDate[a.DateKey()], a)
	}

	days := window.Days()
	calendar := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		key := availability.DateKey(day)
		dayInput := in
		dayInput.Appointments = byDate[key]

		entry := CalendarDay{
			Date:   day,
			Key:    key,
			Status: availability.DayStatusFor(day, dayInput),
		}
		if entry.Status == availability.DayAvailable {
			entry.FreeSlots = len(availability.ComputeSlotsForDate(day, dayInput))
		}
		calendar = append(calendar, entry)
	}

	return calendar, nil
}
