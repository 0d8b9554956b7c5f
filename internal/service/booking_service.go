package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var activeStatuses = []model.AppointmentStatus{
	model.AppointmentStatusPending,
	model.AppointmentStatusConfirmed,
}

type BookingService struct {
	settings     *SettingsService
	appointments AppointmentStore
	services     ServiceStore
	users        UserStore
	cache        SlotCache
	logger       *zap.Logger
}

func NewBookingService(
	settings *SettingsService,
	appointments AppointmentStore,
	services ServiceStore,
	users UserStore,
	cache SlotCache,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		settings:     settings,
		appointments: appointments,
		services:     services,
		users:        users,
		cache:        orNoCache(cache),
		logger:       logger,
	}
}

// BookRequest данные новой записи
type BookRequest struct {
	ClientID  int64
	ServiceID int64
	Date      time.Time
	Time      model.TimeOfDay
	Phone     string
	Comment   string
}

// Book создаёт запись. Свободность слота проверяется повторно под блокировкой дня.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	services, err := servicesByID(ctx, s.services)
	if err != nil {
		return nil, err
	}
	svc, err := activeService(services, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	date := s.settings.Date(req.Date)
	now := s.settings.Now()
	window := availability.NewBookingWindow(now, settings.BookingPeriodMonths)
	if !window.Contains(date) {
		return nil, ErrOutsideBookingWindow
	}

	overrides, err := s.settings.Overrides(ctx)
	if err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		client, err := s.users.GetByID(ctx, req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("get client: %w", err)
		}
		if client == nil {
			return nil, ErrUserNotFound
		}
		phone = client.Phone
	}

	status := model.AppointmentStatusConfirmed
	if settings.RequiresConfirmation {
		status = model.AppointmentStatusPending
	}

	appointment := &model.Appointment{
		ClientID:        req.ClientID,
		ClientPhone:     phone,
		ServiceID:       svc.ID,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: svc.DurationMinutes,
		Status:          status,
		Code:            uuid.New(),
		Comment:         strings.TrimSpace(req.Comment),
	}

	check := func(existing []*model.Appointment) error {
		slots := availability.ComputeSlotsForDate(date, availability.Input{
			Settings:        settings,
			Overrides:       overrides,
			Appointments:    existing,
			Services:        services,
			Now:             now,
			DurationMinutes: svc.DurationMinutes,
		})
		if !availability.Contains(slots, req.Time) {
			return ErrSlotUnavailable
		}
		return nil
	}

	if err := s.appointments.Create(ctx, appointment, check); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.cache.InvalidateDate(ctx, appointment.DateKey())

	s.logger.Info("Appointment booked",
		zap.Int64("appointment_id", appointment.ID),
		zap.Int64("client_id", req.ClientID),
		zap.Int64("service_id", svc.ID),
		zap.String("date", appointment.DateKey()),
		zap.String("time", appointment.Time.String()),
		zap.String("status", string(status)),
	)

	appointment.Service = svc
	return appointment, nil
}

// Get получает запись по ID с услугой и клиентом
func (s *BookingService) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if a == nil {
		return nil, ErrAppointmentNotFound
	}

	if err := s.attach(ctx, []*model.Appointment{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// transition переводит запись из одного из статусов from в to
func (s *BookingService) transition(ctx context.Context, a *model.Appointment, from []model.AppointmentStatus, to model.AppointmentStatus) (*model.Appointment, error) {
	allowed := false
	for _, st := range from {
		if a.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, from, to); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	previous := a.Status
	a.Status = to
	s.cache.InvalidateDate(ctx, a.DateKey())

	s.logger.Info("Appointment status changed",
		zap.Int64("appointment_id", a.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(to)),
	)
	return a, nil
}

// Cancel отменяет запись. Клиент может отменить только свою запись, мастер - любую.
func (s *BookingService) Cancel(ctx context.Context, appointmentID int64, actor *model.User) (*model.Appointment, error) {
	a, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsMaster() && a.ClientID != actor.ID {
		return nil, ErrNotOwner
	}

	return s.transition(ctx, a, activeStatuses, model.AppointmentStatusCancelled)
}

// Confirm мастер подтверждает запись
func (s *BookingService) Confirm(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	a, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, a, []model.AppointmentStatus{model.AppointmentStatusPending}, model.AppointmentStatusConfirmed)
}

// Complete мастер отмечает визит состоявшимся; не раньше начала записи
func (s *BookingService) Complete(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	a, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if s.settings.Now().Before(a.StartsAt()) {
		return nil, ErrTooEarlyToComplete
	}

	return s.transition(ctx, a, activeStatuses, model.AppointmentStatusCompleted)
}

// CheckIn отмечает приход клиента по коду записи. Код принимается только в день визита.
func (s *BookingService) CheckIn(ctx context.Context, code string) (*model.Appointment, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, ErrInvalidCode
	}

	a, err := s.appointments.GetByCode(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("get appointment by code: %w", err)
	}
	if a == nil {
		return nil, ErrAppointmentNotFound
	}
	if !availability.SameDate(a.Date, s.settings.Now()) {
		return nil, ErrNotToday
	}

	if err := s.attach(ctx, []*model.Appointment{a}); err != nil {
		return nil, err
	}
	return s.transition(ctx, a, activeStatuses, model.AppointmentStatusCompleted)
}

// ClientAppointments записи клиента, новые первыми
func (s *BookingService) ClientAppointments(ctx context.Context, clientID int64) ([]*model.Appointment, error) {
	list, err := s.appointments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client appointments: %w", err)
	}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// AppointmentsForDate записи на дату для мастера, включая отменённые
func (s *BookingService) AppointmentsForDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	list, err := s.appointments.ListByDate(ctx, s.settings.Date(date))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Week неотменённые записи на 7 дней начиная с from
func (s *BookingService) Week(ctx context.Context, from time.Time) ([]*model.Appointment, error) {
	from = s.settings.Date(from)
	list, err := s.appointments.ListByRange(ctx, from, from.AddDate(0, 0, 6))
	if err != nil {
		return nil, fmt.Errorf("list week appointments: %w", err)
	}

	active := list[:0]
	for _, a := range list {
		if a.BlocksTime() {
			active = append(active, a)
		}
	}

	if err := s.attach(ctx, active); err != nil {
		return nil, err
	}
	return active, nil
}

// attach подставляет услуги и клиентов
func (s *BookingService) attach(ctx context.Context, list []*model.Appointment) error {
	if len(list) == 0 {
		return nil
	}

	services, err := servicesByID(ctx, s.services)
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(list))
	seen := make(map[int64]bool, len(list))
	for _, a := range list {
		if !seen[a.ClientID] {
			seen[a.ClientID] = true
			ids = append(ids, a.ClientID)
		}
	}
	clients, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get clients: %w", err)
	}

	for _, a := range list {
		a.Service = services[a.ServiceID]
		a.Client = clients[a.ClientID]
	}
	return nil
}
