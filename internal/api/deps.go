package api

import (
	"context"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

type Users interface {
	RegisterUser(ctx context.Context, profile service.TelegramProfile) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	SetPhone(ctx context.Context, user *model.User, raw string) error
}

type Catalog interface {
	List(ctx context.Context, onlyActive bool) ([]*model.Service, error)
	Get(ctx context.Context, id int64) (*model.Service, error)
	Create(ctx context.Context, svc *model.Service) error
	Update(ctx context.Context, svc *model.Service) error
	ToggleActive(ctx context.Context, id int64) (*model.Service, error)
}

type Availability interface {
	Calendar(ctx context.Context, serviceID int64) ([]service.CalendarDay, error)
	SlotsForDate(ctx context.Context, date time.Time, serviceID int64) ([]model.TimeOfDay, error)
}

type Bookings interface {
	Book(ctx context.Context, req service.BookRequest) (*model.Appointment, error)
	Get(ctx context.Context, id int64) (*model.Appointment, error)
	Cancel(ctx context.Context, appointmentID int64, actor *model.User) (*model.Appointment, error)
	Confirm(ctx context.Context, appointmentID int64) (*model.Appointment, error)
	Complete(ctx context.Context, appointmentID int64) (*model.Appointment, error)
	ClientAppointments(ctx context.Context, clientID int64) ([]*model.Appointment, error)
	AppointmentsForDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
}

type Reviews interface {
	NextPrompt(ctx context.Context, client *model.User) (*model.Appointment, error)
	MarkPrompted(ctx context.Context, client *model.User, appointmentID int64) error
	Submit(ctx context.Context, client *model.User, appointmentID int64, rating int, comment string) (*model.Review, error)
	Defer(ctx context.Context, client *model.User, appointmentID int64) (bool, error)
	Dismiss(ctx context.Context, client *model.User, appointmentID int64) error
	List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*model.Review, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Reply(ctx context.Context, id int64, text string) (*model.Review, error)
	UnreadCount(ctx context.Context) (int, error)
	Stats(ctx context.Context) (float64, int, error)
}

type Settings interface {
	Get(ctx context.Context) (model.SalonSettings, error)
	Replace(ctx context.Context, next model.SalonSettings) (model.SalonSettings, error)
	Overrides(ctx context.Context) (model.Overrides, error)
	SetOverride(ctx context.Context, date time.Time, day model.DaySchedule) error
	ClearOverride(ctx context.Context, date time.Time) (bool, error)
	BookingWindow(ctx context.Context) (availability.BookingWindow, error)
	ParseDate(value string) (time.Time, error)
	Today() time.Time
}

// Notifier уведомления в Telegram о событиях из Mini App
type Notifier interface {
	AppointmentCreated(ctx context.Context, a *model.Appointment, client *model.User)
	AppointmentConfirmed(ctx context.Context, a *model.Appointment)
	AppointmentCancelled(ctx context.Context, a *model.Appointment, byMaster bool)
	ReviewSubmitted(ctx context.Context, review *model.Review, a *model.Appointment)
	ReviewReplied(ctx context.Context, review *model.Review)
}

// Services зависимости API
type Services struct {
	Users        Users
	Catalog      Catalog
	Availability Availability
	Bookings     Bookings
	Reviews      Reviews
	Settings     Settings
	Notifier     Notifier
}
