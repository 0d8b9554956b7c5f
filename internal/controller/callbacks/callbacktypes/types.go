package callbacktypes

import (
	"context"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"go.uber.org/zap"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Клиент подтвердил запись, но телефон ещё не указан
	StateBookingPhone UserState = "booking_phone"
	// Клиент меняет телефон через /phone
	StateEnteringPhone UserState = "entering_phone"
	// Клиент поставил оценку и может написать комментарий
	StateReviewComment UserState = "review_comment"
	// Мастер пишет ответ на отзыв
	StateReviewReply UserState = "review_reply"
)

// Ключи временных данных диалога
const (
	DataBookingDraft  = "booking_draft"
	DataAppointmentID = "appointment_id"
	DataRating        = "rating"
	DataReviewID      = "review_id"
)

// BookingDraft выбранные клиентом услуга, день и время до подтверждения
type BookingDraft struct {
	ServiceID int64
	Date      string // YYYY-MM-DD
	Time      model.TimeOfDay
}

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	GetAllData(telegramID int64) map[string]interface{}
}

// Notifier уведомления мастерам и клиентам о событиях записи
type Notifier interface {
	AppointmentCreated(ctx context.Context, a *model.Appointment, client *model.User)
	AppointmentConfirmed(ctx context.Context, a *model.Appointment)
	AppointmentCancelled(ctx context.Context, a *model.Appointment, byMaster bool)
	ReviewSubmitted(ctx context.Context, review *model.Review, a *model.Appointment)
	ReviewReplied(ctx context.Context, review *model.Review)
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService         *service.UserService
	BookingService      *service.BookingService
	AvailabilityService *service.AvailabilityService
	SettingsService     *service.SettingsService
	ReviewService       *service.ReviewService
	CatalogService      *service.CatalogService
	Notifier            Notifier
	StateManager        StateManager
	Logger              *zap.Logger
}
