package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"   // Ожидает подтверждения мастера
	AppointmentStatusConfirmed AppointmentStatus = "confirmed" // Подтверждена
	AppointmentStatusCompleted AppointmentStatus = "completed" // Клиент пришёл, визит завершён
	AppointmentStatusCancelled AppointmentStatus = "cancelled" // Отменена клиентом или мастером
)

// DateLayout формат календарной даты (ключ исключений, кэша и SQL)
const DateLayout = "2006-01-02"

type Appointment struct {
	ID              int64             `json:"id"`
	ClientID        int64             `json:"clientId"`
	ClientPhone     string            `json:"clientPhone"`
	ServiceID       int64             `json:"serviceId"`
	Date            time.Time         `json:"date"` // полночь в часовом поясе салона
	Time            TimeOfDay         `json:"time"`
	DurationMinutes int               `json:"durationMinutes"` // длительность услуги на момент записи
	Status          AppointmentStatus `json:"status"`
	Code            uuid.UUID         `json:"code"` // код для отметки о приходе
	Comment         string            `json:"comment,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`

	// Дополнительные поля для удобства (не из БД)
	Service *Service `json:"service,omitempty"`
	Client  *User    `json:"client,omitempty"`
}

// DateKey календарная дата записи в формате YYYY-MM-DD
func (a *Appointment) DateKey() string {
	return a.Date.Format(DateLayout)
}

// StartsAt момент начала записи
func (a *Appointment) StartsAt() time.Time {
	return a.Time.On(a.Date)
}

// EndsAt момент окончания записи
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt().Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsActive запись ещё может состояться
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// BlocksTime запись занимает время в расписании (отменённые не занимают)
func (a *Appointment) BlocksTime() bool {
	return a.Status != AppointmentStatusCancelled
}
