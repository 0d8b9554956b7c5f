package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// Интерфейсы хранилищ. Реализации - репозитории из internal/repository.

type SettingsStore interface {
	LoadRaw(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, settings model.SalonSettings) error
	ListOverrides(ctx context.Context, from time.Time) (model.Overrides, error)
	SetOverride(ctx context.Context, override model.ScheduleOverride) error
	DeleteOverride(ctx context.Context, date string) (bool, error)
}

type ServiceStore interface {
	Create(ctx context.Context, svc *model.Service) error
	GetByID(ctx context.Context, id int64) (*model.Service, error)
	List(ctx context.Context, onlyActive bool) ([]*model.Service, error)
	Update(ctx context.Context, svc *model.Service) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment, check func(existing []*model.Appointment) error) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	GetByCode(ctx context.Context, code uuid.UUID) (*model.Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	ListByClient(ctx context.Context, clientID int64) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from []model.AppointmentStatus, to model.AppointmentStatus) error
}

type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*model.Review, error)
	ReviewedAppointments(ctx context.Context, clientID int64) (map[int64]struct{}, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	MarkAllRead(ctx context.Context) (int64, error)
	SetReply(ctx context.Context, id int64, reply string, at time.Time) error
	UnreadCount(ctx context.Context) (int, error)
	AverageRating(ctx context.Context) (float64, int, error)
}

type PromptStore interface {
	ListByClient(ctx context.Context, clientID int64) ([]*model.ReviewPrompt, error)
	ListPrompted(ctx context.Context, before time.Time) ([]*model.ReviewPrompt, error)
	Save(ctx context.Context, p *model.ReviewPrompt) error
	Release(ctx context.Context, appointmentID int64) (bool, error)
	PendingClients(ctx context.Context, completedBefore time.Time) ([]int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	ListMasters(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SetPhone(ctx context.Context, userID int64, phone string) error
	SetReviewHintShown(ctx context.Context, userID int64) error
}

// SlotCache кэш рассчитанных слотов; реализация - cache.SlotCache
type SlotCache interface {
	Get(ctx context.Context, date string, durationMinutes int) ([]model.TimeOfDay, bool)
	Set(ctx context.Context, date string, durationMinutes int, slots []model.TimeOfDay)
	InvalidateDate(ctx context.Context, date string)
	InvalidateAll(ctx context.Context)
}

// noCache используется, когда Redis не настроен
type noCache struct{}

func (noCache) Get(context.Context, string, int) ([]model.TimeOfDay, bool) { return nil, false }
func (noCache) Set(context.Context, string, int, []model.TimeOfDay)        {}
func (noCache) InvalidateDate(context.Context, string)                     {}
func (noCache) InvalidateAll(context.Context)                              {}

func orNoCache(c SlotCache) SlotCache {
	if c == nil {
		return noCache{}
	}
	return c
}
