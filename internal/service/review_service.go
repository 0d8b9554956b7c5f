package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultPromptDelay   = 2 * time.Hour
	DefaultPromptTimeout = 72 * time.Hour
)

// ReviewConfig тайминги запросов отзывов
type ReviewConfig struct {
	// PromptDelay через сколько после завершения визита спрашивать отзыв
	PromptDelay time.Duration
	// PromptTimeout сколько висит запрос без ответа, прежде чем считается закрытым
	PromptTimeout time.Duration
}

// PromptCandidate клиент и запись, по которой ему нужно отправить запрос отзыва
type PromptCandidate struct {
	Client      *model.User
	Appointment *model.Appointment
}

// ReviewService запросы отзывов у клиентов и работа мастера с отзывами
type ReviewService struct {
	appointments AppointmentStore
	services     ServiceStore
	reviews      ReviewStore
	prompts      PromptStore
	users        UserStore
	cfg          ReviewConfig
	logger       *zap.Logger
	now          func() time.Time
}

func NewReviewService(
	appointments AppointmentStore,
	services ServiceStore,
	reviews ReviewStore,
	prompts PromptStore,
	users UserStore,
	cfg ReviewConfig,
	logger *zap.Logger,
) *ReviewService {
	if cfg.PromptDelay <= 0 {
		cfg.PromptDelay = DefaultPromptDelay
	}
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = DefaultPromptTimeout
	}

	return &ReviewService{
		appointments: appointments,
		services:     services,
		reviews:      reviews,
		prompts:      prompts,
		users:        users,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// tracker собирает состояние запросов клиента из хранилищ
func (s *ReviewService) tracker(ctx context.Context, client *model.User) (*engagement.Tracker, []*model.Appointment, error) {
	appointments, err := s.appointments.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list client appointments: %w", err)
	}
	reviewed, err := s.reviews.ReviewedAppointments(ctx, client.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list reviewed appointments: %w", err)
	}
	prompts, err := s.prompts.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list prompts: %w", err)
	}

	return engagement.New(engagement.Snapshot{
		ClientID:     client.ID,
		Appointments: appointments,
		Reviewed:     reviewed,
		Prompts:      prompts,
		HintShown:    client.ReviewHintShown,
	}), appointments, nil
}

// persist сохраняет переход состояния запроса
func (s *ReviewService) persist(ctx context.Context, tr engagement.Transition, promptedAt time.Time) error {
	prompt := &model.ReviewPrompt{
		AppointmentID: tr.AppointmentID,
		ClientID:      tr.ClientID,
		State:         tr.To,
		PromptedAt:    promptedAt,
	}
	if tr.To != model.PromptStatePrompted {
		at := tr.At
		prompt.ResolvedAt = &at
	}

	if err := s.prompts.Save(ctx, prompt); err != nil {
		return fmt.Errorf("save prompt: %w", err)
	}
	return nil
}

func (s *ReviewService) withService(ctx context.Context, a *model.Appointment) *model.Appointment {
	if a == nil || a.Service != nil {
		return a
	}
	svc, err := s.services.GetByID(ctx, a.ServiceID)
	if err != nil {
		s.logger.Warn("Failed to load service for review prompt", zap.Int64("service_id", a.ServiceID), zap.Error(err))
		return a
	}
	a.Service = svc
	return a
}

func findAppointment(list []*model.Appointment, id int64) *model.Appointment {
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// NextPrompt запись, по которой сейчас нужно спросить отзыв: активный запрос
// или первая подходящая запись. nil если спрашивать не о чем.
func (s *ReviewService) NextPrompt(ctx context.Context, client *model.User) (*model.Appointment, error) {
	tr, appointments, err := s.tracker(ctx, client)
	if err != nil {
		return nil, err
	}

	if active := tr.Active(); active != nil {
		return s.withService(ctx, findAppointment(appointments, active.AppointmentID)), nil
	}

	next, ok := tr.Next()
	if !ok {
		return nil, nil
	}
	return s.withService(ctx, next), nil
}

// MarkPrompted фиксирует что клиенту показан запрос по записи
func (s *ReviewService) MarkPrompted(ctx context.Context, client *model.User, appointmentID int64) error {
	tr, _, err := s.tracker(ctx, client)
	if err != nil {
		return err
	}

	now := s.now()
	transition, err := tr.Prompt(appointmentID, now)
	if err != nil {
		return err
	}
	if transition.From == transition.To {
		return nil
	}

	if err := s.persist(ctx, transition, now); err != nil {
		if errors.Is(err, repository.ErrPromptActive) {
			return engagement.ErrPromptActive
		}
		return err
	}

	s.logger.Info("Review prompt shown",
		zap.Int64("client_id", client.ID),
		zap.Int64("appointment_id", appointmentID),
	)
	return nil
}

// Submit сохраняет отзыв клиента. Оценка проверяется до обращения к хранилищу.
func (s *ReviewService) Submit(ctx context.Context, client *model.User, appointmentID int64, rating int, comment string) (*model.Review, error) {
	if err := engagement.ValidateRating(rating); err != nil {
		return nil, err
	}

	tr, _, err := s.tracker(ctx, client)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transition, err := tr.Submit(appointmentID, rating, comment, now)
	if err != nil {
		return nil, err
	}

	review := transition.Review
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, engagement.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.persist(ctx, transition, now); err != nil {
		// отзыв уже сохранён; состояние запроса восстановится из отзыва
		s.logger.Warn("Failed to save reviewed prompt state", zap.Int64("appointment_id", appointmentID), zap.Error(err))
	}

	s.logger.Info("Review submitted",
		zap.Int64("review_id", review.ID),
		zap.Int64("client_id", client.ID),
		zap.Int64("appointment_id", appointmentID),
		zap.Int("rating", rating),
	)

	review.Client = client
	return review, nil
}

// Defer клиент выбрал "оставить позже". Возвращает true, если нужно показать подсказку.
func (s *ReviewService) Defer(ctx context.Context, client *model.User, appointmentID int64) (bool, error) {
	tr, _, err := s.tracker(ctx, client)
	if err != nil {
		return false, err
	}

	now := s.now()
	transition, err := tr.Defer(appointmentID, now)
	if err != nil {
		return false, err
	}
	if err := s.persist(ctx, transition, now); err != nil {
		return false, err
	}

	if transition.ShowHint {
		if err := s.users.SetReviewHintShown(ctx, client.ID); err != nil {
			s.logger.Warn("Failed to save review hint flag", zap.Int64("client_id", client.ID), zap.Error(err))
		}
	}
	client.ReviewHintShown = tr.HintShown()

	s.logger.Info("Review prompt deferred",
		zap.Int64("client_id", client.ID),
		zap.Int64("appointment_id", appointmentID),
	)
	return transition.ShowHint, nil
}

// Dismiss клиент закрыл запрос отзыва
func (s *ReviewService) Dismiss(ctx context.Context, client *model.User, appointmentID int64) error {
	tr, _, err := s.tracker(ctx, client)
	if err != nil {
		return err
	}

	transition, err := tr.Dismiss(appointmentID, s.now())
	if err != nil {
		return err
	}
	if err := s.persist(ctx, transition, s.now()); err != nil {
		return err
	}

	s.logger.Info("Review prompt dismissed",
		zap.Int64("client_id", client.ID),
		zap.Int64("appointment_id", appointmentID),
	)
	return nil
}

// Reviewable завершённые записи клиента без отзыва: их можно оценить из истории визитов
func (s *ReviewService) Reviewable(ctx context.Context, client *model.User) (map[int64]bool, error) {
	tr, appointments, err := s.tracker(ctx, client)
	if err != nil {
		return nil, err
	}

	// отложенные и закрытые запросы остаются доступны из истории визитов
	dismissed := tr.Dismissed()
	out := make(map[int64]bool)
	for _, a := range appointments {
		if a.Status != model.AppointmentStatusCompleted {
			continue
		}
		switch state := tr.State(a.ID); {
		case state == model.PromptStateReviewed:
		case dismissed.Has(a.ID), state == model.PromptStateEligible, state == model.PromptStatePrompted:
			out[a.ID] = true
		}
	}
	return out, nil
}

// ReleasePrompt снимает запрос, который не удалось доставить клиенту:
// запись возвращается в очередь и будет предложена при следующем сканировании.
func (s *ReviewService) ReleasePrompt(ctx context.Context, candidate PromptCandidate) error {
	released, err := s.prompts.Release(ctx, candidate.Appointment.ID)
	if err != nil {
		return err
	}
	if released {
		s.logger.Info("Undelivered review prompt released",
			zap.Int64("client_id", candidate.Client.ID),
			zap.Int64("appointment_id", candidate.Appointment.ID),
		)
	}
	return nil
}

// ScanAll находит клиентов, которым пора задать вопрос об отзыве, и помечает запросы показанными.
// Отправка сообщений - на вызывающей стороне; недоставленный запрос снимается через ReleasePrompt.
func (s *ReviewService) ScanAll(ctx context.Context) ([]PromptCandidate, error) {
	now := s.now()
	clientIDs, err := s.prompts.PendingClients(ctx, now.Add(-s.cfg.PromptDelay))
	if err != nil {
		return nil, fmt.Errorf("list pending clients: %w", err)
	}
	if len(clientIDs) == 0 {
		return nil, nil
	}

	clients, err := s.users.GetByIDs(ctx, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("get clients: %w", err)
	}

	var candidates []PromptCandidate
	for _, id := range clientIDs {
		client, ok := clients[id]
		if !ok {
			continue
		}

		next, err := s.NextPrompt(ctx, client)
		if err != nil {
			s.logger.Error("Failed to find review prompt", zap.Int64("client_id", id), zap.Error(err))
			continue
		}
		if next == nil {
			continue
		}
		// визит мог завершиться недавно: ждём задержку и для него
		if now.Sub(next.UpdatedAt) < s.cfg.PromptDelay {
			continue
		}

		if err := s.MarkPrompted(ctx, client, next.ID); err != nil {
			s.logger.Error("Failed to mark review prompt", zap.Int64("client_id", id), zap.Error(err))
			continue
		}

		candidates = append(candidates, PromptCandidate{Client: client, Appointment: next})
	}

	return candidates, nil
}

// ExpireStale закрывает запросы, оставшиеся без ответа дольше PromptTimeout
func (s *ReviewService) ExpireStale(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.prompts.ListPrompted(ctx, now.Add(-s.cfg.PromptTimeout))
	if err != nil {
		return 0, fmt.Errorf("list stale prompts: %w", err)
	}

	seen := make(map[int64]bool)
	expired := 0
	for _, p := range stale {
		if seen[p.ClientID] {
			continue
		}
		seen[p.ClientID] = true

		client, err := s.users.GetByID(ctx, p.ClientID)
		if err != nil || client == nil {
			s.logger.Warn("Skip stale prompt without client", zap.Int64("client_id", p.ClientID), zap.Error(err))
			continue
		}

		tr, _, err := s.tracker(ctx, client)
		if err != nil {
			s.logger.Error("Failed to load review prompts", zap.Int64("client_id", p.ClientID), zap.Error(err))
			continue
		}

		for _, transition := range tr.Expire(now, s.cfg.PromptTimeout) {
			if err := s.persist(ctx, transition, p.PromptedAt); err != nil {
				s.logger.Error("Failed to expire review prompt", zap.Int64("appointment_id", transition.AppointmentID), zap.Error(err))
				continue
			}
			expired++
		}
	}

	if expired > 0 {
		s.logger.Info("Stale review prompts expired", zap.Int("count", expired))
	}
	return expired, nil
}

// List отзывы для мастера
func (s *ReviewService) List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*model.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	reviews, err := s.reviews.List(ctx, onlyUnread, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Get отзыв по ID
func (s *ReviewService) Get(ctx context.Context, id int64) (*model.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// MarkRead отмечает отзыв прочитанным
func (s *ReviewService) MarkRead(ctx context.Context, id int64) (bool, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !engagement.MarkRead(review) {
		return false, nil
	}

	changed, err := s.reviews.MarkRead(ctx, id)
	if err != nil {
		return false, fmt.Errorf("mark review read: %w", err)
	}
	return changed, nil
}

// MarkAllRead отмечает все отзывы прочитанными
func (s *ReviewService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.reviews.MarkAllRead(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark all reviews read: %w", err)
	}
	if n > 0 {
		s.logger.Info("Reviews marked read", zap.Int64("count", n))
	}
	return n, nil
}

// Reply задаёт или меняет ответ мастера на отзыв
func (s *ReviewService) Reply(ctx context.Context, id int64, text string) (*model.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := engagement.SetReply(review, text, s.now()); err != nil {
		return nil, err
	}

	if err := s.reviews.SetReply(ctx, review.ID, *review.Reply, *review.RepliedAt); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("set reply: %w", err)
	}

	s.logger.Info("Review replied", zap.Int64("review_id", review.ID))
	return review, nil
}

// UnreadCount число непрочитанных отзывов
func (s *ReviewService) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.reviews.UnreadCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count unread reviews: %w", err)
	}
	return n, nil
}

// Stats средняя оценка и число отзывов
func (s *ReviewService) Stats(ctx context.Context) (float64, int, error) {
	return s.reviews.AverageRating(ctx)
}
