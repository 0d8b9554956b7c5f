package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/service"
	"go.uber.org/zap"
)

// PromptScanner источник запросов отзывов (service.ReviewService)
type PromptScanner interface {
	ScanAll(ctx context.Context) ([]service.PromptCandidate, error)
	ReleasePrompt(ctx context.Context, candidate service.PromptCandidate) error
	ExpireStale(ctx context.Context) (int, error)
}

// PromptSender доставляет запрос отзыва клиенту
type PromptSender interface {
	SendReviewPrompt(ctx context.Context, candidate service.PromptCandidate) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reviews  PromptScanner
	sender   PromptSender
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reviews PromptScanner, sender PromptSender, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		reviews:  reviews,
		sender:   sender,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.Run(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
}

// Run крутит задачу запросов отзывов до отмены контекста или Stop
func (s *Scheduler) Run(ctx context.Context) {
	// Первый запуск сразу при старте
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopChan:
			s.logger.Info("Review prompt task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Review prompt task cancelled")
			return
		}
	}
}

// tick закрывает просроченные запросы и отправляет новые
func (s *Scheduler) tick(ctx context.Context) {
	expired, err := s.reviews.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("Failed to expire stale review prompts", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("Stale review prompts dismissed", zap.Int("count", expired))
	}

	candidates, err := s.reviews.ScanAll(ctx)
	if err != nil {
		s.logger.Error("Failed to scan review prompts", zap.Error(err))
		return
	}

	sent := 0
	for _, candidate := range candidates {
		if err := s.sender.SendReviewPrompt(ctx, candidate); err != nil {
			s.logger.Warn("Failed to send review prompt",
				zap.Int64("client_id", candidate.Client.ID),
				zap.Int64("appointment_id", candidate.Appointment.ID),
				zap.Error(err),
			)
			// запрос не дошёл: возвращаем запись в очередь, иначе она истечёт как отклонённая
			if err := s.reviews.ReleasePrompt(ctx, candidate); err != nil {
				s.logger.Error("Failed to release review prompt",
					zap.Int64("appointment_id", candidate.Appointment.ID),
					zap.Error(err),
				)
			}
			continue
		}
		sent++
	}

	if len(candidates) > 0 {
		s.logger.Info("Review prompts sent", zap.Int("sent", sent), zap.Int("candidates", len(candidates)))
	}
}
