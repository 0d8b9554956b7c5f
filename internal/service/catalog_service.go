package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"go.uber.org/zap"
)

// CatalogService услуги салона
type CatalogService struct {
	services ServiceStore
	cache    SlotCache
	currency string
	logger   *zap.Logger
}

func NewCatalogService(services ServiceStore, cache SlotCache, currency string, logger *zap.Logger) *CatalogService {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &CatalogService{
		services: services,
		cache:    orNoCache(cache),
		currency: currency,
		logger:   logger,
	}
}

// List услуги; onlyActive скрывает выключенные
func (s *CatalogService) List(ctx context.Context, onlyActive bool) ([]*model.Service, error) {
	services, err := s.services.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Get услуга по ID
func (s *CatalogService) Get(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (s *CatalogService) validate(svc *model.Service) error {
	if strings.TrimSpace(svc.Name.Resolve(model.FallbackLanguage)) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidService)
	}
	if svc.DurationMinutes <= 0 || svc.DurationMinutes > 24*60 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidService)
	}
	if svc.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidService)
	}
	if svc.Currency == "" {
		svc.Currency = s.currency
	}
	return nil
}

// Create добавляет услугу
func (s *CatalogService) Create(ctx context.Context, svc *model.Service) error {
	if err := s.validate(svc); err != nil {
		return err
	}
	svc.IsActive = true

	if err := s.services.Create(ctx, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	s.logger.Info("Service created",
		zap.Int64("service_id", svc.ID),
		zap.String("name", svc.DisplayName(model.FallbackLanguage)),
		zap.Int("duration", svc.DurationMinutes),
		zap.String("price", svc.Price.StringFixed(2)),
	)
	return nil
}

// Update меняет услугу; смена длительности сбрасывает кэш слотов
func (s *CatalogService) Update(ctx context.Context, svc *model.Service) error {
	current, err := s.Get(ctx, svc.ID)
	if err != nil {
		return err
	}
	if err := s.validate(svc); err != nil {
		return err
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if current.DurationMinutes != svc.DurationMinutes {
		s.cache.InvalidateAll(ctx)
	}

	s.logger.Info("Service updated", zap.Int64("service_id", svc.ID))
	return nil
}

// ToggleActive включает или выключает услугу
func (s *CatalogService) ToggleActive(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	svc.IsActive = !svc.IsActive
	if err := s.services.SetActive(ctx, id, svc.IsActive); err != nil {
		return nil, fmt.Errorf("toggle service: %w", err)
	}

	s.logger.Info("Service toggled",
		zap.Int64("service_id", id),
		zap.Bool("is_active", svc.IsActive),
	)
	return svc, nil
}
