package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const serviceColumns = `id, name, description, duration_minutes, price::text, currency, is_active, created_at`

// ServiceRepository услуги салона
type ServiceRepository struct {
	*base.Repository
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{Repository: base.NewRepository(pool)}
}

func scanService(row pgx.Row) (*model.Service, error) {
	var (
		svc   model.Service
		name  []byte
		price string
	)
	err := row.Scan(
		&svc.ID,
		&name,
		&svc.Description,
		&svc.DurationMinutes,
		&price,
		&svc.Currency,
		&svc.IsActive,
		&svc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(name, &svc.Name); err != nil {
		return nil, fmt.Errorf("decode service name: %w", err)
	}
	if svc.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode service price: %w", err)
	}

	return &svc, nil
}

// Create создаёт услугу
func (r *ServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	name, err := json.Marshal(svc.Name)
	if err != nil {
		return fmt.Errorf("encode service name: %w", err)
	}

	query := `
		INSERT INTO services (name, description, duration_minutes, price, currency, is_active)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING id, created_at
	`

	err = r.Pool().QueryRow(
		ctx, query,
		name,
		svc.Description,
		svc.DurationMinutes,
		svc.Price.String(),
		svc.Currency,
		svc.IsActive,
	).Scan(&svc.ID, &svc.CreatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	return nil
}

// GetByID получает услугу по ID
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	svc, err := scanService(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}

	return svc, nil
}

// List получает услуги; onlyActive скрывает выключенные
func (r *ServiceRepository) List(ctx context.Context, onlyActive bool) ([]*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active OR NOT $1 ORDER BY id`

	rows, err := r.Pool().Query(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, svc)
	}

	return services, rows.Err()
}

// Update обновляет услугу
func (r *ServiceRepository) Update(ctx context.Context, svc *model.Service) error {
	name, err := json.Marshal(svc.Name)
	if err != nil {
		return fmt.Errorf("encode service name: %w", err)
	}

	query := `
		UPDATE services
		SET name = $1, description = $2, duration_minutes = $3, price = $4::numeric, currency = $5, is_active = $6
		WHERE id = $7
	`

	affected, err := r.ExecAffected(
		ctx, query,
		name,
		svc.Description,
		svc.DurationMinutes,
		svc.Price.String(),
		svc.Currency,
		svc.IsActive,
		svc.ID,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}

// SetActive включает или выключает услугу
func (r *ServiceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE services SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set service active: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}
