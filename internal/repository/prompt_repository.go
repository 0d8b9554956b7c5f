package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const promptColumns = `appointment_id, client_id, state, prompted_at, resolved_at`

// PromptRepository сохранённое состояние запросов отзывов.
// Строки в состояниях deferred и dismissed образуют множество отклонённых записей
// и никогда не удаляются.
type PromptRepository struct {
	*base.Repository
}

func NewPromptRepository(pool *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{Repository: base.NewRepository(pool)}
}

func scanPrompt(row pgx.Row) (*model.ReviewPrompt, error) {
	var p model.ReviewPrompt
	if err := row.Scan(&p.AppointmentID, &p.ClientID, &p.State, &p.PromptedAt, &p.ResolvedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromptRepository) list(ctx context.Context, query string, args ...any) ([]*model.ReviewPrompt, error) {
	rows, err := r.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*model.ReviewPrompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}

	return prompts, rows.Err()
}

// ListByClient все запросы клиента
func (r *PromptRepository) ListByClient(ctx context.Context, clientID int64) ([]*model.ReviewPrompt, error) {
	prompts, err := r.list(ctx, `SELECT `+promptColumns+` FROM review_prompts WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list prompts by client: %w", err)
	}
	return prompts, nil
}

// ListPrompted активные запросы, показанные раньше before
func (r *PromptRepository) ListPrompted(ctx context.Context, before time.Time) ([]*model.ReviewPrompt, error) {
	query := `SELECT ` + promptColumns + ` FROM review_prompts WHERE state = 'prompted' AND prompted_at <= $1`

	prompts, err := r.list(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("list prompted: %w", err)
	}
	return prompts, nil
}

// Save сохраняет состояние запроса. Отклонённый запрос не возвращается в другое состояние,
// кроме reviewed (клиент может оставить отзыв сам из истории визитов).
func (r *PromptRepository) Save(ctx context.Context, p *model.ReviewPrompt) error {
	query := `
		INSERT INTO review_prompts (appointment_id, client_id, state, prompted_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (appointment_id) DO UPDATE
		SET state = EXCLUDED.state, resolved_at = EXCLUDED.resolved_at
		WHERE review_prompts.state NOT IN ('deferred', 'dismissed') OR EXCLUDED.state = 'reviewed'
	`

	_, err := r.Pool().Exec(ctx, query, p.AppointmentID, p.ClientID, p.State, p.PromptedAt, p.ResolvedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrPromptActive
		}
		return fmt.Errorf("save prompt: %w", err)
	}
	return nil
}

// Release снимает активный запрос, который не дошёл до клиента.
// Запросы в других состояниях не трогает.
func (r *PromptRepository) Release(ctx context.Context, appointmentID int64) (bool, error) {
	tag, err := r.Pool().Exec(ctx,
		`DELETE FROM review_prompts WHERE appointment_id = $1 AND state = 'prompted'`,
		appointmentID,
	)
	if err != nil {
		return false, fmt.Errorf("release prompt: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PendingClients клиенты, у которых есть завершённые визиты без отзыва и без запроса,
// завершённые не позже completedBefore, и нет активного запроса
func (r *PromptRepository) PendingClients(ctx context.Context, completedBefore time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT a.client_id
		FROM appointments a
		WHERE a.status = 'completed'
		  AND a.updated_at <= $1
		  AND NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.appointment_id = a.id)
		  AND NOT EXISTS (SELECT 1 FROM review_prompts p WHERE p.appointment_id = a.id)
		  AND NOT EXISTS (
			SELECT 1 FROM review_prompts p
			WHERE p.client_id = a.client_id AND p.state = 'prompted'
		  )
		ORDER BY a.client_id
	`

	rows, err := r.Pool().Query(ctx, query, completedBefore)
	if err != nil {
		return nil, fmt.Errorf("list pending clients: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan client id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
