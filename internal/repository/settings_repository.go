package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository настройки салона и исключения из расписания
type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(pool)}
}

// LoadRaw возвращает сохранённые настройки как есть, nil если их ещё нет.
// Разбор и миграция схемы выполняются выше.
func (r *SettingsRepository) LoadRaw(ctx context.Context) ([]byte, error) {
	var data []byte
	err := r.Pool().QueryRow(ctx, `SELECT data FROM salon_settings WHERE id = 1`).Scan(&data)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return data, nil
}

// Save сохраняет настройки салона
func (r *SettingsRepository) Save(ctx context.Context, settings model.SalonSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `
		INSERT INTO salon_settings (id, data, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := r.Pool().Exec(ctx, query, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ListOverrides исключения начиная с даты from
func (r *SettingsRepository) ListOverrides(ctx context.Context, from time.Time) (model.Overrides, error) {
	query := `
		SELECT date::text, is_open, start_minute, end_minute
		FROM schedule_overrides
		WHERE date >= $1::date
		ORDER BY date
	`

	rows, err := r.Pool().Query(ctx, query, from.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	overrides := model.Overrides{}
	for rows.Next() {
		var (
			date       string
			isOpen     bool
			start, end int
		)
		if err := rows.Scan(&date, &isOpen, &start, &end); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides[date] = model.DaySchedule{IsOpen: isOpen, Start: model.TimeOfDay(start), End: model.TimeOfDay(end)}
	}

	return overrides, rows.Err()
}

// SetOverride задаёт исключение на дату (закрытый день или особые часы)
func (r *SettingsRepository) SetOverride(ctx context.Context, override model.ScheduleOverride) error {
	query := `
		INSERT INTO schedule_overrides (date, is_open, start_minute, end_minute, updated_at)
		VALUES ($1::date, $2, $3, $4, NOW())
		ON CONFLICT (date) DO UPDATE
		SET is_open = EXCLUDED.is_open, start_minute = EXCLUDED.start_minute,
		    end_minute = EXCLUDED.end_minute, updated_at = NOW()
	`

	day := override.Day
	_, err := r.Pool().Exec(ctx, query, override.Date, day.IsOpen, int(day.Start), int(day.End))
	if err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

// DeleteOverride удаляет исключение. Возвращает false если его не было.
func (r *SettingsRepository) DeleteOverride(ctx context.Context, date string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM schedule_overrides WHERE date = $1::date`, date)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}
	return affected > 0, nil
}
