package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, client_id, client_phone, service_id, date::text, start_minute, duration_minutes, status, code::text, comment, created_at, updated_at`

// AppointmentRepository записи клиентов.
// Даты хранятся как DATE и возвращаются полуночью в часовом поясе салона.
type AppointmentRepository struct {
	*base.Repository
	loc *time.Location
}

func NewAppointmentRepository(pool *pgxpool.Pool, loc *time.Location) *AppointmentRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentRepository{Repository: base.NewRepository(pool), loc: loc}
}

func (r *AppointmentRepository) scan(row pgx.Row) (*model.Appointment, error) {
	var (
		a           model.Appointment
		date, code  string
		startMinute int
	)
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.ClientPhone,
		&a.ServiceID,
		&date,
		&startMinute,
		&a.DurationMinutes,
		&a.Status,
		&code,
		&a.Comment,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.Date, err = time.ParseInLocation(model.DateLayout, date, r.loc); err != nil {
		return nil, fmt.Errorf("parse appointment date: %w", err)
	}
	if a.Code, err = uuid.Parse(code); err != nil {
		return nil, fmt.Errorf("parse appointment code: %w", err)
	}
	a.Time = model.TimeOfDay(startMinute)

	return &a, nil
}

func (r *AppointmentRepository) list(ctx context.Context, q base.Querier, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}

// dayLockKey ключ advisory lock на календарный день
func dayLockKey(date string) int64 {
	h := fnv.New64a()
	h.Write([]byte("appointments:" + date))
	return int64(h.Sum64())
}

// Create создаёт запись. Перед вставкой берётся блокировка на день и вызывается check
// со всеми записями этого дня: две параллельные брони не займут одно и то же время.
// Ошибка check возвращается как есть.
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment, check func(existing []*model.Appointment) error) error {
	date := a.DateKey()

	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, dayLockKey(date)); err != nil {
			return fmt.Errorf("lock appointment day: %w", err)
		}

		existing, err := r.list(ctx, tx, `SELECT `+appointmentColumns+` FROM appointments WHERE date = $1::date ORDER BY start_minute, id`, date)
		if err != nil {
			return fmt.Errorf("list appointments by date: %w", err)
		}

		if check != nil {
			if err := check(existing); err != nil {
				return err
			}
		}

		if a.Code == uuid.Nil {
			a.Code = uuid.New()
		}

		query := `
			INSERT INTO appointments (client_id, client_phone, service_id, date, start_minute, duration_minutes, status, code, comment)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8::uuid, $9)
			RETURNING id, created_at, updated_at
		`

		err = tx.QueryRow(
			ctx, query,
			a.ClientID,
			a.ClientPhone,
			a.ServiceID,
			date,
			int(a.Time),
			a.DurationMinutes,
			a.Status,
			a.Code.String(),
			a.Comment,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		return nil
	})
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := r.scan(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return a, nil
}

// GetByCode получает запись по коду отметки о приходе
func (r *AppointmentRepository) GetByCode(ctx context.Context, code uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE code = $1::uuid`

	a, err := r.scan(r.Pool().QueryRow(ctx, query, code.String()))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by code: %w", err)
	}

	return a, nil
}

// ListByDate все записи на дату, включая отменённые
func (r *AppointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE date = $1::date ORDER BY start_minute, id`

	appointments, err := r.list(ctx, r.Pool(), query, date.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return appointments, nil
}

// ListByRange записи с from по to включительно
func (r *AppointmentRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, start_minute, id
	`

	appointments, err := r.list(ctx, r.Pool(), query, from.Format(model.DateLayout), to.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list appointments by range: %w", err)
	}
	return appointments, nil
}

// ListByClient все записи клиента, новые первыми
func (r *AppointmentRepository) ListByClient(ctx context.Context, clientID int64) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE client_id = $1
		ORDER BY date DESC, start_minute DESC, id DESC
	`

	appointments, err := r.list(ctx, r.Pool(), query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by client: %w", err)
	}
	return appointments, nil
}

// UpdateStatus меняет статус, только если текущий статус входит в from
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, from []model.AppointmentStatus, to model.AppointmentStatus) error {
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`

	affected, err := r.ExecAffected(ctx, query, to, id, allowed)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}
