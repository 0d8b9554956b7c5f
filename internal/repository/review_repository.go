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

const reviewColumns = `
	r.id, r.appointment_id, r.client_id, r.rating, r.comment, r.reply, r.is_read, r.created_at, r.replied_at,
	u.telegram_id, u.username, u.first_name, u.last_name
`

// ReviewRepository отзывы клиентов. Хранилище - последняя инстанция
// в вопросе "один отзыв на запись".
type ReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{Repository: base.NewRepository(pool)}
}

func scanReview(row pgx.Row) (*model.Review, error) {
	var (
		review model.Review
		client model.User
	)
	err := row.Scan(
		&review.ID,
		&review.AppointmentID,
		&review.ClientID,
		&review.Rating,
		&review.Comment,
		&review.Reply,
		&review.IsRead,
		&review.CreatedAt,
		&review.RepliedAt,
		&client.TelegramID,
		&client.Username,
		&client.FirstName,
		&client.LastName,
	)
	if err != nil {
		return nil, err
	}

	client.ID = review.ClientID
	review.Client = &client
	return &review, nil
}

// Create сохраняет отзыв. Повторный отзыв на ту же запись возвращает ErrReviewExists.
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (appointment_id, client_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	createdAt := review.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := r.Pool().QueryRow(
		ctx, query,
		review.AppointmentID,
		review.ClientID,
		review.Rating,
		review.Comment,
		createdAt,
	).Scan(&review.ID)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrReviewExists
		}
		return fmt.Errorf("create review: %w", err)
	}

	review.CreatedAt = createdAt
	return nil
}

// GetByID получает отзыв по ID
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r JOIN users u ON u.id = r.client_id WHERE r.id = $1`

	review, err := scanReview(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return review, nil
}

// GetByAppointment получает отзыв по записи
func (r *ReviewRepository) GetByAppointment(ctx context.Context, appointmentID int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r JOIN users u ON u.id = r.client_id WHERE r.appointment_id = $1`

	review, err := scanReview(r.Pool().QueryRow(ctx, query, appointmentID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by appointment: %w", err)
	}

	return review, nil
}

// List отзывы от новых к старым; onlyUnread оставляет только непрочитанные
func (r *ReviewRepository) List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.id = r.client_id
		WHERE NOT r.is_read OR NOT $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.Pool().Query(ctx, query, onlyUnread, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// ReviewedAppointments записи клиента, по которым уже есть отзыв
func (r *ReviewRepository) ReviewedAppointments(ctx context.Context, clientID int64) (map[int64]struct{}, error) {
	rows, err := r.Pool().Query(ctx, `SELECT appointment_id FROM reviews WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list reviewed appointments: %w", err)
	}
	defer rows.Close()

	reviewed := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reviewed appointment: %w", err)
		}
		reviewed[id] = struct{}{}
	}

	return reviewed, rows.Err()
}

// MarkRead отмечает отзыв прочитанным. Возвращает false если он уже был прочитан.
func (r *ReviewRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE reviews SET is_read = TRUE WHERE id = $1 AND NOT is_read`, id)
	if err != nil {
		return false, fmt.Errorf("mark review read: %w", err)
	}
	return affected > 0, nil
}

// MarkAllRead отмечает все отзывы прочитанными и возвращает число изменённых
func (r *ReviewRepository) MarkAllRead(ctx context.Context) (int64, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE reviews SET is_read = TRUE WHERE NOT is_read`)
	if err != nil {
		return 0, fmt.Errorf("mark all reviews read: %w", err)
	}
	return affected, nil
}

// SetReply сохраняет ответ мастера; флаг прочтения не меняется
func (r *ReviewRepository) SetReply(ctx context.Context, id int64, reply string, at time.Time) error {
	affected, err := r.ExecAffected(ctx, `UPDATE reviews SET reply = $1, replied_at = $2 WHERE id = $3`, reply, at, id)
	if err != nil {
		return fmt.Errorf("set review reply: %w", err)
	}

	if affected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// UnreadCount число непрочитанных отзывов
func (r *ReviewRepository) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := r.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE NOT is_read`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread reviews: %w", err)
	}
	return count, nil
}

// AverageRating средняя оценка и число отзывов
func (r *ReviewRepository) AverageRating(ctx context.Context) (float64, int, error) {
	var (
		avg   float64
		count int
	)
	err := r.Pool().QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews`).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, count, nil
}
