package engagement

import (
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// Состояние отзыва у мастера: два независимых флага, прочитан и есть ответ.

// MarkRead отмечает отзыв прочитанным. Возвращает true если флаг изменился.
func MarkRead(review *model.Review) bool {
	if review == nil || review.IsRead {
		return false
	}
	review.IsRead = true
	return true
}

// MarkAllRead отмечает все отзывы прочитанными и возвращает ID изменённых
func MarkAllRead(reviews []*model.Review) []int64 {
	var changed []int64
	for _, r := range reviews {
		if MarkRead(r) {
			changed = append(changed, r.ID)
		}
	}
	return changed
}

// SetReply задаёт или меняет ответ мастера. Флаг прочтения не трогается.
func SetReply(review *model.Review, text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyReply
	}
	review.Reply = &text
	review.RepliedAt = &now
	return nil
}

// UnreadCount число непрочитанных отзывов
func UnreadCount(reviews []*model.Review) int {
	n := 0
	for _, r := range reviews {
		if r != nil && !r.IsRead {
			n++
		}
	}
	return n
}
