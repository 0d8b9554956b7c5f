package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review отзыв клиента о визите
type Review struct {
	ID            int64      `json:"id"`
	AppointmentID int64      `json:"appointmentId"` // не больше одного отзыва на запись
	ClientID      int64      `json:"clientId"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment"`
	Reply         *string    `json:"reply,omitempty"`
	IsRead        bool       `json:"isRead"`
	CreatedAt     time.Time  `json:"date"`
	RepliedAt     *time.Time `json:"repliedAt,omitempty"`

	Client *User `json:"client,omitempty"`
}

// HasReply есть ли ответ мастера
func (r *Review) HasReply() bool {
	return r.Reply != nil && *r.Reply != ""
}

// PromptState состояние запроса отзыва по записи
type PromptState string

const (
	PromptStateNone      PromptState = ""          // Запрос не нужен
	PromptStateEligible  PromptState = "eligible"  // Можно спросить
	PromptStatePrompted  PromptState = "prompted"  // Запрос показан
	PromptStateReviewed  PromptState = "reviewed"  // Отзыв оставлен
	PromptStateDeferred  PromptState = "deferred"  // Клиент выбрал "позже"
	PromptStateDismissed PromptState = "dismissed" // Клиент закрыл запрос
)

// Dismissing состояние навсегда исключает запись из запросов
func (s PromptState) Dismissing() bool {
	return s == PromptStateDeferred || s == PromptStateDismissed
}

// ReviewPrompt сохранённое состояние запроса отзыва
type ReviewPrompt struct {
	AppointmentID int64       `json:"appointmentId"`
	ClientID      int64       `json:"clientId"`
	State         PromptState `json:"state"`
	PromptedAt    time.Time   `json:"promptedAt"`
	ResolvedAt    *time.Time  `json:"resolvedAt,omitempty"`
}

// DismissedSet записи, по которым клиент отказался оставлять отзыв. Только растёт.
type DismissedSet map[int64]struct{}

// Add добавляет запись в множество
func (s DismissedSet) Add(appointmentID int64) {
	s[appointmentID] = struct{}{}
}

// Has проверяет наличие записи
func (s DismissedSet) Has(appointmentID int64) bool {
	_, ok := s[appointmentID]
	return ok
}
