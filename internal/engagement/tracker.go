// Package engagement ведёт запросы отзывов у клиента и состояние отзывов у мастера.
//
// Tracker строится из снимка данных клиента и не ходит в хранилище:
// каждое действие возвращает Transition, который сохраняет вызывающий код.
package engagement

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNotEligible     = errors.New("appointment is not eligible for review")
	ErrNotPrompted     = errors.New("review prompt is not active for appointment")
	ErrPromptActive    = errors.New("another review prompt is already active")
	ErrAlreadyReviewed = errors.New("appointment already reviewed")
	ErrEmptyReply      = errors.New("reply text is empty")
)

// ValidateRating проверяет оценку до любого обращения к хранилищу
func ValidateRating(rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Snapshot данные клиента, нужные для решения о запросе отзыва
type Snapshot struct {
	ClientID     int64
	Appointments []*model.Appointment
	// Reviewed записи, по которым уже есть отзыв
	Reviewed map[int64]struct{}
	Prompts  []*model.ReviewPrompt
	// HintShown подсказка про "позже" уже показывалась клиенту
	HintShown bool
}

// Transition изменение состояния запроса, которое нужно сохранить
type Transition struct {
	AppointmentID int64
	ClientID      int64
	From          model.PromptState
	To            model.PromptState
	At            time.Time
	// ShowHint показать клиенту разовую подсказку (только при "позже")
	ShowHint bool
	// Review созданный отзыв (только при переходе в Reviewed)
	Review *model.Review
}

// Tracker состояние запросов отзывов одного клиента
type Tracker struct {
	clientID     int64
	appointments map[int64]*model.Appointment
	order        []int64
	reviewed     map[int64]struct{}
	dismissed    model.DismissedSet
	prompts      map[int64]*model.ReviewPrompt
	hintShown    bool
}

// New строит трекер из снимка. Снимок не изменяется.
func New(s Snapshot) *Tracker {
	t := &Tracker{
		clientID:     s.ClientID,
		appointments: make(map[int64]*model.Appointment, len(s.Appointments)),
		reviewed:     make(map[int64]struct{}, len(s.Reviewed)),
		dismissed:    model.DismissedSet{},
		prompts:      make(map[int64]*model.ReviewPrompt, len(s.Prompts)),
		hintShown:    s.HintShown,
	}

	for _, a := range s.Appointments {
		if a == nil || a.ClientID != s.ClientID {
			continue
		}
		t.appointments[a.ID] = a
		t.order = append(t.order, a.ID)
	}
	sort.SliceStable(t.order, func(i, j int) bool {
		a, b := t.appointments[t.order[i]], t.appointments[t.order[j]]
		if !a.StartsAt().Equal(b.StartsAt()) {
			return a.StartsAt().Before(b.StartsAt())
		}
		return a.ID < b.ID
	})

	for id := range s.Reviewed {
		t.reviewed[id] = struct{}{}
	}

	for _, p := range s.Prompts {
		if p == nil || p.ClientID != s.ClientID {
			continue
		}
		cp := *p
		t.prompts[p.AppointmentID] = &cp
		if cp.State.Dismissing() {
			t.dismissed.Add(p.AppointmentID)
		}
		if cp.State == model.PromptStateReviewed {
			t.reviewed[p.AppointmentID] = struct{}{}
		}
	}

	return t
}

// State текущее состояние запроса по записи
func (t *Tracker) State(appointmentID int64) model.PromptState {
	if _, ok := t.reviewed[appointmentID]; ok {
		return model.PromptStateReviewed
	}
	if p, ok := t.prompts[appointmentID]; ok && p.State != model.PromptStateNone && p.State != model.PromptStateEligible {
		return p.State
	}
	if t.dismissed.Has(appointmentID) {
		return model.PromptStateDismissed
	}

	a, ok := t.appointments[appointmentID]
	if !ok || a.Status != model.AppointmentStatusCompleted {
		return model.PromptStateNone
	}
	return model.PromptStateEligible
}

// Eligible записи, по которым можно попросить отзыв, от самой ранней
func (t *Tracker) Eligible() []*model.Appointment {
	var out []*model.Appointment
	for _, id := range t.order {
		if t.State(id) == model.PromptStateEligible {
			out = append(out, t.appointments[id])
		}
	}
	return out
}

// Active показанный сейчас запрос, nil если такого нет
func (t *Tracker) Active() *model.ReviewPrompt {
	for _, id := range t.order {
		if p, ok := t.prompts[id]; ok && p.State == model.PromptStatePrompted && t.State(id) == model.PromptStatePrompted {
			return p
		}
	}
	// запрос мог остаться по записи, которой нет в снимке
	for _, p := range t.prompts {
		if p.State == model.PromptStatePrompted && t.State(p.AppointmentID) == model.PromptStatePrompted {
			return p
		}
	}
	return nil
}

// Next запись для следующего запроса. Пока есть активный запрос, новый не выдаётся.
func (t *Tracker) Next() (*model.Appointment, bool) {
	if t.Active() != nil {
		return nil, false
	}
	eligible := t.Eligible()
	if len(eligible) == 0 {
		return nil, false
	}
	return eligible[0], true
}

// Prompt отмечает что клиенту показан запрос отзыва
func (t *Tracker) Prompt(appointmentID int64, now time.Time) (Transition, error) {
	if active := t.Active(); active != nil {
		if active.AppointmentID == appointmentID {
			// повторный показ того же запроса ничего не меняет
			return Transition{
				AppointmentID: appointmentID,
				ClientID:      t.clientID,
				From:          model.PromptStatePrompted,
				To:            model.PromptStatePrompted,
				At:            active.PromptedAt,
			}, nil
		}
		return Transition{}, ErrPromptActive
	}
	from := t.State(appointmentID)
	if from != model.PromptStateEligible {
		return Transition{}, ErrNotEligible
	}

	t.prompts[appointmentID] = &model.ReviewPrompt{
		AppointmentID: appointmentID,
		ClientID:      t.clientID,
		State:         model.PromptStatePrompted,
		PromptedAt:    now,
	}

	return Transition{
		AppointmentID: appointmentID,
		ClientID:      t.clientID,
		From:          from,
		To:            model.PromptStatePrompted,
		At:            now,
	}, nil
}

// Submit оставляет отзыв. Отзыв можно оставить и по отложенной записи,
// если клиент сам открыл её из списка визитов.
func (t *Tracker) Submit(appointmentID int64, rating int, comment string, now time.Time) (Transition, error) {
	if err := ValidateRating(rating); err != nil {
		return Transition{}, err
	}

	from := t.State(appointmentID)
	switch from {
	case model.PromptStateReviewed:
		return Transition{}, ErrAlreadyReviewed
	case model.PromptStateNone:
		return Transition{}, ErrNotEligible
	}

	t.reviewed[appointmentID] = struct{}{}
	t.resolve(appointmentID, model.PromptStateReviewed, now)

	review := &model.Review{
		AppointmentID: appointmentID,
		ClientID:      t.clientID,
		Rating:        rating,
		Comment:       strings.TrimSpace(comment),
		CreatedAt:     now,
	}

	return Transition{
		AppointmentID: appointmentID,
		ClientID:      t.clientID,
		From:          from,
		To:            model.PromptStateReviewed,
		At:            now,
		Review:        review,
	}, nil
}

// Defer клиент выбрал "позже". Запись больше не предлагается, один раз показывается подсказка.
func (t *Tracker) Defer(appointmentID int64, now time.Time) (Transition, error) {
	tr, err := t.close(appointmentID, model.PromptStateDeferred, now)
	if err != nil {
		return Transition{}, err
	}
	if !t.hintShown {
		tr.ShowHint = true
		t.hintShown = true
	}
	return tr, nil
}

// Dismiss клиент закрыл запрос
func (t *Tracker) Dismiss(appointmentID int64, now time.Time) (Transition, error) {
	return t.close(appointmentID, model.PromptStateDismissed, now)
}

// Expire закрывает запросы, на которые клиент не ответил за timeout
func (t *Tracker) Expire(now time.Time, timeout time.Duration) []Transition {
	var out []Transition
	for _, p := range t.prompts {
		if p.State != model.PromptStatePrompted || t.State(p.AppointmentID) != model.PromptStatePrompted {
			continue
		}
		if now.Sub(p.PromptedAt) < timeout {
			continue
		}
		tr, err := t.close(p.AppointmentID, model.PromptStateDismissed, now)
		if err == nil {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentID < out[j].AppointmentID })
	return out
}

// Dismissed копия множества отклонённых записей
func (t *Tracker) Dismissed() model.DismissedSet {
	out := make(model.DismissedSet, len(t.dismissed))
	for id := range t.dismissed {
		out.Add(id)
	}
	return out
}

// HintShown показывалась ли подсказка
func (t *Tracker) HintShown() bool {
	return t.hintShown
}

func (t *Tracker) close(appointmentID int64, to model.PromptState, now time.Time) (Transition, error) {
	from := t.State(appointmentID)
	if from != model.PromptStatePrompted {
		return Transition{}, ErrNotPrompted
	}

	t.dismissed.Add(appointmentID)
	t.resolve(appointmentID, to, now)

	return Transition{
		AppointmentID: appointmentID,
		ClientID:      t.clientID,
		From:          from,
		To:            to,
		At:            now,
	}, nil
}

func (t *Tracker) resolve(appointmentID int64, to model.PromptState, now time.Time) {
	p, ok := t.prompts[appointmentID]
	if !ok {
		p = &model.ReviewPrompt{AppointmentID: appointmentID, ClientID: t.clientID, PromptedAt: now}
		t.prompts[appointmentID] = p
	}
	resolvedAt := now
	p.State = to
	p.ResolvedAt = &resolvedAt
}
