package common

import (
	"errors"

	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAMaster    = errors.New("user is not a master")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, service.ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNotAMaster), errors.Is(err, service.ErrForbidden):
		return "❌ Эта функция доступна только мастерам"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"

	case errors.Is(err, service.ErrServiceNotFound):
		return "❌ Услуга не найдена"
	case errors.Is(err, service.ErrServiceInactive):
		return "❌ Эта услуга сейчас недоступна для записи"
	case errors.Is(err, service.ErrSlotUnavailable):
		return "❌ Это время уже занято. Выберите другое."
	case errors.Is(err, service.ErrOutsideBookingWindow):
		return "❌ На эту дату запись недоступна"
	case errors.Is(err, service.ErrAppointmentNotFound):
		return "❌ Запись не найдена"
	case errors.Is(err, service.ErrNotOwner):
		return "❌ Это не ваша запись"
	case errors.Is(err, service.ErrInvalidTransition):
		return "❌ Статус записи не позволяет это действие"
	case errors.Is(err, service.ErrTooEarlyToComplete):
		return "❌ Визит ещё не начался"
	case errors.Is(err, service.ErrNotToday):
		return "❌ Эта запись не на сегодня"
	case errors.Is(err, service.ErrInvalidCode):
		return "❌ Код не найден"
	case errors.Is(err, service.ErrInvalidSchedule):
		return "❌ Неверные часы работы. Формат: 10:00-20:00 или closed"
	case errors.Is(err, service.ErrInvalidPolicy):
		return "❌ Неверные параметры записи"
	case errors.Is(err, service.ErrPastDate):
		return "❌ Эта дата уже прошла"
	case errors.Is(err, service.ErrInvalidService):
		return "❌ Неверные данные услуги"
	case errors.Is(err, service.ErrInvalidPhone):
		return "❌ Не похоже на номер телефона. Пример: +7 999 123-45-67"
	case errors.Is(err, service.ErrReviewNotFound):
		return "❌ Отзыв не найден"

	case errors.Is(err, engagement.ErrInvalidRating):
		return "❌ Оценка должна быть от 1 до 5"
	case errors.Is(err, engagement.ErrNotEligible):
		return "❌ Для этой записи нельзя оставить отзыв"
	case errors.Is(err, engagement.ErrNotPrompted):
		return "❌ Запрос отзыва уже закрыт"
	case errors.Is(err, engagement.ErrPromptActive):
		return "⏳ Сначала ответьте на предыдущий запрос отзыва"
	case errors.Is(err, engagement.ErrAlreadyReviewed):
		return "✅ Отзыв на этот визит уже оставлен"
	case errors.Is(err, engagement.ErrEmptyReply):
		return "❌ Ответ не может быть пустым"
	default:
		return "❌ Произошла ошибка"
	}
}
