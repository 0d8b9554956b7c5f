package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

type apiError struct {
	status  int
	code    string
	message string
}

var knownErrors = []struct {
	err error
	apiError
}{
	{service.ErrServiceNotFound, apiError{http.StatusNotFound, "service_not_found", "Услуга не найдена"}},
	{service.ErrAppointmentNotFound, apiError{http.StatusNotFound, "appointment_not_found", "Запись не найдена"}},
	{service.ErrReviewNotFound, apiError{http.StatusNotFound, "review_not_found", "Отзыв не найден"}},
	{service.ErrUserNotFound, apiError{http.StatusNotFound, "user_not_found", "Пользователь не найден"}},
	{service.ErrServiceInactive, apiError{http.StatusConflict, "service_inactive", "Услуга сейчас недоступна"}},
	{service.ErrSlotUnavailable, apiError{http.StatusConflict, "slot_unavailable", "Это время уже занято"}},
	{service.ErrOutsideBookingWindow, apiError{http.StatusUnprocessableEntity, "outside_booking_window", "На эту дату запись не открыта"}},
	{service.ErrInvalidTransition, apiError{http.StatusConflict, "invalid_transition", "Статус записи не позволяет это действие"}},
	{service.ErrTooEarlyToComplete, apiError{http.StatusConflict, "too_early", "Визит ещё не начался"}},
	{service.ErrNotOwner, apiError{http.StatusForbidden, "not_owner", "Это чужая запись"}},
	{service.ErrForbidden, apiError{http.StatusForbidden, "forbidden", "Действие доступно только мастеру"}},
	{service.ErrInvalidSchedule, apiError{http.StatusBadRequest, "invalid_schedule", "Неверные часы работы"}},
	{service.ErrInvalidPolicy, apiError{http.StatusBadRequest, "invalid_policy", "Неверные правила записи"}},
	{service.ErrPastDate, apiError{http.StatusBadRequest, "past_date", "Дата уже прошла"}},
	{service.ErrInvalidService, apiError{http.StatusBadRequest, "invalid_service", "Неверные данные услуги"}},
	{service.ErrInvalidPhone, apiError{http.StatusBadRequest, "invalid_phone", "Неверный номер телефона"}},
	{engagement.ErrInvalidRating, apiError{http.StatusBadRequest, "invalid_rating", "Оценка должна быть от 1 до 5"}},
	{engagement.ErrEmptyReply, apiError{http.StatusBadRequest, "empty_reply", "Пустой ответ"}},
	{engagement.ErrAlreadyReviewed, apiError{http.StatusConflict, "already_reviewed", "Отзыв уже оставлен"}},
	{engagement.ErrNotEligible, apiError{http.StatusConflict, "not_eligible", "По этой записи нельзя оставить отзыв"}},
	{engagement.ErrNotPrompted, apiError{http.StatusConflict, "not_prompted", "Запрос отзыва не активен"}},
	{engagement.ErrPromptActive, apiError{http.StatusConflict, "prompt_active", "Уже есть активный запрос отзыва"}},
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

// respondError переводит ошибку сервиса в HTTP ответ
func (s *Server) respondError(c *gin.Context, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			abort(c, known.status, known.code, known.message)
			return
		}
	}

	s.logger.Error("API request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	abort(c, http.StatusInternalServerError, "internal_error", "Внутренняя ошибка")
}

func badRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "bad_request", message)
}
