package repository

import "errors"

var (
	// ErrReviewExists по записи уже оставлен отзыв
	ErrReviewExists = errors.New("review for appointment already exists")
	// ErrStatusConflict запись не в том статусе, из которого разрешён переход
	ErrStatusConflict = errors.New("appointment status changed concurrently")
	ErrReviewNotFound = errors.New("review not found")
	// ErrPromptActive у клиента уже есть активный запрос отзыва
	ErrPromptActive = errors.New("client already has an active review prompt")
)
