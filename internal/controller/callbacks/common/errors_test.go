package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{service.ErrSlotUnavailable, "❌ Это время уже занято. Выберите другое."},
		{fmt.Errorf("book: %w", service.ErrSlotUnavailable), "❌ Это время уже занято. Выберите другое."},
		{service.ErrForbidden, "❌ Эта функция доступна только мастерам"},
		{ErrNotAMaster, "❌ Эта функция доступна только мастерам"},
		{engagement.ErrAlreadyReviewed, "✅ Отзыв на этот визит уже оставлен"},
		{service.ErrInvalidCode, "❌ Код не найден"},
		{errors.New("boom"), "❌ Произошла ошибка"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err), tt.err.Error())
	}
}

func TestParseIDFromCallback(t *testing.T) {
	id, err := ParseIDFromCallback("cancel_booking:42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseIDFromCallback("cancel_booking:x")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ParseIDFromCallback("cancel_booking")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
