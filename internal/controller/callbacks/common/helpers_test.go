package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestParseIDFromCallback_IDData(t *testing.T) {
	id, err := ParseIDFromCallback(IDData(CancelBooking, 42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseIDFromCallback("cancel_booking:abc")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseIDFromCallback("cancel_booking")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseSlotArgs(t *testing.T) {
	data := BookSlotData(BookConfirm, 7, "2024-01-16", model.MustTime("10:30"))
	assert.Equal(t, "book_confirm:7:2024-01-16:630", data)

	args, err := ParseSlotArgs(data, BookConfirm)
	require.NoError(t, err)
	assert.Equal(t, SlotArgs{ServiceID: 7, Date: "2024-01-16", Time: model.MustTime("10:30")}, args)

	tests := []string{
		"book_confirm:7:2024-01-16",
		"book_confirm:x:2024-01-16:630",
		"book_confirm:7:2024-01-16:99999",
		"book_slot:7:2024-01-16:630",
	}
	for _, data := range tests {
		t.Run(data, func(t *testing.T) {
			_, err := ParseSlotArgs(data, BookConfirm)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestParseRateArgs(t *testing.T) {
	appointmentID, rating, err := ParseRateArgs(RateData(15, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(15), appointmentID)
	assert.Equal(t, 4, rating)

	_, _, err = ParseRateArgs("rate:15")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, _, err = ParseRateArgs("rate:15:five")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseArgs_DatesPage(t *testing.T) {
	args, err := ParseArgs(BookDatesData(3, 2), BookDatesPage, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, args)
}

func TestUserLanguage(t *testing.T) {
	assert.Equal(t, "ru", UserLanguage(nil))
	assert.Equal(t, "ru", UserLanguage(&model.User{}))
	assert.Equal(t, "en", UserLanguage(&model.User{LanguageCode: "en"}))
}
