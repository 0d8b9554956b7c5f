package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestSlotsForDate_ServiceDurationMustFit(t *testing.T) {
	e := newEnv()

	slots, err := e.availability.SlotsForDate(context.Background(), date("2024-01-16"), e.haircut.ID)
	require.NoError(t, err)

	want := []model.TimeOfDay{
		model.MustTime("10:00"), model.MustTime("10:30"), model.MustTime("11:00"), model.MustTime("11:30"),
		model.MustTime("12:00"), model.MustTime("12:30"), model.MustTime("13:00"),
	}
	assert.Equal(t, want, slots)
}

func TestSlotsForDate_WithoutService(t *testing.T) {
	e := newEnv()

	slots, err := e.availability.SlotsForDate(context.Background(), date("2024-01-16"), 0)
	require.NoError(t, err)
	assert.Len(t, slots, 8)
}

func TestSlotsForDate_CachesFutureDates(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.availability.SlotsForDate(ctx, date("2024-01-16"), e.haircut.ID)
	require.NoError(t, err)
	_, ok := e.cache.Get(ctx, "2024-01-16", 60)
	assert.True(t, ok)

	_, err = e.availability.SlotsForDate(ctx, date("2024-01-15"), e.haircut.ID)
	require.NoError(t, err)
	_, ok = e.cache.Get(ctx, "2024-01-15", 60)
	assert.False(t, ok, "today depends on the clock")
}

func TestSlotsForDate_BookingInvalidatesCache(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	before, err := e.availability.SlotsForDate(ctx, date("2024-01-16"), e.haircut.ID)
	require.NoError(t, err)

	e.book(t, "2024-01-16", "11:00", e.haircut.ID)

	after, err := e.availability.SlotsForDate(ctx, date("2024-01-16"), e.haircut.ID)
	require.NoError(t, err)
	assert.Less(t, len(after), len(before))
	assert.NotContains(t, after, model.MustTime("11:00"))
	assert.NotContains(t, after, model.MustTime("10:30"))
}

func TestSlotsForDate_OutsideWindowIsEmpty(t *testing.T) {
	e := newEnv()

	slots, err := e.availability.SlotsForDate(context.Background(), date("2024-02-16"), e.haircut.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsForDate_InactiveService(t *testing.T) {
	e := newEnv()

	_, err := e.availability.SlotsForDate(context.Background(), date("2024-01-16"), 3)
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestIsDateBookable(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tests := []struct {
		day  string
		want bool
	}{
		{"2024-01-14", false},
		{"2024-01-15", true},
		{"2024-02-14", true},
		{"2024-02-16", false},
		{"2024-01-21", false},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			ok, err := e.availability.IsDateBookable(ctx, date(tt.day))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCalendar(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	for _, at := range []string{"10:00", "11:00", "12:00", "13:00"} {
		e.book(t, "2024-01-16", at, e.haircut.ID)
	}

	calendar, err := e.availability.Calendar(ctx, e.haircut.ID)
	require.NoError(t, err)

	require.Len(t, calendar, 32)
	byDate := map[string]CalendarDay{}
	for _, day := range calendar {
		byDate[day.Key] = day
	}

	assert.Equal(t, availability.DayAvailable, byDate["2024-01-15"].Status)
	assert.Equal(t, 7, byDate["2024-01-15"].FreeSlots)
	assert.Equal(t, availability.DayFull, byDate["2024-01-16"].Status)
	assert.Equal(t, availability.DayClosed, byDate["2024-01-21"].Status)
	assert.Equal(t, "2024-02-15", calendar[len(calendar)-1].Key)

	bookable, err := e.availability.IsDateBookable(ctx, date("2024-01-16"))
	require.NoError(t, err)
	assert.True(t, bookable, "full day stays bookable")
}
