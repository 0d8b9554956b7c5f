package common

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func appointmentAt(date string, at string, minutes int, status model.AppointmentStatus) *model.Appointment {
	day, _ := time.Parse(model.DateLayout, date)
	return &model.Appointment{
		Date:            day,
		Time:            model.MustTime(at),
		DurationMinutes: minutes,
		Status:          status,
		Client:          &model.User{FirstName: "Анастасия", LastName: "Владимировна-Петрова"},
		Service:         &model.Service{Name: model.PlainName("Окрашивание")},
	}
}

func TestGenerateWeekImage(t *testing.T) {
	now := time.Date(2024, 1, 17, 12, 30, 0, 0, time.UTC)
	list := []*model.Appointment{
		appointmentAt("2024-01-15", "10:00", 60, model.AppointmentStatusCompleted),
		appointmentAt("2024-01-17", "14:00", 90, model.AppointmentStatusConfirmed),
		appointmentAt("2024-01-18", "11:30", 30, model.AppointmentStatusPending),
	}

	data, err := GenerateWeekImage(now, now, list, "ru")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	empty, err := GenerateWeekImage(now, now, nil, "ru")
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestNormalizeToWeekBounds(t *testing.T) {
	sunday := time.Date(2024, 1, 21, 18, 0, 0, 0, time.UTC)
	week := normalizeToWeekBounds(sunday)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), week.start)
	assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), week.end)
	assert.Equal(t, week.start, WeekStart(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))
}

func TestCalculateHourRange(t *testing.T) {
	hours := calculateHourRange(nil)
	assert.Equal(t, hourRange{start: 8, end: 21, total: 14}, hours)

	cancelled := appointmentAt("2024-01-15", "06:00", 60, model.AppointmentStatusCancelled)
	late := appointmentAt("2024-01-15", "19:00", 90, model.AppointmentStatusConfirmed)
	early := appointmentAt("2024-01-16", "10:00", 30, model.AppointmentStatusPending)

	hours = calculateHourRange([]*model.Appointment{cancelled, late, early})
	assert.Equal(t, 9, hours.start, "cancelled appointments do not widen the range")
	assert.Equal(t, 22, hours.end, "20:30 rounds up to 21 plus padding")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Стрижка", truncateRunes("Стрижка", 10))
	assert.Equal(t, "Окраши…", truncateRunes("Окрашивание", 7))
}
