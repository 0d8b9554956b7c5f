package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// 2024-01-15 понедельник
var monday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func mondayOnlySettings() model.SalonSettings {
	s := model.SalonSettings{
		Schedule: model.WeekSchedule{
			model.Monday: model.OpenDay(model.MustTime("10:00"), model.MustTime("14:00")),
		},
		SlotIntervalMinutes: 30,
		BookingPeriodMonths: 1,
	}
	return s
}

func times(values ...string) []model.TimeOfDay {
	out := make([]model.TimeOfDay, 0, len(values))
	for _, v := range values {
		out = append(out, model.MustTime(v))
	}
	return out
}

func TestComputeSlotsForDate_FullDay(t *testing.T) {
	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings()})

	assert.Equal(t, times("10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30"), slots)
}

func TestComputeSlotsForDate_BookedServiceBlocksItsDuration(t *testing.T) {
	services := map[int64]*model.Service{7: {ID: 7, DurationMinutes: 60}}
	appointments := []*model.Appointment{
		{ID: 1, ServiceID: 7, Date: monday, Time: model.MustTime("11:00"), Status: model.AppointmentStatusConfirmed},
	}

	slots := ComputeSlotsForDate(monday, Input{
		Settings:     mondayOnlySettings(),
		Appointments: appointments,
		Services:     services,
	})

	assert.Equal(t, times("10:00", "10:30", "12:00", "12:30", "13:00", "13:30"), slots)
}

func TestComputeSlotsForDate_CancelledAppointmentFreesTime(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday, Time: model.MustTime("11:00"), DurationMinutes: 60, Status: model.AppointmentStatusCancelled},
	}

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Appointments: appointments})

	assert.Len(t, slots, 8)
}

func TestComputeSlotsForDate_CompletedAppointmentStillBlocks(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday, Time: model.MustTime("10:00"), DurationMinutes: 30, Status: model.AppointmentStatusCompleted},
	}

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Appointments: appointments})

	assert.NotContains(t, slots, model.MustTime("10:00"))
}

func TestComputeSlotsForDate_OffGridAppointment(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday, Time: model.MustTime("11:15"), DurationMinutes: 30, Status: model.AppointmentStatusPending},
	}

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Appointments: appointments})

	assert.NotContains(t, slots, model.MustTime("11:00"))
	assert.NotContains(t, slots, model.MustTime("11:30"))
	assert.Contains(t, slots, model.MustTime("12:00"))
}

func TestComputeSlotsForDate_AppointmentOnOtherDateIgnored(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday.AddDate(0, 0, 7), Time: model.MustTime("10:00"), DurationMinutes: 240, Status: model.AppointmentStatusConfirmed},
	}

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Appointments: appointments})

	assert.Len(t, slots, 8)
}

func TestComputeSlotsForDate_ClosedOverride(t *testing.T) {
	overrides := model.Overrides{"2024-01-15": model.ClosedDay}

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Overrides: overrides})

	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestComputeSlotsForDate_OverrideOpensClosedDay(t *testing.T) {
	sunday := monday.AddDate(0, 0, 6)
	overrides := model.Overrides{DateKey(sunday): model.OpenDay(model.MustTime("12:00"), model.MustTime("13:00"))}

	slots := ComputeSlotsForDate(sunday, Input{Settings: mondayOnlySettings(), Overrides: overrides})

	assert.Equal(t, times("12:00", "12:30"), slots)
}

func TestComputeSlotsForDate_MalformedScheduleIsClosed(t *testing.T) {
	tests := []struct {
		name string
		day  model.DaySchedule
	}{
		{"start equals end", model.OpenDay(model.MustTime("10:00"), model.MustTime("10:00"))},
		{"start after end", model.OpenDay(model.MustTime("18:00"), model.MustTime("10:00"))},
		{"negative start", model.DaySchedule{IsOpen: true, Start: -30, End: model.MustTime("10:00")}},
		{"closed flag", model.DaySchedule{IsOpen: false, Start: model.MustTime("10:00"), End: model.MustTime("12:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := mondayOnlySettings()
			settings.Schedule[model.Monday] = tt.day

			assert.Empty(t, ComputeSlotsForDate(monday, Input{Settings: settings}))
		})
	}
}

func TestComputeSlotsForDate_MissingWeekdayIsClosed(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)

	assert.Empty(t, ComputeSlotsForDate(tuesday, Input{Settings: mondayOnlySettings()}))
	assert.Empty(t, ComputeSlotsForDate(tuesday, Input{}))
}

func TestComputeSlotsForDate_FullyBooked(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday, Time: model.MustTime("10:00"), DurationMinutes: 240, Status: model.AppointmentStatusConfirmed},
	}

	assert.Empty(t, ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Appointments: appointments}))
}

func TestComputeSlotsForDate_PastSlotsDroppedToday(t *testing.T) {
	now := time.Date(2024, 1, 15, 11, 10, 0, 0, time.UTC)

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Now: now})

	assert.Equal(t, times("11:30", "12:00", "12:30", "13:00", "13:30"), slots)
}

func TestComputeSlotsForDate_SlotStartingNowIsKept(t *testing.T) {
	now := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)

	slots := ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Now: now})

	require.NotEmpty(t, slots)
	assert.Equal(t, model.MustTime("11:00"), slots[0])
}

func TestComputeSlotsForDate_PastFilterOnlyToday(t *testing.T) {
	now := time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC)

	assert.Len(t, ComputeSlotsForDate(monday, Input{Settings: mondayOnlySettings(), Now: now}), 8)
}

func TestComputeSlotsForDate_RequestedDurationMustFit(t *testing.T) {
	appointments := []*model.Appointment{
		{ID: 1, Date: monday, Time: model.MustTime("12:00"), DurationMinutes: 30, Status: model.AppointmentStatusConfirmed},
	}

	slots := ComputeSlotsForDate(monday, Input{
		Settings:        mondayOnlySettings(),
		Appointments:    appointments,
		DurationMinutes: 90,
	})

	// 10:30 -> 12:00 ровно до занятого времени, 12:30 -> 14:00 ровно до закрытия
	assert.Equal(t, times("10:00", "10:30", "12:30"), slots)
}

func TestComputeSlotsForDate_DefaultGranularity(t *testing.T) {
	settings := mondayOnlySettings()
	settings.SlotIntervalMinutes = 0

	assert.Len(t, ComputeSlotsForDate(monday, Input{Settings: settings}), 8)
}

func TestComputeSlotsForDate_Properties(t *testing.T) {
	settings := mondayOnlySettings()
	settings.SlotIntervalMinutes = 20
	services := map[int64]*model.Service{1: {ID: 1, DurationMinutes: 45}, 2: {ID: 2, DurationMinutes: 15}}
	appointments := []*model.Appointment{
		{ID: 1, ServiceID: 1, Date: monday, Time: model.MustTime("10:40"), Status: model.AppointmentStatusConfirmed},
		{ID: 2, ServiceID: 2, Date: monday, Time: model.MustTime("12:05"), Status: model.AppointmentStatusPending},
		{ID: 3, ServiceID: 1, Date: monday, Time: model.MustTime("13:00"), Status: model.AppointmentStatusCancelled},
	}
	in := Input{Settings: settings, Appointments: appointments, Services: services}

	first := ComputeSlotsForDate(monday, in)
	second := ComputeSlotsForDate(monday, in)
	require.Equal(t, first, second, "same input must give same output")

	day := EffectiveDay(monday, settings, nil)
	for i, s := range first {
		assert.GreaterOrEqual(t, s, day.Start)
		assert.Less(t, s, day.End)
		if i > 0 {
			assert.Less(t, first[i-1], s, "slots must be in chronological order")
		}
		slot := interval{start: s, end: s.Add(settings.SlotIntervalMinutes)}
		for _, a := range appointments {
			if !a.BlocksTime() {
				continue
			}
			booked := interval{start: a.Time, end: a.Time.Add(services[a.ServiceID].DurationMinutes)}
			assert.False(t, slot.overlaps(booked), "slot %s overlaps appointment %d", s, a.ID)
		}
	}
}

func TestCandidates_Restartable(t *testing.T) {
	day := model.OpenDay(model.MustTime("09:00"), model.MustTime("10:00"))
	seq := Candidates(day, 20)

	var firstPass, secondPass []model.TimeOfDay
	for tod := range seq {
		firstPass = append(firstPass, tod)
	}
	for tod := range seq {
		secondPass = append(secondPass, tod)
	}

	assert.Equal(t, times("09:00", "09:20", "09:40"), firstPass)
	assert.Equal(t, firstPass, secondPass)
}

func TestCandidates_EarlyStop(t *testing.T) {
	day := model.OpenDay(model.MustTime("09:00"), model.MustTime("18:00"))

	count := 0
	for range Candidates(day, 30) {
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestIsDateBookable_Window(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Schedule = model.WeekSchedule{}
	for _, wd := range model.Weekdays {
		settings.Schedule[wd] = model.OpenDay(model.MustTime("10:00"), model.MustTime("14:00"))
	}
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	in := Input{Settings: settings, Now: now}

	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-14", false},
		{"2024-01-15", true},
		{"2024-02-14", true},
		{"2024-02-15", true},
		{"2024-02-16", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			date, err := time.Parse(model.DateLayout, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, IsDateBookable(date, in))
		})
	}
}

func TestIsDateBookable_ClosedDay(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	in := Input{Settings: mondayOnlySettings(), Now: now}

	assert.True(t, IsDateBookable(monday.AddDate(0, 0, 7), in))
	assert.False(t, IsDateBookable(monday.AddDate(0, 0, 1), in))
}

func TestIsDateBookable_FullDayStaysBookable(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	next := monday.AddDate(0, 0, 7)
	in := Input{
		Settings: mondayOnlySettings(),
		Now:      now,
		Appointments: []*model.Appointment{
			{ID: 1, Date: next, Time: model.MustTime("10:00"), DurationMinutes: 240, Status: model.AppointmentStatusConfirmed},
		},
	}

	assert.True(t, IsDateBookable(next, in))
	assert.Equal(t, DayFull, DayStatusFor(next, in))
	assert.Empty(t, ComputeSlotsForDate(next, in))
}

func TestDayStatusFor(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	in := Input{Settings: mondayOnlySettings(), Now: now}

	assert.Equal(t, DayAvailable, DayStatusFor(monday, in))
	assert.Equal(t, DayClosed, DayStatusFor(monday.AddDate(0, 0, 2), in))
	assert.Equal(t, DayOutOfWindow, DayStatusFor(monday.AddDate(0, 0, -7), in))
	assert.Equal(t, DayOutOfWindow, DayStatusFor(monday.AddDate(0, 2, 0), in))
}

func TestBookingWindow_ClampsMonthEnd(t *testing.T) {
	window := NewBookingWindow(time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC), 1)

	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), window.To)
	assert.Len(t, window.Days(), 30)
}

func TestBookingWindow_DefaultsToOneMonth(t *testing.T) {
	window := NewBookingWindow(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 0)

	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), window.To)
}
