package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestSettingsLoad_DefaultsSavedOnce(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	settings, err := e.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.settingsRepo.saves)
	assert.Equal(t, "UTC", settings.Timezone)

	_, err = e.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.settingsRepo.saves, "current schema is not saved again")
}

func TestSettingsLoad_MigratesLegacy(t *testing.T) {
	e := newEnv()
	e.settingsRepo.raw = []byte(`{"name":"Old","schedule":{"start":"09:00","end":"15:00","workDays":[1,2]}}`)

	settings, err := e.settings.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, e.settingsRepo.saves)
	assert.Equal(t, model.CurrentSettingsVersion, settings.SchemaVersion)
	assert.Equal(t, model.OpenDay(model.MustTime("09:00"), model.MustTime("15:00")), settings.Schedule.Day(model.Monday))
	assert.False(t, settings.Schedule.Day(model.Wednesday).Effective())

	reloaded, result, err := model.MigrateSettings(e.settingsRepo.raw)
	require.NoError(t, err)
	assert.Equal(t, model.MigrationAlreadyCurrent, result)
	assert.Equal(t, settings, reloaded)
}

func TestSettingsLoad_MalformedScheduleFallsBackToDefault(t *testing.T) {
	e := newEnv()
	e.settingsRepo.raw = []byte(`{"name":"Studio","schedule":[]}`)

	settings, err := e.settings.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Studio", settings.Name)
	assert.Equal(t, model.DefaultWeekSchedule(), settings.Schedule)
	assert.Equal(t, 1, e.settingsRepo.saves, "repaired settings are stored")
}

func TestSettingsLoad_BrokenJSON(t *testing.T) {
	e := newEnv()
	e.settingsRepo.raw = []byte(`{broken`)

	_, err := e.settings.Load(context.Background())
	assert.Error(t, err)
}

func TestUpdateDay(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.settings.UpdateDay(ctx, model.Monday, model.OpenDay(model.MustTime("15:00"), model.MustTime("10:00")))
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	settings, err := e.settings.UpdateDay(ctx, model.Sunday, model.OpenDay(model.MustTime("12:00"), model.MustTime("16:00")))
	require.NoError(t, err)
	assert.True(t, settings.Schedule.Day(model.Sunday).Effective())
	assert.Equal(t, 1, e.cache.cleared)

	ok, err := e.availability.IsDateBookable(ctx, date("2024-01-21"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGet_ReturnsCopy(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	settings, err := e.settings.Get(ctx)
	require.NoError(t, err)
	settings.Schedule[model.Monday] = model.ClosedDay

	again, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, again.Schedule.Day(model.Monday).Effective())
}

func TestSetPolicy_Validation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	for _, tc := range []struct{ months, interval int }{{0, 30}, {13, 30}, {1, 0}, {1, 300}} {
		_, err := e.settings.SetPolicy(ctx, tc.months, tc.interval, false)
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	}

	settings, err := e.settings.SetPolicy(ctx, 2, 15, true)
	require.NoError(t, err)
	assert.Equal(t, 2, settings.BookingPeriodMonths)
	assert.Equal(t, 15, settings.SlotIntervalMinutes)
	assert.True(t, settings.RequiresConfirmation)
}

func TestReplace_FillsMissingDaysAsClosed(t *testing.T) {
	e := newEnv()

	next := model.DefaultSettings()
	next.Name = "Studio"
	next.Schedule = model.WeekSchedule{model.Friday: model.OpenDay(model.MustTime("09:00"), model.MustTime("21:00"))}

	settings, err := e.settings.Replace(context.Background(), next)
	require.NoError(t, err)

	assert.Equal(t, "Studio", settings.Name)
	assert.Len(t, settings.Schedule, 7)
	assert.False(t, settings.Schedule.Day(model.Monday).Effective())
	assert.True(t, settings.Schedule.Day(model.Friday).Effective())
}

func TestOverrides(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	err := e.settings.SetOverride(ctx, date("2024-01-10"), model.ClosedDay)
	assert.ErrorIs(t, err, ErrPastDate)

	err = e.settings.SetOverride(ctx, date("2024-01-22"), model.OpenDay(model.MustTime("12:00"), model.MustTime("11:00")))
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	require.NoError(t, e.settings.SetOverride(ctx, date("2024-01-22"), model.ClosedDay))
	assert.Contains(t, e.cache.invalidated, "2024-01-22")

	slots, err := e.availability.SlotsForDate(ctx, date("2024-01-22"), 0)
	require.NoError(t, err)
	assert.Empty(t, slots, "override closes a regular monday")

	overrides, err := e.settings.Overrides(ctx)
	require.NoError(t, err)
	assert.Contains(t, overrides, "2024-01-22")

	removed, err := e.settings.ClearOverride(ctx, date("2024-01-22"))
	require.NoError(t, err)
	assert.True(t, removed)

	slots, err = e.availability.SlotsForDate(ctx, date("2024-01-22"), 0)
	require.NoError(t, err)
	assert.Len(t, slots, 8)

	removed, err = e.settings.ClearOverride(ctx, date("2024-01-22"))
	require.NoError(t, err)
	assert.False(t, removed)
}
