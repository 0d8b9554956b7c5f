package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

const sampleYAML = `
salon:
  name: "Studio"
  timezone: Europe/Moscow
  currency: RUB
  slot_interval_minutes: 15
  schedule:
    monday: "09:00-18:00"
    saturday: "10:00-14:00"
    sunday: closed
reviews:
  prompt_delay: 90m
api:
  cors_origins: ["https://web.telegram.org"]
`

func TestParseFile(t *testing.T) {
	file, err := ParseFile([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "Studio", file.Salon.Name)
	assert.Equal(t, 1, file.Salon.BookingPeriodMonths, "default booking period")
	assert.Equal(t, 15, file.Salon.SlotIntervalMinutes)
	assert.Equal(t, 90*time.Minute, file.Reviews.PromptDelay)
	assert.Equal(t, 10*time.Minute, file.Reviews.ScanInterval)
	assert.Equal(t, 24*time.Hour, file.API.TokenTTL)
	assert.Equal(t, []string{"https://web.telegram.org"}, file.API.CORSOrigins)

	settings, err := file.Salon.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.OpenDay(model.MustTime("09:00"), model.MustTime("18:00")), settings.Schedule.Day(model.Monday))
	assert.False(t, settings.Schedule.Day(model.Tuesday).Effective(), "missing day is closed")
	assert.False(t, settings.Schedule.Day(model.Sunday).Effective())
	assert.Equal(t, model.CurrentSettingsVersion, settings.SchemaVersion)

	loc, err := file.Salon.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"broken yaml", "salon: ["},
		{"no name", "salon:\n  schedule:\n    monday: closed\n"},
		{"unknown weekday", "salon:\n  name: x\n  schedule:\n    funday: closed\n"},
		{"bad hours", "salon:\n  name: x\n  schedule:\n    monday: \"18:00-09:00\"\n"},
		{"bad timezone", "salon:\n  name: x\n  timezone: Mars/Base\n  schedule:\n    monday: closed\n"},
		{"bad interval", "salon:\n  name: x\n  slot_interval_minutes: 1\n  schedule:\n    monday: closed\n"},
		{"no schedule", "salon:\n  name: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs(" 123, 456 ,,789")
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, ids)

	ids, err = ParseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseIDs("12a")
	assert.Error(t, err)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SALON_CONFIG", "../../config/salon.yml")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DB_DSN", "postgres://localhost/salon")
	t.Setenv("MASTER_IDS", "42")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENV", "")
	t.Setenv("WEBAPP_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []int64{42}, cfg.MasterIDs)
	assert.Equal(t, 72*time.Hour, cfg.File.Reviews.PromptTimeout)
}

func TestLoad_JWTSecretRequiredWithAPI(t *testing.T) {
	t.Setenv("SALON_CONFIG", "../../config/salon.yml")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DB_DSN", "postgres://localhost/salon")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("WEBAPP_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
