package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestRegisterUser(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	user, err := e.users.RegisterUser(ctx, TelegramProfile{TelegramID: 3003, FirstName: "Ivan", LanguageCode: "en-US"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleClient, user.Role)
	assert.Equal(t, "en", user.LanguageCode)

	master, err := e.users.RegisterUser(ctx, TelegramProfile{TelegramID: 2002, FirstName: "Ольга"})
	require.NoError(t, err)
	assert.Equal(t, e.master.ID, master.ID, "existing user is updated")
	assert.Equal(t, model.RoleMaster, master.Role)
	assert.Equal(t, "ru", master.LanguageCode)
	assert.Equal(t, "Ольга", e.userRepo.items[master.ID].FirstName)

	masters, err := e.users.Masters(ctx)
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, int64(2002), masters[0].TelegramID)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"+7 (999) 123-45-67", "+79991234567", false},
		{"89991234567", "+79991234567", false},
		{"79991234567", "+79991234567", false},
		{"+441234567890", "+441234567890", false},
		{"12345", "", true},
		{"phone", "", true},
		{"+7999+1234567", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetPhone(t *testing.T) {
	e := newEnv()
	user := &model.User{ID: e.client.ID}

	require.NoError(t, e.users.SetPhone(context.Background(), user, "8 999 000-11-22"))
	assert.Equal(t, "+79990001122", user.Phone)
	assert.Equal(t, "+79990001122", e.userRepo.items[e.client.ID].Phone)

	assert.ErrorIs(t, e.users.SetPhone(context.Background(), user, "abc"), ErrInvalidPhone)
}

func TestCatalog(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	svc := &model.Service{Name: model.PlainName("Окрашивание"), DurationMinutes: 120, Price: decimal.RequireFromString("3500.00")}
	require.NoError(t, e.catalog.Create(ctx, svc))
	assert.True(t, svc.IsActive)
	assert.Equal(t, "RUB", svc.Currency)

	invalid := &model.Service{Name: model.PlainName(" "), DurationMinutes: 30}
	assert.ErrorIs(t, e.catalog.Create(ctx, invalid), ErrInvalidService)

	active, err := e.catalog.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	toggled, err := e.catalog.ToggleActive(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	styling, err := e.catalog.Get(ctx, 2)
	require.NoError(t, err)
	styling.DurationMinutes = 45
	require.NoError(t, e.catalog.Update(ctx, styling))
	assert.Equal(t, 1, e.cache.cleared)

	_, err = e.catalog.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
