package api

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

const testBotToken = "123456:TEST-token"

// signedInitData собирает initData так же, как это делает Telegram
func signedInitData(t *testing.T, userJSON string, authDate time.Time) string {
	t.Helper()

	values := url.Values{}
	values.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	values.Set("user", userJSON)
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("hash", signInitData(values, testBotToken))
	return values.Encode()
}

func TestValidateInitData(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := signedInitData(t, `{"id":4242,"first_name":"Анна","username":"anna","language_code":"ru"}`, now.Add(-time.Hour))

	user, err := ValidateInitData(raw, testBotToken, InitDataMaxAge, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), user.ID)
	assert.Equal(t, "Анна", user.FirstName)
	assert.Equal(t, "ru", user.LanguageCode)
}

func TestValidateInitData_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := signedInitData(t, `{"id":4242,"first_name":"Анна"}`, now.Add(-time.Hour))

	tampered, err := url.ParseQuery(valid)
	require.NoError(t, err)
	tampered.Set("user", `{"id":1,"first_name":"Mallory"}`)

	tests := []struct {
		name    string
		raw     string
		token   string
		wantErr error
	}{
		{"wrong bot token", valid, "other:token", ErrInitDataInvalid},
		{"tampered user", tampered.Encode(), testBotToken, ErrInitDataInvalid},
		{"no hash", "auth_date=1&user=%7B%7D", testBotToken, ErrInitDataInvalid},
		{"expired", signedInitData(t, `{"id":4242}`, now.Add(-25*time.Hour)), testBotToken, ErrInitDataExpired},
		{"no user id", signedInitData(t, `{"first_name":"x"}`, now), testBotToken, ErrInitDataInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateInitData(tt.raw, tt.token, InitDataMaxAge, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &model.User{ID: 7, TelegramID: 4242, Role: model.RoleMaster}

	token, expiresAt, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(4242), claims.TelegramID)
	assert.Equal(t, "master", claims.Role)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
