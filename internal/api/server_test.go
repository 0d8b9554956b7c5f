package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/engagement"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

var (
	testClient = &model.User{ID: 1, TelegramID: 4242, FirstName: "Анна", Role: model.RoleClient, Phone: "+79990001122"}
	testMaster = &model.User{ID: 2, TelegramID: 2002, FirstName: "Ольга", Role: model.RoleMaster}
)

type fakeUsers struct {
	Users
	registered []service.TelegramProfile
}

func (f *fakeUsers) RegisterUser(_ context.Context, p service.TelegramProfile) (*model.User, error) {
	f.registered = append(f.registered, p)
	return &model.User{ID: 1, TelegramID: p.TelegramID, FirstName: p.FirstName, Role: model.RoleClient}, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	switch id {
	case testClient.ID:
		u := *testClient
		return &u, nil
	case testMaster.ID:
		u := *testMaster
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUsers) SetPhone(_ context.Context, user *model.User, raw string) error {
	phone, err := service.NormalizePhone(raw)
	if err != nil {
		return err
	}
	user.Phone = phone
	return nil
}

type fakeCatalog struct{ Catalog }

func (fakeCatalog) List(_ context.Context, onlyActive bool) ([]*model.Service, error) {
	return []*model.Service{{ID: 1, Name: model.PlainName("Стрижка"), DurationMinutes: 60, IsActive: true}}, nil
}

type fakeBookings struct {
	Bookings
	booked    []service.BookRequest
	bookErr   error
	cancelled []int64
}

func (f *fakeBookings) Book(_ context.Context, req service.BookRequest) (*model.Appointment, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.booked = append(f.booked, req)
	return &model.Appointment{ID: 10, ClientID: req.ClientID, ServiceID: req.ServiceID, Date: req.Date, Time: req.Time, Status: model.AppointmentStatusPending}, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id int64, actor *model.User) (*model.Appointment, error) {
	if !actor.IsMaster() && id != 10 {
		return nil, service.ErrNotOwner
	}
	f.cancelled = append(f.cancelled, id)
	return &model.Appointment{ID: id, Status: model.AppointmentStatusCancelled}, nil
}

func (f *fakeBookings) Get(_ context.Context, id int64) (*model.Appointment, error) {
	return &model.Appointment{ID: id, Status: model.AppointmentStatusCompleted}, nil
}

type fakeReviews struct {
	Reviews
	prompt *model.Appointment
}

func (f *fakeReviews) NextPrompt(context.Context, *model.User) (*model.Appointment, error) {
	return f.prompt, nil
}

func (f *fakeReviews) Submit(_ context.Context, client *model.User, apptID int64, rating int, comment string) (*model.Review, error) {
	if err := engagement.ValidateRating(rating); err != nil {
		return nil, err
	}
	return &model.Review{ID: 5, AppointmentID: apptID, ClientID: client.ID, Rating: rating, Comment: comment}, nil
}

func (f *fakeReviews) Defer(context.Context, *model.User, int64) (bool, error) {
	return true, nil
}

type fakeSettings struct{ Settings }

func (fakeSettings) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, value, time.UTC)
}

func (fakeSettings) Today() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func (fakeSettings) SetOverride(_ context.Context, date time.Time, _ model.DaySchedule) error {
	if date.Before(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		return service.ErrPastDate
	}
	return nil
}

type fakeNotifier struct {
	Notifier
	created   int
	cancelled []bool
	reviews   int
}

func (f *fakeNotifier) AppointmentCreated(context.Context, *model.Appointment, *model.User) {
	f.created++
}

func (f *fakeNotifier) AppointmentCancelled(_ context.Context, _ *model.Appointment, byMaster bool) {
	f.cancelled = append(f.cancelled, byMaster)
}

func (f *fakeNotifier) ReviewSubmitted(context.Context, *model.Review, *model.Appointment) {
	f.reviews++
}

type testEnv struct {
	server   *Server
	users    *fakeUsers
	bookings *fakeBookings
	reviews  *fakeReviews
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	opts.BotToken = testBotToken

	env := &testEnv{
		users:    &fakeUsers{},
		bookings: &fakeBookings{},
		reviews:  &fakeReviews{},
		notifier: &fakeNotifier{},
	}
	env.server = NewServer(opts, Services{
		Users:    env.users,
		Catalog:  fakeCatalog{},
		Bookings: env.bookings,
		Reviews:  env.reviews,
		Settings: fakeSettings{},
		Notifier: env.notifier,
	}, zap.NewNop())
	return env
}

func (e *testEnv) token(t *testing.T, user *model.User) string {
	t.Helper()
	token, _, err := e.server.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthTelegram(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.server.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	initData := signedInitData(t, `{"id":4242,"first_name":"Анна","language_code":"ru"}`, time.Unix(1_700_000_000-60, 0))

	rec := env.do(t, http.MethodPost, "/api/auth/telegram", "", gin.H{"initData": initData})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	require.Len(t, env.users.registered, 1)
	assert.Equal(t, int64(4242), env.users.registered[0].TelegramID)

	claims, err := env.server.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	rec = env.do(t, http.MethodPost, "/api/auth/telegram", "", gin.H{"initData": initData + "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_init_data", decode(t, rec)["error"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/api/services", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_auth_token", decode(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/services", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decode(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/services", env.token(t, testClient), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	services, _ := decode(t, rec)["services"].([]any)
	assert.Len(t, services, 1)
}

func TestUnknownUserToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.token(t, &model.User{ID: 99, Role: model.RoleClient})

	rec := env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user_not_found", decode(t, rec)["error"])
}

func TestMasterRoutesRequireMaster(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPut, "/api/master/overrides/2024-01-20", env.token(t, testClient), gin.H{"isOpen": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_permissions", decode(t, rec)["error"])

	rec = env.do(t, http.MethodPut, "/api/master/overrides/2024-01-20", env.token(t, testMaster), gin.H{"isOpen": false})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/master/overrides/2024-01-10", env.token(t, testMaster), gin.H{"isOpen": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "past_date", decode(t, rec)["error"])
}

func TestCreateAppointment(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.token(t, testClient)

	rec := env.do(t, http.MethodPost, "/api/appointments", token, gin.H{
		"serviceId": 1, "date": "2024-01-16", "time": "10:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.bookings.booked, 1)
	assert.Equal(t, model.MustTime("10:30"), env.bookings.booked[0].Time)
	assert.Equal(t, "+79990001122", env.bookings.booked[0].Phone)
	assert.Equal(t, 1, env.notifier.created)

	env.bookings.bookErr = service.ErrSlotUnavailable
	rec = env.do(t, http.MethodPost, "/api/appointments", token, gin.H{
		"serviceId": 1, "date": "2024-01-16", "time": "10:30",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_unavailable", decode(t, rec)["error"])
	assert.Equal(t, 1, env.notifier.created)
}

func TestCreateAppointment_BadInput(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.token(t, testClient)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing service", gin.H{"date": "2024-01-16", "time": "10:30"}},
		{"bad date", gin.H{"serviceId": 1, "date": "16.01.2024", "time": "10:30"}},
		{"bad time", gin.H{"serviceId": 1, "date": "2024-01-16", "time": "25:00"}},
		{"bad phone", gin.H{"serviceId": 1, "date": "2024-01-16", "time": "10:30", "phone": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/appointments", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, env.bookings.booked)
}

func TestCancelAppointment(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/appointments/11/cancel", env.token(t, testClient), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_owner", decode(t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/api/appointments/10/cancel", env.token(t, testClient), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/master/appointments/11/cancel", env.token(t, testMaster), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []int64{10, 11}, env.bookings.cancelled)
	assert.Equal(t, []bool{false, true}, env.notifier.cancelled)

	rec = env.do(t, http.MethodPost, "/api/appointments/abc/cancel", env.token(t, testClient), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewFlow(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.token(t, testClient)

	rec := env.do(t, http.MethodGet, "/api/review-prompt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["prompt"])

	env.reviews.prompt = &model.Appointment{ID: 10, Status: model.AppointmentStatusCompleted}
	rec = env.do(t, http.MethodGet, "/api/review-prompt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["prompt"])

	rec = env.do(t, http.MethodPost, "/api/review-prompt/10/defer", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["showHint"])

	rec = env.do(t, http.MethodPost, "/api/reviews", token, gin.H{"appointmentId": 10, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_rating", decode(t, rec)["error"])
	assert.Zero(t, env.notifier.reviews)

	rec = env.do(t, http.MethodPost, "/api/reviews", token, gin.H{"appointmentId": 10, "rating": 5, "comment": "Спасибо"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.notifier.reviews)
}

func TestUpdatePhone(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.token(t, testClient)

	rec := env.do(t, http.MethodPut, "/api/profile/phone", token, gin.H{"phone": "8 999 111-22-33"})
	require.Equal(t, http.StatusOK, rec.Code)
	user, _ := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "+79991112233", user["phone"])

	rec = env.do(t, http.MethodPut, "/api/profile/phone", token, gin.H{"phone": "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_phone", decode(t, rec)["error"])
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, Options{RateLimitRequests: 2, RateLimitWindow: time.Hour})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/healthz", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rate_limit_exceeded"))
}
