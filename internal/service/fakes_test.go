package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/repository"
)

// Хранилища в памяти для тестов сервисов

type fakeSettingsStore struct {
	raw       []byte
	saves     int
	overrides map[string]model.DaySchedule
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{overrides: map[string]model.DaySchedule{}}
}

func (f *fakeSettingsStore) LoadRaw(context.Context) ([]byte, error) { return f.raw, nil }

func (f *fakeSettingsStore) Save(_ context.Context, settings model.SalonSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	f.raw = data
	f.saves++
	return nil
}

func (f *fakeSettingsStore) ListOverrides(_ context.Context, from time.Time) (model.Overrides, error) {
	out := model.Overrides{}
	for date, day := range f.overrides {
		if date >= from.Format(model.DateLayout) {
			out[date] = day
		}
	}
	return out, nil
}

func (f *fakeSettingsStore) SetOverride(_ context.Context, o model.ScheduleOverride) error {
	f.overrides[o.Date] = o.Day
	return nil
}

func (f *fakeSettingsStore) DeleteOverride(_ context.Context, date string) (bool, error) {
	_, ok := f.overrides[date]
	delete(f.overrides, date)
	return ok, nil
}

type fakeServiceStore struct {
	items map[int64]*model.Service
	next  int64
}

func newFakeServiceStore(services ...*model.Service) *fakeServiceStore {
	f := &fakeServiceStore{items: map[int64]*model.Service{}}
	for _, s := range services {
		cp := *s
		f.items[s.ID] = &cp
		if s.ID > f.next {
			f.next = s.ID
		}
	}
	return f
}

func (f *fakeServiceStore) Create(_ context.Context, svc *model.Service) error {
	f.next++
	svc.ID = f.next
	cp := *svc
	f.items[svc.ID] = &cp
	return nil
}

func (f *fakeServiceStore) GetByID(_ context.Context, id int64) (*model.Service, error) {
	svc, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *svc
	return &cp, nil
}

func (f *fakeServiceStore) List(_ context.Context, onlyActive bool) ([]*model.Service, error) {
	var out []*model.Service
	for _, svc := range f.items {
		if onlyActive && !svc.IsActive {
			continue
		}
		cp := *svc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeServiceStore) Update(_ context.Context, svc *model.Service) error {
	cp := *svc
	f.items[svc.ID] = &cp
	return nil
}

func (f *fakeServiceStore) SetActive(_ context.Context, id int64, active bool) error {
	f.items[id].IsActive = active
	return nil
}

type fakeAppointmentStore struct {
	mu    sync.Mutex
	items map[int64]*model.Appointment
	next  int64
	now   func() time.Time
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{items: map[int64]*model.Appointment{}, now: time.Now}
}

func (f *fakeAppointmentStore) add(a *model.Appointment) *model.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	a.ID = f.next
	if a.Code == uuid.Nil {
		a.Code = uuid.New()
	}
	cp := *a
	f.items[a.ID] = &cp
	return a
}

func (f *fakeAppointmentStore) snapshot(filter func(*model.Appointment) bool) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range f.items {
		if filter(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt().Equal(out[j].StartsAt()) {
			return out[i].StartsAt().Before(out[j].StartsAt())
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeAppointmentStore) Create(_ context.Context, a *model.Appointment, check func([]*model.Appointment) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing := f.snapshot(func(x *model.Appointment) bool { return x.DateKey() == a.DateKey() })
	if check != nil {
		if err := check(existing); err != nil {
			return err
		}
	}

	f.next++
	a.ID = f.next
	a.CreatedAt = f.now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	cp.Service, cp.Client = nil, nil
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentStore) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentStore) GetByCode(_ context.Context, code uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.Code == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentStore) ListByDate(_ context.Context, date time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := date.Format(model.DateLayout)
	return f.snapshot(func(a *model.Appointment) bool { return a.DateKey() == key }), nil
}

func (f *fakeAppointmentStore) ListByRange(_ context.Context, from, to time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lo, hi := from.Format(model.DateLayout), to.Format(model.DateLayout)
	return f.snapshot(func(a *model.Appointment) bool { return a.DateKey() >= lo && a.DateKey() <= hi }), nil
}

func (f *fakeAppointmentStore) ListByClient(_ context.Context, clientID int64) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(func(a *model.Appointment) bool { return a.ClientID == clientID }), nil
}

func (f *fakeAppointmentStore) UpdateStatus(_ context.Context, id int64, from []model.AppointmentStatus, to model.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return repository.ErrStatusConflict
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			a.UpdatedAt = f.now()
			return nil
		}
	}
	return repository.ErrStatusConflict
}

type fakeReviewStore struct {
	items map[int64]*model.Review
	next  int64
	calls int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{items: map[int64]*model.Review{}}
}

func (f *fakeReviewStore) Create(_ context.Context, r *model.Review) error {
	f.calls++
	for _, existing := range f.items {
		if existing.AppointmentID == r.AppointmentID {
			return repository.ErrReviewExists
		}
	}
	f.next++
	r.ID = f.next
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeReviewStore) GetByID(_ context.Context, id int64) (*model.Review, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewStore) List(_ context.Context, onlyUnread bool, limit, offset int) ([]*model.Review, error) {
	var out []*model.Review
	for _, r := range f.items {
		if onlyUnread && r.IsRead {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReviewStore) ReviewedAppointments(_ context.Context, clientID int64) (map[int64]struct{}, error) {
	out := map[int64]struct{}{}
	for _, r := range f.items {
		if r.ClientID == clientID {
			out[r.AppointmentID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeReviewStore) MarkRead(_ context.Context, id int64) (bool, error) {
	r, ok := f.items[id]
	if !ok || r.IsRead {
		return false, nil
	}
	r.IsRead = true
	return true, nil
}

func (f *fakeReviewStore) MarkAllRead(context.Context) (int64, error) {
	var n int64
	for _, r := range f.items {
		if !r.IsRead {
			r.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeReviewStore) SetReply(_ context.Context, id int64, reply string, at time.Time) error {
	r, ok := f.items[id]
	if !ok {
		return repository.ErrReviewNotFound
	}
	r.Reply = &reply
	r.RepliedAt = &at
	return nil
}

func (f *fakeReviewStore) UnreadCount(context.Context) (int, error) {
	n := 0
	for _, r := range f.items {
		if !r.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeReviewStore) AverageRating(context.Context) (float64, int, error) {
	if len(f.items) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range f.items {
		sum += r.Rating
	}
	return float64(sum) / float64(len(f.items)), len(f.items), nil
}

type fakePromptStore struct {
	items        map[int64]*model.ReviewPrompt
	beforeSave   func()
	appointments *fakeAppointmentStore
	reviews      *fakeReviewStore
}

func newFakePromptStore(appointments *fakeAppointmentStore, reviews *fakeReviewStore) *fakePromptStore {
	return &fakePromptStore{items: map[int64]*model.ReviewPrompt{}, appointments: appointments, reviews: reviews}
}

func (f *fakePromptStore) ListByClient(_ context.Context, clientID int64) ([]*model.ReviewPrompt, error) {
	var out []*model.ReviewPrompt
	for _, p := range f.items {
		if p.ClientID == clientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePromptStore) ListPrompted(_ context.Context, before time.Time) ([]*model.ReviewPrompt, error) {
	var out []*model.ReviewPrompt
	for _, p := range f.items {
		if p.State == model.PromptStatePrompted && !p.PromptedAt.After(before) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePromptStore) Save(_ context.Context, p *model.ReviewPrompt) error {
	if f.beforeSave != nil {
		f.beforeSave()
	}
	if p.State == model.PromptStatePrompted {
		for _, other := range f.items {
			if other.ClientID == p.ClientID && other.AppointmentID != p.AppointmentID && other.State == model.PromptStatePrompted {
				return repository.ErrPromptActive
			}
		}
	}
	if existing, ok := f.items[p.AppointmentID]; ok && existing.State.Dismissing() && p.State != model.PromptStateReviewed {
		return nil
	}
	cp := *p
	f.items[p.AppointmentID] = &cp
	return nil
}

func (f *fakePromptStore) Release(_ context.Context, appointmentID int64) (bool, error) {
	if p, ok := f.items[appointmentID]; ok && p.State == model.PromptStatePrompted {
		delete(f.items, appointmentID)
		return true, nil
	}
	return false, nil
}

func (f *fakePromptStore) PendingClients(ctx context.Context, completedBefore time.Time) ([]int64, error) {
	active := map[int64]bool{}
	for _, p := range f.items {
		if p.State == model.PromptStatePrompted {
			active[p.ClientID] = true
		}
	}

	seen := map[int64]bool{}
	var out []int64
	for _, a := range f.appointments.items {
		if a.Status != model.AppointmentStatusCompleted || a.UpdatedAt.After(completedBefore) {
			continue
		}
		if _, ok := f.items[a.ID]; ok {
			continue
		}
		reviewed, _ := f.reviews.ReviewedAppointments(ctx, a.ClientID)
		if _, ok := reviewed[a.ID]; ok || active[a.ClientID] || seen[a.ClientID] {
			continue
		}
		seen[a.ClientID] = true
		out = append(out, a.ClientID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type fakeUserStore struct {
	items map[int64]*model.User
	next  int64
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	f := &fakeUserStore{items: map[int64]*model.User{}}
	for _, u := range users {
		cp := *u
		f.items[u.ID] = &cp
		if u.ID > f.next {
			f.next = u.ID
		}
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.next++
	u.ID = f.next
	cp := *u
	f.items[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, u := range f.items {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByIDs(_ context.Context, ids []int64) (map[int64]*model.User, error) {
	out := map[int64]*model.User{}
	for _, id := range ids {
		if u, ok := f.items[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeUserStore) ListMasters(context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.items {
		if u.IsMaster() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, u *model.User) error {
	cp := *u
	f.items[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) SetPhone(_ context.Context, id int64, phone string) error {
	f.items[id].Phone = phone
	return nil
}

func (f *fakeUserStore) SetReviewHintShown(_ context.Context, id int64) error {
	f.items[id].ReviewHintShown = true
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]model.TimeOfDay
	invalidated []string
	cleared     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]model.TimeOfDay{}}
}

func cacheKey(date string, duration int) string {
	return date + "/" + strconv.Itoa(duration)
}

func (c *fakeCache) Get(_ context.Context, date string, duration int) ([]model.TimeOfDay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.entries[cacheKey(date, duration)]
	return slots, ok
}

func (c *fakeCache) Set(_ context.Context, date string, duration int, slots []model.TimeOfDay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(date, duration)] = slots
}

func (c *fakeCache) InvalidateDate(_ context.Context, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, date)
	for k := range c.entries {
		if strings.HasPrefix(k, date+"/") {
			delete(c.entries, k)
		}
	}
}

func (c *fakeCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	c.entries = map[string][]model.TimeOfDay{}
}

// env собранные сервисы поверх фейков с фиксированными часами
type env struct {
	now          time.Time
	settingsRepo *fakeSettingsStore
	serviceRepo  *fakeServiceStore
	appointments *fakeAppointmentStore
	reviewRepo   *fakeReviewStore
	promptRepo   *fakePromptStore
	userRepo     *fakeUserStore
	cache        *fakeCache

	settings     *SettingsService
	availability *AvailabilityService
	booking      *BookingService
	reviews      *ReviewService
	users        *UserService
	catalog      *CatalogService

	client  *model.User
	master  *model.User
	haircut *model.Service
}

// 2024-01-15 понедельник, 09:00
var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func newEnv() *env {
	e := &env{now: testNow}
	clock := func() time.Time { return e.now }
	logger := zap.NewNop()

	e.client = &model.User{ID: 1, TelegramID: 1001, FirstName: "Анна", Phone: "+79990000000", Role: model.RoleClient}
	e.master = &model.User{ID: 2, TelegramID: 2002, FirstName: "Мастер", Role: model.RoleMaster}
	e.haircut = &model.Service{ID: 1, Name: model.PlainName("Стрижка"), DurationMinutes: 60, Price: decimal.NewFromInt(1500), IsActive: true}

	e.settingsRepo = newFakeSettingsStore()
	e.serviceRepo = newFakeServiceStore(
		e.haircut,
		&model.Service{ID: 2, Name: model.PlainName("Укладка"), DurationMinutes: 30, Price: decimal.NewFromInt(800), IsActive: true},
		&model.Service{ID: 3, Name: model.PlainName("Архив"), DurationMinutes: 90, IsActive: false},
	)
	e.appointments = newFakeAppointmentStore()
	e.appointments.now = clock
	e.reviewRepo = newFakeReviewStore()
	e.promptRepo = newFakePromptStore(e.appointments, e.reviewRepo)
	e.userRepo = newFakeUserStore(e.client, e.master)
	e.cache = newFakeCache()

	defaults := model.DefaultSettings()
	defaults.Schedule = model.WeekSchedule{}
	for _, wd := range model.Weekdays {
		defaults.Schedule[wd] = model.OpenDay(model.MustTime("10:00"), model.MustTime("14:00"))
	}
	defaults.Schedule[model.Sunday] = model.ClosedDay

	e.settings = NewSettingsService(e.settingsRepo, e.cache, defaults, time.UTC, logger)
	e.settings.now = clock
	e.availability = NewAvailabilityService(e.settings, e.appointments, e.serviceRepo, e.cache, logger)
	e.booking = NewBookingService(e.settings, e.appointments, e.serviceRepo, e.userRepo, e.cache, logger)
	e.reviews = NewReviewService(e.appointments, e.serviceRepo, e.reviewRepo, e.promptRepo, e.userRepo,
		ReviewConfig{PromptDelay: time.Hour, PromptTimeout: 72 * time.Hour}, logger)
	e.reviews.now = clock
	e.users = NewUserService(e.userRepo, []int64{2002}, logger)
	e.catalog = NewCatalogService(e.serviceRepo, e.cache, "RUB", logger)

	return e
}

func date(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// completedVisit добавляет завершённый визит клиента
func (e *env) completedVisit(day string, at string, completedAt time.Time) *model.Appointment {
	return e.appointments.add(&model.Appointment{
		ClientID:        e.client.ID,
		ServiceID:       e.haircut.ID,
		Date:            date(day),
		Time:            model.MustTime(at),
		DurationMinutes: 60,
		Status:          model.AppointmentStatusCompleted,
		UpdatedAt:       completedAt,
	})
}
