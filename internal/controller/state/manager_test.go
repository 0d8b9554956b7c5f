package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/model"
)

func newTestManager(now *time.Time) *Manager {
	m := NewManager(time.Minute)
	m.now = func() time.Time { return *now }
	return m
}

func TestManager_StateAndData(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	assert.Equal(t, StateNone, m.GetState(1))

	draft := callbacktypes.BookingDraft{ServiceID: 3, Date: "2024-01-16", Time: model.MustTime("10:30")}
	m.SetState(1, StateBookingPhone)
	m.SetData(1, callbacktypes.DataBookingDraft, draft)

	assert.Equal(t, StateBookingPhone, m.GetState(1))
	value, ok := m.GetData(1, callbacktypes.DataBookingDraft)
	require.True(t, ok)
	assert.Equal(t, draft, value)

	all := m.GetAllData(1)
	all["extra"] = true
	_, ok = m.GetData(1, "extra")
	assert.False(t, ok, "GetAllData returns a copy")

	m.SetState(1, StateNone)
	assert.Equal(t, StateNone, m.GetState(1))
	_, ok = m.GetData(1, callbacktypes.DataBookingDraft)
	assert.False(t, ok, "None state drops dialog data")
}

func TestManager_DialogExpires(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	m.SetState(1, StateReviewComment)
	m.SetData(1, callbacktypes.DataRating, 5)
	m.SetState(2, StateReviewReply)

	now = now.Add(50 * time.Second)
	m.SetData(2, callbacktypes.DataReviewID, int64(7))

	now = now.Add(20 * time.Second)
	assert.Equal(t, StateNone, m.GetState(1), "idle dialog is forgotten")
	assert.Equal(t, StateReviewReply, m.GetState(2))

	assert.Equal(t, 1, m.Sweep())
	m.SetState(1, StateEnteringPhone)
	_, ok := m.GetData(1, callbacktypes.DataRating)
	assert.False(t, ok, "expired data is not resurrected")
}

func TestManager_Concurrent(t *testing.T) {
	m := NewManager(0)
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, StateEnteringPhone)
			m.SetData(id, "n", id)
			m.GetState(id)
			m.ClearState(id)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, m.Sweep())
}
