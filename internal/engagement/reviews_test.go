package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestMarkRead(t *testing.T) {
	r := &model.Review{ID: 1}

	assert.True(t, MarkRead(r))
	assert.True(t, r.IsRead)
	assert.False(t, MarkRead(r), "second read changes nothing")
	assert.False(t, MarkRead(nil))
}

func TestMarkAllRead(t *testing.T) {
	reviews := []*model.Review{{ID: 1}, {ID: 2, IsRead: true}, {ID: 3}}

	changed := MarkAllRead(reviews)

	assert.Equal(t, []int64{1, 3}, changed)
	assert.Equal(t, 0, UnreadCount(reviews))
}

func TestSetReply_IndependentOfReadFlag(t *testing.T) {
	r := &model.Review{ID: 1}
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, SetReply(r, " Спасибо! ", at))
	assert.True(t, r.HasReply())
	assert.Equal(t, "Спасибо!", *r.Reply)
	assert.False(t, r.IsRead)

	later := at.Add(time.Hour)
	require.NoError(t, SetReply(r, "Ждём снова", later))
	assert.Equal(t, "Ждём снова", *r.Reply)
	assert.Equal(t, later, *r.RepliedAt)
}

func TestSetReply_Empty(t *testing.T) {
	r := &model.Review{ID: 1}

	assert.ErrorIs(t, SetReply(r, "   ", time.Now()), ErrEmptyReply)
	assert.False(t, r.HasReply())
}
