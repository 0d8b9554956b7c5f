package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Chunk(t *testing.T) {
	kb := NewBuilder().
		Chunk(2, Button("1", "a"), Button("2", "b"), Button("3", "c")).
		Row().
		AddBackButton("back").
		Build()

	require.Len(t, kb.InlineKeyboard, 3, "empty rows are skipped")
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "back", kb.InlineKeyboard[2][0].CallbackData)
}

func TestWebAppButton(t *testing.T) {
	btn := WebAppButton("Open", "https://example.com/app")
	require.NotNil(t, btn.WebApp)
	assert.Equal(t, "https://example.com/app", btn.WebApp.URL)
	assert.Empty(t, btn.CallbackData)
}

func TestPaginationButtons(t *testing.T) {
	assert.Nil(t, PaginationButtons("p:", 0, 1))

	first := PaginationButtons("p:", 0, 3)
	require.Len(t, first, 2)
	assert.Equal(t, "noop", first[0].CallbackData)
	assert.Equal(t, "p:1", first[1].CallbackData)

	middle := PaginationButtons("p:", 1, 3)
	require.Len(t, middle, 3)
	assert.Equal(t, "p:0", middle[0].CallbackData)
	assert.Equal(t, "📄 2/3", middle[1].Text)

	last := PaginationButtons("p:", 2, 3)
	require.Len(t, last, 2)
	assert.Equal(t, "p:1", last[0].CallbackData)
}

func TestDayPagination(t *testing.T) {
	row := DayPagination("", "16.01", "day:2024-01-17")
	require.Len(t, row, 2)
	assert.Equal(t, "noop", row[0].CallbackData)
	assert.Equal(t, "day:2024-01-17", row[1].CallbackData)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
}
