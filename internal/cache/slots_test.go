package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

func TestNilCacheIsNoop(t *testing.T) {
	var c *SlotCache
	ctx := context.Background()

	c.Set(ctx, "2024-01-15", 60, []model.TimeOfDay{model.MustTime("10:00")})
	slots, ok := c.Get(ctx, "2024-01-15", 60)

	assert.False(t, ok)
	assert.Nil(t, slots)
	assert.NotPanics(t, func() {
		c.InvalidateDate(ctx, "2024-01-15")
		c.InvalidateAll(ctx)
	})
	assert.NoError(t, c.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "slots:2024-01-15", key("2024-01-15"))
}
