// Package cache кэширует рассчитанные слоты в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

const (
	keyPrefix  = "slots:"
	DefaultTTL = 5 * time.Minute
)

// SlotCache слоты по дате и длительности услуги.
// Ключ slots:{YYYY-MM-DD} - хэш, поле - длительность в минутах.
// Nil *SlotCache ничего не делает, так что сервис работает и без Redis.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Options параметры подключения к Redis
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New подключается к Redis и проверяет соединение
func New(ctx context.Context, opts Options, logger *zap.Logger) (*SlotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, opts.TTL, logger), nil
}

// NewWithClient оборачивает готовый клиент
func NewWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SlotCache{client: client, ttl: ttl, logger: logger}
}

func key(date string) string {
	return keyPrefix + date
}

// Get возвращает слоты из кэша. Ошибки Redis считаются промахом.
func (c *SlotCache) Get(ctx context.Context, date string, durationMinutes int) ([]model.TimeOfDay, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.HGet(ctx, key(date), strconv.Itoa(durationMinutes)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Slot cache read failed", zap.String("date", date), zap.Error(err))
		}
		return nil, false
	}

	var slots []model.TimeOfDay
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("Slot cache entry is corrupted", zap.String("date", date), zap.Error(err))
		return nil, false
	}

	return slots, true
}

// Set сохраняет слоты на дату
func (c *SlotCache) Set(ctx context.Context, date string, durationMinutes int, slots []model.TimeOfDay) {
	if c == nil {
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key(date), strconv.Itoa(durationMinutes), data)
	pipe.Expire(ctx, key(date), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Slot cache write failed", zap.String("date", date), zap.Error(err))
	}
}

// InvalidateDate сбрасывает все слоты на дату
func (c *SlotCache) InvalidateDate(ctx context.Context, date string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, key(date)).Err(); err != nil {
		c.logger.Warn("Slot cache invalidation failed", zap.String("date", date), zap.Error(err))
	}
}

// InvalidateAll сбрасывает весь кэш слотов (после смены расписания)
func (c *SlotCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Slot cache scan failed", zap.Error(err))
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Slot cache invalidation failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

// Close закрывает соединение с Redis
func (c *SlotCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
