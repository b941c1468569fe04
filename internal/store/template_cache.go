package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// TemplateSource loads active templates.
type TemplateSource interface {
	GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error)
}

// CachedTemplates is a cache-aside TemplateSource over Redis. Only hits are cached, so a
// template activated later is picked up immediately.
type CachedTemplates struct {
	source TemplateSource
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedTemplates(source TemplateSource, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedTemplates {
	return &CachedTemplates{source: source, redis: rdb, ttl: ttl, logger: log}
}

func templateCacheKey(notificationType string, channel models.Channel) string {
	return fmt.Sprintf("notification_template:%s:%s", notificationType, channel)
}

func (c *CachedTemplates) GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error) {
	key := templateCacheKey(notificationType, channel)

	if c.redis != nil {
		cached, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			var t models.NotificationTemplate
			if err := json.Unmarshal([]byte(cached), &t); err == nil {
				return &t, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("template cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	t, err := c.source.GetActiveTemplate(ctx, notificationType, channel)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		if data, err := json.Marshal(t); err == nil {
			if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("template cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
	}
	return t, nil
}

// Invalidate drops the cached entry after a template is changed.
func (c *CachedTemplates) Invalidate(ctx context.Context, notificationType string, channel models.Channel) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, templateCacheKey(notificationType, channel)).Err()
}
