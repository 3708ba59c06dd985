package service

import (
	"context"
	"encoding/json"
	"time"

	"coder_quest_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type EventType string

const (
	EventLevelUp             EventType = "level_up"
	EventQuestCompleted      EventType = "quest_completed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
)

// ProgressionEvent 成长事件，供通知、动态等下游订阅
type ProgressionEvent struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	UserID     uint                   `json:"userId"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func newEvent(t EventType, userID uint, at time.Time, payload map[string]interface{}) ProgressionEvent {
	return ProgressionEvent{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: at,
	}
}

// RedisEventPublisher 通过 Redis Pub/Sub 广播成长事件
type RedisEventPublisher struct {
	Redis   *redis.Client
	Channel string
}

func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{Redis: rdb, Channel: util.ProgressionEventsChannel}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, events ...ProgressionEvent) error {
	if len(events) == 0 {
		return nil
	}
	pipe := p.Redis.Pipeline()
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, p.Channel, raw)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// NopEventPublisher 未配置 Redis 时丢弃事件
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, ...ProgressionEvent) error { return nil }
