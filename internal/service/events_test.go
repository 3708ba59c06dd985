package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"coder_quest_backend/internal/service"
	"coder_quest_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEventPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, util.ProgressionEventsChannel)
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := service.NewRedisEventPublisher(rdb)
	err = pub.Publish(ctx,
		service.ProgressionEvent{ID: "e1", Type: service.EventLevelUp, UserID: 7},
		service.ProgressionEvent{ID: "e2", Type: service.EventQuestCompleted, UserID: 7},
	)
	require.NoError(t, err)

	ch := sub.Channel()
	var got []service.ProgressionEvent
	for len(got) < 2 {
		select {
		case msg := <-ch:
			var ev service.ProgressionEvent
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("只收到 %d 条事件", len(got))
		}
	}
	assert.Equal(t, service.EventLevelUp, got[0].Type)
	assert.Equal(t, "e2", got[1].ID)
}

func TestRedisEventPublisher_EmptyIsNoop(t *testing.T) {
	pub := &service.RedisEventPublisher{}

	assert.NoError(t, pub.Publish(context.Background()))
	assert.NoError(t, service.NopEventPublisher{}.Publish(context.Background()))
}
