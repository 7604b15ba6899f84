package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisPublisher_PublishReading(t *testing.T) {
	_, client := setupTestRedis(t)
	publisher := NewRedisPublisher(client, "greenhouse:readings", zap.NewNop())

	temp := 24.5
	reading := &domain.SensorReading{
		ID:          "r-1",
		UserID:      "user-1",
		Temperature: &temp,
		RecordedAt:  time.Now().UTC(),
	}

	err := publisher.PublishReading(context.Background(), reading)
	require.NoError(t, err)

	// Stream 中应有一条消息，data 字段是读数的 JSON
	ctx := context.Background()
	messages, err := client.XRange(ctx, "greenhouse:readings", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	data, ok := messages[0].Values["data"].(string)
	require.True(t, ok)

	var decoded domain.SensorReading
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, "r-1", decoded.ID)
	assert.Equal(t, "user-1", decoded.UserID)
	require.NotNil(t, decoded.Temperature)
	assert.Equal(t, 24.5, *decoded.Temperature)
}

func TestRedisPublisher_PublishMultiple(t *testing.T) {
	_, client := setupTestRedis(t)
	publisher := NewRedisPublisher(client, "greenhouse:readings", zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := publisher.PublishReading(ctx, &domain.SensorReading{
			ID:     "r-" + string(rune('1'+i)),
			UserID: "user-1",
		})
		require.NoError(t, err)
	}

	length, err := client.XLen(ctx, "greenhouse:readings").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestSubscriber_Run_DeliversPublishedReadings(t *testing.T) {
	_, client := setupTestRedis(t)
	publisher := NewRedisPublisher(client, "greenhouse:readings", zap.NewNop())

	ctx := context.Background()
	temp := 24.5
	require.NoError(t, publisher.PublishReading(ctx, &domain.SensorReading{
		ID:          "r-1",
		UserID:      "user-1",
		Temperature: &temp,
	}))
	require.NoError(t, publisher.PublishReading(ctx, &domain.SensorReading{
		ID:     "r-2",
		UserID: "user-1",
	}))

	sub := NewSubscriber(client, "greenhouse:readings", zap.NewNop())
	sub.block = 50 * time.Millisecond

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *domain.SensorReading, 2)
	done := make(chan error, 1)
	go func() {
		done <- sub.Run(runCtx, "0", func(reading *domain.SensorReading) {
			received <- reading
		})
	}()

	var readings []*domain.SensorReading
	for i := 0; i < 2; i++ {
		select {
		case r := <-received:
			readings = append(readings, r)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reading")
		}
	}

	assert.Equal(t, "r-1", readings[0].ID)
	require.NotNil(t, readings[0].Temperature)
	assert.Equal(t, 24.5, *readings[0].Temperature)
	assert.Equal(t, "r-2", readings[1].ID)

	// 取消后 Run 应退出
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}

func TestSubscriber_Run_SkipsMalformedMessages(t *testing.T) {
	_, client := setupTestRedis(t)

	ctx := context.Background()
	_, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "greenhouse:readings",
		Values: map[string]interface{}{"data": "{not json"},
	}).Result()
	require.NoError(t, err)

	publisher := NewRedisPublisher(client, "greenhouse:readings", zap.NewNop())
	require.NoError(t, publisher.PublishReading(ctx, &domain.SensorReading{
		ID:     "r-good",
		UserID: "user-1",
	}))

	sub := NewSubscriber(client, "greenhouse:readings", zap.NewNop())
	sub.block = 50 * time.Millisecond

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *domain.SensorReading, 2)
	go func() {
		_ = sub.Run(runCtx, "0", func(reading *domain.SensorReading) {
			received <- reading
		})
	}()

	select {
	case r := <-received:
		assert.Equal(t, "r-good", r.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reading")
	}
}

func TestRedisPublisher_ConnectionError(t *testing.T) {
	mr, client := setupTestRedis(t)
	publisher := NewRedisPublisher(client, "greenhouse:readings", zap.NewNop())

	mr.Close()

	err := publisher.PublishReading(context.Background(), &domain.SensorReading{ID: "r-1"})
	assert.Error(t, err)
}
