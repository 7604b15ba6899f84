package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage Redis Streams 消息
type StreamMessage struct {
	Stream string
	ID     string
	Values map[string]interface{}
}

// PublishJSONToStream 将数据序列化为JSON后发布到 Redis Streams
// 返回 XADD 分配的消息 ID
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
}

// ReadFromStream 阻塞读取 Stream 消息（lastID 传 "$" 表示只读新消息）
func ReadFromStream(ctx context.Context, client *redis.Client, stream string, lastID string, block time.Duration) ([]StreamMessage, error) {
	if lastID == "" {
		lastID = "$"
	}

	results, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Block:   block,
	}).Result()
	if err != nil {
		return nil, err
	}

	var messages []StreamMessage
	for _, res := range results {
		for _, msg := range res.Messages {
			messages = append(messages, StreamMessage{
				Stream: res.Stream,
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}
	return messages, nil
}
