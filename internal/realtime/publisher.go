package realtime

import (
	"context"
	"encoding/json"
	"time"

	"greenhouse-data/internal/domain"
	redisclient "greenhouse-data/pkg/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Publisher 读数实时推送接口
// 遥测服务在入库成功后调用；推送失败不影响入库结果
type Publisher interface {
	PublishReading(ctx context.Context, reading *domain.SensorReading) error
}

// RedisPublisher 基于 Redis Streams 的读数推送实现
type RedisPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisPublisher 创建读数推送器
func NewRedisPublisher(client *redis.Client, stream string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

var _ Publisher = (*RedisPublisher)(nil)

// PublishReading 将已入库读数发布到 Stream（XADD）
func (p *RedisPublisher) PublishReading(ctx context.Context, reading *domain.SensorReading) error {
	id, err := redisclient.PublishJSONToStream(ctx, p.client, p.stream, reading)
	if err != nil {
		return err
	}

	p.logger.Debug("Published reading to stream",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("reading_id", reading.ID),
	)
	return nil
}

// ReadingHandler 订阅侧回调
type ReadingHandler func(reading *domain.SensorReading)

// Subscriber 读数流订阅器（仪表盘实时刷新消费侧）
type Subscriber struct {
	client *redis.Client
	stream string
	logger *zap.Logger
	block  time.Duration
}

// NewSubscriber 创建订阅器
func NewSubscriber(client *redis.Client, stream string, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		client: client,
		stream: stream,
		logger: logger,
		block:  5 * time.Second,
	}
}

// Run 阻塞消费 Stream 并回调 handler，直到 ctx 取消
// lastID 为空表示只消费 Run 之后发布的新消息（"$"）；传 "0" 可从头重放
func (s *Subscriber) Run(ctx context.Context, lastID string, handler ReadingHandler) error {
	if lastID == "" {
		lastID = "$"
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := redisclient.ReadFromStream(ctx, s.client, s.stream, lastID, s.block)
		if err != nil {
			if err == redis.Nil {
				continue // 阻塞超时，无新消息
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("Failed to read from stream", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			lastID = msg.ID

			data, ok := msg.Values["data"].(string)
			if !ok {
				continue
			}
			var reading domain.SensorReading
			if err := json.Unmarshal([]byte(data), &reading); err != nil {
				s.logger.Warn("Failed to decode reading message",
					zap.String("message_id", msg.ID),
					zap.Error(err),
				)
				continue
			}
			handler(&reading)
		}
	}
}
