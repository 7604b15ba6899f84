package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"greenhouse-data/internal/config"
	"greenhouse-data/internal/service"
	"greenhouse-data/pkg/mqtt"

	"go.uber.org/zap"
)

// MQTTConsumer MQTT消息消费者
// 网关侧遥测上报通道：消息体与HTTP摄入端点一致（单条或 {"readings": [...]}），
// 复用同一条摄入流水线
type MQTTConsumer struct {
	config        *config.Config
	mqttClient    *mqtt.Client
	ingestService service.IngestService
	logger        *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	ingestService service.IngestService,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:        cfg,
		mqttClient:    mqttClient,
		ingestService: ingestService,
		logger:        logger,
	}
}

// Start 启动消费者
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic == "" {
		return fmt.Errorf("MQTT topic not configured")
	}

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", topic),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// handleMessage 处理MQTT消息
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. 解析消息体（与HTTP端点同构：单条或批量）
	payloads, err := ParseReadingsPayload(payload)
	if err != nil {
		c.logger.Error("Failed to unmarshal MQTT message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	// 2. 走摄入流水线（入库→活性更新→阈值评估→实时推送）
	result, err := c.ingestService.Ingest(context.Background(), payloads)
	if err != nil {
		// 校验失败的消息丢弃并记日志，不阻塞订阅
		if errors.Is(err, service.ErrNoReadings) || errors.Is(err, service.ErrMissingUserID) {
			c.logger.Warn("Dropping invalid MQTT payload",
				zap.String("topic", topic),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("Failed to ingest MQTT readings",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("Ingested MQTT readings",
		zap.String("topic", topic),
		zap.Int("readings", len(result.Readings)),
		zap.Int("devices_updated", result.DevicesUpdated),
	)
	return nil
}

// ParseReadingsPayload 解析遥测消息体
// 带 readings 键 → 批量；否则按单条解析并包装成批
func ParseReadingsPayload(body []byte) ([]service.ReadingPayload, error) {
	var probe struct {
		Readings *json.RawMessage `json:"readings"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}

	if probe.Readings != nil {
		var batch []service.ReadingPayload
		if err := json.Unmarshal(*probe.Readings, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var single service.ReadingPayload
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []service.ReadingPayload{single}, nil
}
