package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/evaluator"
	"greenhouse-data/internal/realtime"
	"greenhouse-data/internal/repository"

	"go.uber.org/zap"
)

// 校验错误：错误文案即对外响应文案（HTTP 层按 errors.Is 映射到 400）
var (
	ErrNoReadings    = errors.New("No sensor readings provided")
	ErrMissingUserID = errors.New("user_id is required for each reading")
)

// ReadingPayload 单条遥测上报（HTTP body / MQTT payload 共用格式）
type ReadingPayload struct {
	DeviceID        string     `json:"device_id,omitempty"`
	UserID          string     `json:"user_id"`
	ZoneID          *string    `json:"zone_id,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
	Humidity        *float64   `json:"humidity,omitempty"`
	Moisture        *float64   `json:"moisture,omitempty"`
	LightLevel      *float64   `json:"light_level,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	BatteryLevel    *float64   `json:"battery_level,omitempty"`
	FirmwareVersion *string    `json:"firmware_version,omitempty"`
}

// IngestResult 遥测处理结果
type IngestResult struct {
	Readings       []*domain.SensorReading // 已入库读数
	DevicesUpdated int                     // 触达的不同设备数
}

// IngestService 遥测接入与阈值评估服务接口
type IngestService interface {
	Ingest(ctx context.Context, payloads []ReadingPayload) (*IngestResult, error)
}

// ingestService 实现
// 处理链：规范化 → 批量入库 → 设备活性更新 → 阈值评估 → 实时推送
// 入库失败使整个请求失败；活性更新/评估/推送为尽力而为，只记日志
type ingestService struct {
	readingsRepo repository.ReadingsRepository
	devicesRepo  repository.DevicesRepository
	alertsRepo   repository.AlertSettingsRepository
	profilesRepo repository.ProfilesRepository
	evaluator    *evaluator.ThresholdEvaluator
	notifier     NotificationService // 可空：未配置邮件时仅记日志
	publisher    realtime.Publisher  // 可空：未配置 Redis 时跳过推送
	logger       *zap.Logger
}

// NewIngestService 创建遥测服务
func NewIngestService(
	readingsRepo repository.ReadingsRepository,
	devicesRepo repository.DevicesRepository,
	alertsRepo repository.AlertSettingsRepository,
	profilesRepo repository.ProfilesRepository,
	notifier NotificationService,
	publisher realtime.Publisher,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		readingsRepo: readingsRepo,
		devicesRepo:  devicesRepo,
		alertsRepo:   alertsRepo,
		profilesRepo: profilesRepo,
		evaluator:    evaluator.NewThresholdEvaluator(),
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
	}
}

// Ingest 处理一批遥测上报
func (s *ingestService) Ingest(ctx context.Context, payloads []ReadingPayload) (*IngestResult, error) {
	// 1. 规范化：整批校验，无部分成功语义
	if len(payloads) == 0 {
		return nil, ErrNoReadings
	}

	now := time.Now()
	readings := make([]*domain.SensorReading, 0, len(payloads))
	touches := make(map[string]domain.DeviceTouch)

	for _, p := range payloads {
		if p.UserID == "" {
			return nil, ErrMissingUserID
		}

		recordedAt := now
		if p.Timestamp != nil {
			recordedAt = *p.Timestamp
		}
		readings = append(readings, &domain.SensorReading{
			UserID:      p.UserID,
			ZoneID:      p.ZoneID,
			Temperature: p.Temperature,
			Humidity:    p.Humidity,
			Moisture:    p.Moisture,
			LightLevel:  p.LightLevel,
			RecordedAt:  recordedAt,
		})

		// 同一批次同一设备多条读数折叠为一次活性更新（后值覆盖）
		if p.DeviceID != "" {
			touches[p.DeviceID] = domain.DeviceTouch{
				DeviceID:        p.DeviceID,
				UserID:          p.UserID,
				BatteryLevel:    p.BatteryLevel,
				FirmwareVersion: p.FirmwareVersion,
			}
		}
	}

	s.logger.Info("Processing sensor readings",
		zap.Int("readings", len(readings)),
		zap.Int("devices", len(touches)),
	)

	// 2. 持久化：失败即中止，错误原样上抛
	persisted, err := s.readingsRepo.InsertReadings(ctx, readings)
	if err != nil {
		return nil, err
	}

	// 3. 设备活性更新：未注册设备静默跳过，失败不影响请求结果
	for _, touch := range touches {
		found, err := s.devicesRepo.TouchDevice(ctx, touch, now)
		if err != nil {
			s.logger.Error("Failed to update device liveness",
				zap.String("device_id", touch.DeviceID),
				zap.Error(err),
			)
			continue
		}
		if !found {
			// 硬件可能尚未注册，属正常情况
			s.logger.Debug("Device not registered, liveness update skipped",
				zap.String("device_id", touch.DeviceID),
			)
		}
	}

	// 4. 阈值评估：逐条读数、尽力而为
	for _, reading := range persisted {
		s.evaluateThresholds(ctx, reading)
	}

	// 5. 实时推送：尽力而为
	if s.publisher != nil {
		for _, reading := range persisted {
			if err := s.publisher.PublishReading(ctx, reading); err != nil {
				s.logger.Warn("Failed to publish reading",
					zap.String("reading_id", reading.ID),
					zap.Error(err),
				)
			}
		}
	}

	return &IngestResult{
		Readings:       persisted,
		DevicesUpdated: len(touches),
	}, nil
}

// evaluateThresholds 评估一条读数的报警规则
// 规则拉取失败只记日志：报警的可用性让位于遥测入库
func (s *ingestService) evaluateThresholds(ctx context.Context, reading *domain.SensorReading) {
	settings, err := s.alertsRepo.ListByUser(ctx, reading.UserID)
	if err != nil {
		s.logger.Error("Failed to fetch alert settings",
			zap.String("user_id", reading.UserID),
			zap.Error(err),
		)
		return
	}
	if len(settings) == 0 {
		return
	}

	breaches := s.evaluator.Evaluate(reading, settings)
	for _, breach := range breaches {
		direction := "below minimum"
		if breach.ThresholdType == domain.ThresholdTypeMax {
			direction = "above maximum"
		}
		s.logger.Warn(fmt.Sprintf("Alert: %s %s threshold (%g vs %g)",
			breach.Metric, direction, breach.CurrentValue, breach.Threshold),
			zap.String("user_id", reading.UserID),
			zap.String("metric", breach.Metric),
			zap.Float64("current_value", breach.CurrentValue),
			zap.Float64("threshold", breach.Threshold),
			zap.String("threshold_type", breach.ThresholdType),
		)

		if breach.Setting.EmailEnabled {
			s.dispatchAlertEmail(reading, breach)
		}
	}
}

// dispatchAlertEmail 异步投递阈值报警邮件（不等待投递结果）
func (s *ingestService) dispatchAlertEmail(reading *domain.SensorReading, breach evaluator.Breach) {
	if s.notifier == nil {
		return
	}

	profile, err := s.profilesRepo.GetByUserID(context.Background(), reading.UserID)
	if err != nil {
		s.logger.Warn("Failed to resolve alert recipient",
			zap.String("user_id", reading.UserID),
			zap.Error(err),
		)
		return
	}
	email := profile.RecipientEmail()
	if email == "" {
		return
	}

	userName := ""
	if profile.DisplayName != nil {
		userName = *profile.DisplayName
	}
	currentValue := breach.CurrentValue
	threshold := breach.Threshold
	req := &domain.NotificationRequest{
		Type:      domain.NotificationTypeThresholdAlert,
		UserEmail: email,
		UserName:  userName,
		Data: domain.NotificationData{
			Metric:        breach.Metric,
			CurrentValue:  &currentValue,
			Threshold:     &threshold,
			ThresholdType: breach.ThresholdType,
		},
	}

	go func() {
		if _, err := s.notifier.SendNotification(context.Background(), req); err != nil {
			s.logger.Error("Failed to send threshold alert email",
				zap.String("user_id", reading.UserID),
				zap.String("metric", breach.Metric),
				zap.Error(err),
			)
		}
	}()
}
