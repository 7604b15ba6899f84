package service

import (
	"context"
	"fmt"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"

	"go.uber.org/zap"
)

// AlertSettingService 报警规则管理服务接口
type AlertSettingService interface {
	ListSettings(ctx context.Context, userID string) ([]*domain.AlertSetting, error)
	CreateSetting(ctx context.Context, setting *domain.AlertSetting) (*domain.AlertSetting, error)
	UpdateSetting(ctx context.Context, userID, id string, setting *domain.AlertSetting) (*domain.AlertSetting, error)
	DeleteSetting(ctx context.Context, userID, id string) error
}

// alertSettingService 实现
type alertSettingService struct {
	alertsRepo repository.AlertSettingsRepository
	logger     *zap.Logger
}

// NewAlertSettingService 创建报警规则服务
func NewAlertSettingService(alertsRepo repository.AlertSettingsRepository, logger *zap.Logger) AlertSettingService {
	return &alertSettingService{
		alertsRepo: alertsRepo,
		logger:     logger,
	}
}

// ListSettings 查询用户报警规则
func (s *alertSettingService) ListSettings(ctx context.Context, userID string) ([]*domain.AlertSetting, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	return s.alertsRepo.ListByUser(ctx, userID)
}

// CreateSetting 新建报警规则
// min/max 都为空是允许的（规则永不触发），与前端行为保持一致
func (s *alertSettingService) CreateSetting(ctx context.Context, setting *domain.AlertSetting) (*domain.AlertSetting, error) {
	if setting.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if !domain.ValidMetric(setting.Metric) {
		return nil, fmt.Errorf("invalid metric: %s", setting.Metric)
	}
	return s.alertsRepo.CreateSetting(ctx, setting)
}

// UpdateSetting 更新报警规则
func (s *alertSettingService) UpdateSetting(ctx context.Context, userID, id string, setting *domain.AlertSetting) (*domain.AlertSetting, error) {
	if !domain.ValidMetric(setting.Metric) {
		return nil, fmt.Errorf("invalid metric: %s", setting.Metric)
	}
	if err := s.alertsRepo.UpdateSetting(ctx, userID, id, setting); err != nil {
		return nil, err
	}
	setting.ID = id
	setting.UserID = userID
	return setting, nil
}

// DeleteSetting 删除报警规则
func (s *alertSettingService) DeleteSetting(ctx context.Context, userID, id string) error {
	return s.alertsRepo.DeleteSetting(ctx, userID, id)
}
