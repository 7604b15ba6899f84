package repository

import (
	"context"

	"greenhouse-data/internal/domain"
)

// AlertSettingsRepository 阈值报警规则Repository接口
// 遥测路径只读（ListByUser）；增删改来自设置页
type AlertSettingsRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.AlertSetting, error)
	CreateSetting(ctx context.Context, setting *domain.AlertSetting) (*domain.AlertSetting, error)
	UpdateSetting(ctx context.Context, userID, id string, setting *domain.AlertSetting) error
	DeleteSetting(ctx context.Context, userID, id string) error
}
