package repository

import (
	"context"
	"time"

	"greenhouse-data/internal/domain"
)

// DevicesRepository 设备Repository接口
type DevicesRepository interface {
	// 创建（用户显式注册；device_id 冲突返回 domain.ErrDeviceExists）
	CreateDevice(ctx context.Context, device *domain.Device) (*domain.Device, error)

	// 查询
	ListDevices(ctx context.Context, userID string) ([]*domain.Device, error)
	GetDevice(ctx context.Context, userID, id string) (*domain.Device, error)

	// 更新（设备管理页：名称/类型/分区/状态等）
	UpdateDevice(ctx context.Context, userID, id string, device *domain.Device) error

	// 删除
	DeleteDevice(ctx context.Context, userID, id string) error

	// 活性更新（遥测路径）：按 device_id 置 online、刷新 last_seen，
	// 携带时覆盖 battery_level/firmware_version。
	// 设备未注册时返回 (false, nil)：不创建、不报错
	TouchDevice(ctx context.Context, touch domain.DeviceTouch, seenAt time.Time) (bool, error)
}
