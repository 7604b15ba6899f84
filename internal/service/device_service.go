package service

import (
	"context"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"

	"go.uber.org/zap"
)

// DeviceService 设备管理服务接口
type DeviceService interface {
	RegisterDevice(ctx context.Context, req RegisterDeviceRequest) (*domain.Device, error)
	ListDevices(ctx context.Context, userID string) ([]*domain.Device, error)
	GetDevice(ctx context.Context, userID, id string) (*domain.Device, error)
	UpdateDevice(ctx context.Context, userID, id string, req UpdateDeviceRequest) (*domain.Device, error)
	DeleteDevice(ctx context.Context, userID, id string) error
}

// RegisterDeviceRequest 注册设备请求
type RegisterDeviceRequest struct {
	UserID     string  `json:"user_id"`
	DeviceID   string  `json:"device_id"`
	Name       string  `json:"name"`
	DeviceType string  `json:"device_type"` // 默认 sensor
	ZoneID     *string `json:"zone_id"`
}

// UpdateDeviceRequest 更新设备请求
type UpdateDeviceRequest struct {
	Name       string         `json:"name"`
	DeviceType string         `json:"device_type"`
	ZoneID     *string        `json:"zone_id"`
	Status     string         `json:"status"`
	IPAddress  *string        `json:"ip_address"`
	Metadata   map[string]any `json:"metadata"`
}

// deviceService 实现
type deviceService struct {
	devicesRepo repository.DevicesRepository
	logger      *zap.Logger
}

// NewDeviceService 创建设备管理服务
func NewDeviceService(devicesRepo repository.DevicesRepository, logger *zap.Logger) DeviceService {
	return &deviceService{
		devicesRepo: devicesRepo,
		logger:      logger,
	}
}

// RegisterDevice 注册设备
// device_id 重复时返回 domain.ErrDeviceExists（不覆盖已有设备）
func (s *deviceService) RegisterDevice(ctx context.Context, req RegisterDeviceRequest) (*domain.Device, error) {
	// 1. 参数验证
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "sensor"
	}

	// 2. 创建（新设备初始为 offline，首次上报遥测后转 online）
	device, err := s.devicesRepo.CreateDevice(ctx, &domain.Device{
		UserID:     req.UserID,
		DeviceID:   req.DeviceID,
		Name:       req.Name,
		DeviceType: deviceType,
		ZoneID:     req.ZoneID,
		Status:     domain.DeviceStatusOffline,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Device registered",
		zap.String("device_id", device.DeviceID),
		zap.String("user_id", device.UserID),
	)
	return device, nil
}

// ListDevices 查询设备列表
// 读取侧静默规则：last_seen 超过 5 分钟的在线设备按 offline 展示，不回写存储
func (s *deviceService) ListDevices(ctx context.Context, userID string) ([]*domain.Device, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	devices, err := s.devicesRepo.ListDevices(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, device := range devices {
		device.Status = device.DisplayStatus(now)
	}
	return devices, nil
}

// GetDevice 查询单个设备（同样应用静默规则）
func (s *deviceService) GetDevice(ctx context.Context, userID, id string) (*domain.Device, error) {
	device, err := s.devicesRepo.GetDevice(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	device.Status = device.DisplayStatus(time.Now())
	return device, nil
}

// UpdateDevice 更新设备管理字段
func (s *deviceService) UpdateDevice(ctx context.Context, userID, id string, req UpdateDeviceRequest) (*domain.Device, error) {
	existing, err := s.devicesRepo.GetDevice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.DeviceType != "" {
		existing.DeviceType = req.DeviceType
	}
	if req.ZoneID != nil {
		existing.ZoneID = req.ZoneID
	}
	if req.Status != "" {
		existing.Status = req.Status
	}
	if req.IPAddress != nil {
		existing.IPAddress = req.IPAddress
	}
	if req.Metadata != nil {
		existing.Metadata = req.Metadata
	}

	if err := s.devicesRepo.UpdateDevice(ctx, userID, id, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteDevice 删除设备
func (s *deviceService) DeleteDevice(ctx context.Context, userID, id string) error {
	return s.devicesRepo.DeleteDevice(ctx, userID, id)
}
