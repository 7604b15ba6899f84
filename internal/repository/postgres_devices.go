package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// pq 错误码：唯一约束冲突
const pqUniqueViolation = "23505"

// PostgresDevicesRepo 设备Repository实现
type PostgresDevicesRepo struct {
	db *sql.DB
}

// NewPostgresDevicesRepo 创建设备Repository
func NewPostgresDevicesRepo(db *sql.DB) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db}
}

// 确保实现了接口
var _ DevicesRepository = (*PostgresDevicesRepo)(nil)

const deviceColumns = `
	id::text,
	user_id::text,
	device_id,
	name,
	device_type,
	zone_id::text,
	status,
	last_seen,
	firmware_version,
	battery_level,
	ip_address,
	metadata,
	created_at,
	updated_at`

// CreateDevice 注册设备
// device_id 全局唯一：冲突时返回 domain.ErrDeviceExists，不覆盖已有记录
func (r *PostgresDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	if device.DeviceType == "" {
		device.DeviceType = "sensor"
	}
	if device.Status == "" {
		device.Status = domain.DeviceStatusOffline
	}
	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	metadata, err := marshalMetadata(device.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device metadata: %w", err)
	}

	query := `
		INSERT INTO iot_devices
			(id, user_id, device_id, name, device_type, zone_id, status,
			 firmware_version, battery_level, ip_address, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		device.ID,
		device.UserID,
		device.DeviceID,
		device.Name,
		device.DeviceType,
		device.ZoneID,
		device.Status,
		device.FirmwareVersion,
		device.BatteryLevel,
		device.IPAddress,
		metadata,
		device.CreatedAt,
		device.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return nil, domain.ErrDeviceExists
		}
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	return device, nil
}

// ListDevices 查询用户设备列表（创建时间倒序）
func (r *PostgresDevicesRepo) ListDevices(ctx context.Context, userID string) ([]*domain.Device, error) {
	if userID == "" {
		return []*domain.Device{}, nil
	}

	query := `SELECT ` + deviceColumns + `
		FROM iot_devices
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	return devices, nil
}

// GetDevice 按主键查询设备
func (r *PostgresDevicesRepo) GetDevice(ctx context.Context, userID, id string) (*domain.Device, error) {
	if userID == "" || id == "" {
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + deviceColumns + `
		FROM iot_devices
		WHERE user_id = $1 AND id = $2`

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return device, nil
}

// UpdateDevice 更新设备管理字段（名称/类型/分区/状态/IP/元数据）
func (r *PostgresDevicesRepo) UpdateDevice(ctx context.Context, userID, id string, device *domain.Device) error {
	metadata, err := marshalMetadata(device.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal device metadata: %w", err)
	}

	query := `
		UPDATE iot_devices
		SET name = $3,
		    device_type = $4,
		    zone_id = $5,
		    status = $6,
		    ip_address = $7,
		    metadata = $8,
		    updated_at = $9
		WHERE user_id = $1 AND id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		userID, id,
		device.Name,
		device.DeviceType,
		device.ZoneID,
		device.Status,
		device.IPAddress,
		metadata,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDevice 删除设备
func (r *PostgresDevicesRepo) DeleteDevice(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM iot_devices WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TouchDevice 遥测路径的活性更新
// 按 device_id 置 online、刷新 last_seen；battery/firmware 仅在携带时覆盖。
// 设备未注册时不创建、不报错：返回 (false, nil)
func (r *PostgresDevicesRepo) TouchDevice(ctx context.Context, touch domain.DeviceTouch, seenAt time.Time) (bool, error) {
	query := `
		UPDATE iot_devices
		SET status = $2,
		    last_seen = $3,
		    battery_level = COALESCE($4, battery_level),
		    firmware_version = COALESCE($5, firmware_version),
		    updated_at = $3
		WHERE device_id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		touch.DeviceID,
		domain.DeviceStatusOnline,
		seenAt,
		touch.BatteryLevel,
		touch.FirmwareVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to touch device %s: %w", touch.DeviceID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read touch result for device %s: %w", touch.DeviceID, err)
	}
	return affected > 0, nil
}

// scanner 兼容 *sql.Row 和 *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*domain.Device, error) {
	var device domain.Device
	var metadata sql.NullString
	if err := s.Scan(
		&device.ID,
		&device.UserID,
		&device.DeviceID,
		&device.Name,
		&device.DeviceType,
		&device.ZoneID,
		&device.Status,
		&device.LastSeen,
		&device.FirmwareVersion,
		&device.BatteryLevel,
		&device.IPAddress,
		&metadata,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan device: %w", err)
	}

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &device.Metadata); err != nil {
			// 元数据损坏不阻塞查询
			device.Metadata = nil
		}
	}
	return &device, nil
}

func marshalMetadata(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
