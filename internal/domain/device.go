package domain

import "time"

// 设备状态
const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusError   = "error"
)

// DeviceStaleAfter 静默窗口：last_seen 超过该时长的在线设备按离线展示
// 仅影响读取侧展示，不回写存储
const DeviceStaleAfter = 5 * time.Minute

// Device 设备领域模型（对应 iot_devices 表）
// device_id 全局唯一；由用户显式注册，遥测上报不会创建设备
type Device struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	DeviceID        string         `db:"device_id" json:"device_id"`
	Name            string         `db:"name" json:"name"`
	DeviceType      string         `db:"device_type" json:"device_type"`
	ZoneID          *string        `db:"zone_id" json:"zone_id"`
	Status          string         `db:"status" json:"status"` // online/offline/error
	LastSeen        *time.Time     `db:"last_seen" json:"last_seen"`
	FirmwareVersion *string        `db:"firmware_version" json:"firmware_version"`
	BatteryLevel    *float64       `db:"battery_level" json:"battery_level"`
	IPAddress       *string        `db:"ip_address" json:"ip_address"`
	Metadata        map[string]any `db:"metadata" json:"metadata"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// DisplayStatus 读取侧状态：存储状态为 online 但 last_seen 已超过静默窗口时展示 offline
func (d *Device) DisplayStatus(now time.Time) string {
	if d.Status == DeviceStatusOnline && d.LastSeen != nil && now.Sub(*d.LastSeen) > DeviceStaleAfter {
		return DeviceStatusOffline
	}
	return d.Status
}

// DeviceTouch 遥测上报时的设备活性更新
// battery_level/firmware_version 仅在上报携带时覆盖
type DeviceTouch struct {
	DeviceID        string
	UserID          string
	BatteryLevel    *float64
	FirmwareVersion *string
}
