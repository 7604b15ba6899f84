package domain

import "errors"

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")

	// ErrDeviceExists 设备重复注册（device_id 唯一约束冲突）
	// 与一般存储错误区分，调用方据此返回"已存在"语义
	ErrDeviceExists = errors.New("device with this id already exists")
)
