package domain

import "time"

// 计划类型
const (
	ScheduleTypeIrrigation = "irrigation"
	ScheduleTypeLighting   = "lighting"
)

// Schedule 灌溉/补光计划领域模型（对应 schedules 表）
// 纯展示数据：本服务不执行计划，不驱动任何硬件
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"` // irrigation/lighting
	Days      []string  `db:"days" json:"days"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Duration  int       `db:"duration" json:"duration"`
	Intensity int       `db:"intensity" json:"intensity"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
