package domain

import "time"

// AlertSetting 阈值报警规则领域模型（对应 alert_settings 表）
// 按用户+指标配置；zone_id 为空表示对所有分区生效
// min/max 均可空（两者都为空的规则永不触发）
type AlertSetting struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ZoneID       *string   `db:"zone_id" json:"zone_id"`
	Metric       string    `db:"metric" json:"metric"` // temperature/humidity/moisture/light_level
	MinThreshold *float64  `db:"min_threshold" json:"min_threshold"`
	MaxThreshold *float64  `db:"max_threshold" json:"max_threshold"`
	EmailEnabled bool      `db:"email_enabled" json:"email_enabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ValidMetric 校验指标名
func ValidMetric(metric string) bool {
	switch metric {
	case MetricTemperature, MetricHumidity, MetricMoisture, MetricLightLevel:
		return true
	}
	return false
}
