package domain

import "time"

// 传感器指标名（alert_settings.metric 的取值范围）
const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricMoisture    = "moisture"
	MetricLightLevel  = "light_level"
)

// SensorReading 传感器读数领域模型（对应 sensor_readings 表）
// 一次环境观测；入库后不可变，四个指标字段各自可空
type SensorReading struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	ZoneID      *string    `db:"zone_id" json:"zone_id"`
	Temperature *float64   `db:"temperature" json:"temperature"`
	Humidity    *float64   `db:"humidity" json:"humidity"`
	Moisture    *float64   `db:"moisture" json:"moisture"`
	LightLevel  *float64   `db:"light_level" json:"light_level"`
	RecordedAt  time.Time  `db:"recorded_at" json:"recorded_at"`
}

// MetricValue 按指标名取读数值（未上报的指标返回 nil）
func (r *SensorReading) MetricValue(metric string) *float64 {
	switch metric {
	case MetricTemperature:
		return r.Temperature
	case MetricHumidity:
		return r.Humidity
	case MetricMoisture:
		return r.Moisture
	case MetricLightLevel:
		return r.LightLevel
	}
	return nil
}

// HasMetric 是否至少上报了一个指标
func (r *SensorReading) HasMetric() bool {
	return r.Temperature != nil || r.Humidity != nil || r.Moisture != nil || r.LightLevel != nil
}
