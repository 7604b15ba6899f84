package evaluator

import (
	"greenhouse-data/internal/domain"
)

// Breach 一次阈值越界
type Breach struct {
	Setting       *domain.AlertSetting
	Metric        string
	CurrentValue  float64
	Threshold     float64
	ThresholdType string // domain.ThresholdTypeMin / domain.ThresholdTypeMax
}

// ThresholdEvaluator 阈值评估器
// 纯函数式：不访问存储，不产生副作用，由遥测服务按读数调用
type ThresholdEvaluator struct{}

// NewThresholdEvaluator 创建阈值评估器
func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{}
}

// Evaluate 用一条读数逐条评估用户的报警规则
// 规则匹配条件：读数携带了该规则的指标值。
// min/max 独立判断（min > max 的病态配置下两者可同时越界）；
// 两者都为空的规则永不触发。
func (e *ThresholdEvaluator) Evaluate(reading *domain.SensorReading, settings []*domain.AlertSetting) []Breach {
	var breaches []Breach

	for _, setting := range settings {
		value := reading.MetricValue(setting.Metric)
		if value == nil {
			continue
		}

		if setting.MinThreshold != nil && *value < *setting.MinThreshold {
			breaches = append(breaches, Breach{
				Setting:       setting,
				Metric:        setting.Metric,
				CurrentValue:  *value,
				Threshold:     *setting.MinThreshold,
				ThresholdType: domain.ThresholdTypeMin,
			})
		}

		if setting.MaxThreshold != nil && *value > *setting.MaxThreshold {
			breaches = append(breaches, Breach{
				Setting:       setting,
				Metric:        setting.Metric,
				CurrentValue:  *value,
				Threshold:     *setting.MaxThreshold,
				ThresholdType: domain.ThresholdTypeMax,
			})
		}
	}

	return breaches
}
