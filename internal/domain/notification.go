package domain

// 通知类型
const (
	NotificationTypeScheduleRun    = "schedule_run"
	NotificationTypeThresholdAlert = "threshold_alert"
)

// 阈值方向
const (
	ThresholdTypeMin = "min"
	ThresholdTypeMax = "max"
)

// NotificationRequest 出站通知描述（瞬态，不落库）
type NotificationRequest struct {
	Type      string           `json:"type"` // schedule_run/threshold_alert
	UserEmail string           `json:"user_email"`
	UserName  string           `json:"user_name,omitempty"`
	Data      NotificationData `json:"data"`
}

// NotificationData 通知模板数据
type NotificationData struct {
	ScheduleName  string   `json:"schedule_name,omitempty"`
	ZoneName      string   `json:"zone_name,omitempty"`
	ScheduleType  string   `json:"schedule_type,omitempty"`
	Metric        string   `json:"metric,omitempty"`
	CurrentValue  *float64 `json:"current_value,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	ThresholdType string   `json:"threshold_type,omitempty"` // min/max
}
