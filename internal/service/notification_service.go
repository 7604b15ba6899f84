package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"greenhouse-data/internal/domain"

	"go.uber.org/zap"
)

// NotificationService 通知投递服务接口
type NotificationService interface {
	SendNotification(ctx context.Context, req *domain.NotificationRequest) (*ResendResponse, error)
}

// notificationService 实现
type notificationService struct {
	sender EmailSender
	logger *zap.Logger
}

// NewNotificationService 创建通知服务
func NewNotificationService(sender EmailSender, logger *zap.Logger) NotificationService {
	return &notificationService{
		sender: sender,
		logger: logger,
	}
}

var scheduleRunTemplate = template.Must(template.New("schedule_run").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #0a0a0a; color: #fafafa;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: linear-gradient(135deg, #1a2e1a 0%, #0d1f0d 100%); border-radius: 16px; padding: 32px; border: 1px solid #22c55e33;">
      <div style="text-align: center; font-size: 24px; font-weight: bold; color: #22c55e;">🌿 GreenHouse Pro</div>
      <h1 style="font-size: 20px; text-align: center;">Schedule Started</h1>
      <p>Hello{{if .UserName}} {{.UserName}}{{end}},</p>
      <p>Your scheduled {{.Data.ScheduleType}} task has started running:</p>
      <table style="width: 100%; background: #0a0a0a; border-radius: 12px; padding: 16px;">
        <tr><td style="color: #888;">Schedule</td><td style="color: #22c55e; text-align: right;">{{.Data.ScheduleName}}</td></tr>
        <tr><td style="color: #888;">Zone</td><td style="color: #22c55e; text-align: right;">{{.ZoneName}}</td></tr>
        <tr><td style="color: #888;">Type</td><td style="color: #22c55e; text-align: right;">{{.TypeLabel}}</td></tr>
        <tr><td style="color: #888;">Time</td><td style="color: #22c55e; text-align: right;">{{.Time}}</td></tr>
      </table>
      <p>Your greenhouse is being taken care of automatically! 🌱</p>
      <p style="text-align: center; color: #666; font-size: 12px;">GreenHouse Pro - Smart Greenhouse Management</p>
    </div>
  </div>
</body>
</html>`))

var thresholdAlertTemplate = template.Must(template.New("threshold_alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #0a0a0a; color: #fafafa;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: linear-gradient(135deg, #2e1a1a 0%, #1f0d0d 100%); border-radius: 16px; padding: 32px; border: 1px solid #ef444433;">
      <div style="text-align: center; font-size: 24px; font-weight: bold; color: #22c55e;">🌿 GreenHouse Pro</div>
      <div style="text-align: center;"><span style="background: #ef4444; color: white; padding: 4px 12px; border-radius: 20px; font-size: 12px; font-weight: bold;">⚠️ ALERT</span></div>
      <h1 style="font-size: 20px; text-align: center;">Sensor Threshold {{if .IsAbove}}Exceeded{{else}}Below Minimum{{end}}</h1>
      <p>Hello{{if .UserName}} {{.UserName}}{{end}},</p>
      <p>A sensor reading in your greenhouse has {{if .IsAbove}}exceeded the maximum{{else}}dropped below the minimum{{end}} threshold:</p>
      <table style="width: 100%; background: #0a0a0a; border-radius: 12px; padding: 16px;">
        <tr><td style="color: #888;">Metric</td><td style="color: #ef4444; text-align: right;">{{.Data.Metric}}</td></tr>
        <tr><td style="color: #888;">Current Value</td><td style="color: #ef4444; text-align: right;">{{.CurrentValue}}</td></tr>
        <tr><td style="color: #888;">{{if .IsAbove}}Max Threshold{{else}}Min Threshold{{end}}</td><td style="color: #ef4444; text-align: right;">{{.Threshold}}</td></tr>
        <tr><td style="color: #888;">Zone</td><td style="color: #ef4444; text-align: right;">{{.ZoneName}}</td></tr>
      </table>
      <p>Please check your greenhouse controls and adjust settings if necessary.</p>
      <p style="text-align: center; color: #666; font-size: 12px;">GreenHouse Pro - Smart Greenhouse Management</p>
    </div>
  </div>
</body>
</html>`))

// SendNotification 构建邮件并投递
func (s *notificationService) SendNotification(ctx context.Context, req *domain.NotificationRequest) (*ResendResponse, error) {
	// 1. 参数验证
	if req.UserEmail == "" {
		return nil, fmt.Errorf("user_email is required")
	}

	s.logger.Info("Sending notification",
		zap.String("type", req.Type),
		zap.String("user_email", req.UserEmail),
	)

	// 2. 构建主题和正文（未知类型走阈值模板分支）
	var subject string
	var body bytes.Buffer

	if req.Type == domain.NotificationTypeScheduleRun {
		subject = fmt.Sprintf("🌱 Schedule %q has started", req.Data.ScheduleName)

		zoneName := req.Data.ZoneName
		if zoneName == "" {
			zoneName = "All Zones"
		}
		typeLabel := "💡 Lighting"
		if req.Data.ScheduleType == domain.ScheduleTypeIrrigation {
			typeLabel = "💧 Irrigation"
		}
		err := scheduleRunTemplate.Execute(&body, map[string]any{
			"UserName":  req.UserName,
			"Data":      req.Data,
			"ZoneName":  zoneName,
			"TypeLabel": typeLabel,
			"Time":      time.Now().Format("15:04:05"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render schedule email: %w", err)
		}
	} else {
		isAbove := req.Data.ThresholdType == domain.ThresholdTypeMax
		if isAbove {
			subject = fmt.Sprintf("⚠️ Alert: %s exceeded threshold", req.Data.Metric)
		} else {
			subject = fmt.Sprintf("⚠️ Alert: %s below threshold", req.Data.Metric)
		}

		zoneName := req.Data.ZoneName
		if zoneName == "" {
			zoneName = "Main Greenhouse"
		}
		var currentValue, threshold string
		if req.Data.CurrentValue != nil {
			currentValue = fmt.Sprintf("%g", *req.Data.CurrentValue)
		}
		if req.Data.Threshold != nil {
			threshold = fmt.Sprintf("%g", *req.Data.Threshold)
		}
		err := thresholdAlertTemplate.Execute(&body, map[string]any{
			"UserName":     req.UserName,
			"Data":         req.Data,
			"IsAbove":      isAbove,
			"ZoneName":     zoneName,
			"CurrentValue": currentValue,
			"Threshold":    threshold,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render alert email: %w", err)
		}
	}

	// 3. 投递
	return s.sender.Send(&ResendEmail{
		To:      []string{req.UserEmail},
		Subject: subject,
		HTML:    body.String(),
	})
}
