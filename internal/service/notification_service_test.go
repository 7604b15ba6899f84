package service

import (
	"context"
	"testing"

	"greenhouse-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmailSender struct {
	sent []*ResendEmail
	err  error
}

func (f *fakeEmailSender) Send(email *ResendEmail) (*ResendResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, email)
	return &ResendResponse{ID: "email-1"}, nil
}

func TestSendNotification_ThresholdAlertMax(t *testing.T) {
	sender := &fakeEmailSender{}
	svc := NewNotificationService(sender, zap.NewNop())

	current := 38.2
	threshold := 35.0
	resp, err := svc.SendNotification(context.Background(), &domain.NotificationRequest{
		Type:      domain.NotificationTypeThresholdAlert,
		UserEmail: "grower@example.com",
		UserName:  "Alex",
		Data: domain.NotificationData{
			Metric:        domain.MetricTemperature,
			CurrentValue:  &current,
			Threshold:     &threshold,
			ThresholdType: domain.ThresholdTypeMax,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "email-1", resp.ID)
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	assert.Equal(t, []string{"grower@example.com"}, email.To)
	assert.Equal(t, "⚠️ Alert: temperature exceeded threshold", email.Subject)
	assert.Contains(t, email.HTML, "38.2")
	assert.Contains(t, email.HTML, "Max Threshold")
	assert.Contains(t, email.HTML, "Main Greenhouse") // zone 缺省
}

func TestSendNotification_ThresholdAlertMin(t *testing.T) {
	sender := &fakeEmailSender{}
	svc := NewNotificationService(sender, zap.NewNop())

	current := 18.0
	threshold := 30.0
	_, err := svc.SendNotification(context.Background(), &domain.NotificationRequest{
		Type:      domain.NotificationTypeThresholdAlert,
		UserEmail: "grower@example.com",
		Data: domain.NotificationData{
			Metric:        domain.MetricMoisture,
			CurrentValue:  &current,
			Threshold:     &threshold,
			ThresholdType: domain.ThresholdTypeMin,
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "⚠️ Alert: moisture below threshold", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "Min Threshold")
}

func TestSendNotification_ScheduleRun(t *testing.T) {
	sender := &fakeEmailSender{}
	svc := NewNotificationService(sender, zap.NewNop())

	_, err := svc.SendNotification(context.Background(), &domain.NotificationRequest{
		Type:      domain.NotificationTypeScheduleRun,
		UserEmail: "grower@example.com",
		Data: domain.NotificationData{
			ScheduleName: "Morning watering",
			ScheduleType: domain.ScheduleTypeIrrigation,
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, `🌱 Schedule "Morning watering" has started`, sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "💧 Irrigation")
	assert.Contains(t, sender.sent[0].HTML, "All Zones") // zone 缺省
}

func TestSendNotification_UnknownTypeFallsBackToAlert(t *testing.T) {
	sender := &fakeEmailSender{}
	svc := NewNotificationService(sender, zap.NewNop())

	_, err := svc.SendNotification(context.Background(), &domain.NotificationRequest{
		Type:      "something_else",
		UserEmail: "grower@example.com",
		Data: domain.NotificationData{
			Metric: domain.MetricHumidity,
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "⚠️ Alert: humidity below threshold", sender.sent[0].Subject)
}

func TestSendNotification_MissingEmail(t *testing.T) {
	sender := &fakeEmailSender{}
	svc := NewNotificationService(sender, zap.NewNop())

	resp, err := svc.SendNotification(context.Background(), &domain.NotificationRequest{
		Type: domain.NotificationTypeThresholdAlert,
	})

	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "user_email is required")
	assert.Empty(t, sender.sent)
}
