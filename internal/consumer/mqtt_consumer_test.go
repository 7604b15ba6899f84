package consumer

import (
	"context"
	"fmt"
	"testing"

	"greenhouse-data/internal/config"
	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIngestService struct {
	received [][]service.ReadingPayload
	err      error
}

func (f *fakeIngestService) Ingest(ctx context.Context, payloads []service.ReadingPayload) (*service.IngestResult, error) {
	f.received = append(f.received, payloads)
	if f.err != nil {
		return nil, f.err
	}
	readings := make([]*domain.SensorReading, len(payloads))
	for i := range payloads {
		readings[i] = &domain.SensorReading{ID: fmt.Sprintf("r-%d", i+1)}
	}
	return &service.IngestResult{Readings: readings}, nil
}

func newTestConsumer(svc service.IngestService) *MQTTConsumer {
	cfg := &config.Config{}
	cfg.MQTT.Topic = "greenhouse/readings"
	return NewMQTTConsumer(cfg, nil, svc, zap.NewNop())
}

func TestParseReadingsPayload_Single(t *testing.T) {
	payloads, err := ParseReadingsPayload([]byte(`{"user_id": "user-1", "device_id": "esp32-001", "temperature": 22.5}`))

	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "user-1", payloads[0].UserID)
	assert.Equal(t, "esp32-001", payloads[0].DeviceID)
	require.NotNil(t, payloads[0].Temperature)
	assert.Equal(t, 22.5, *payloads[0].Temperature)
}

func TestParseReadingsPayload_Batch(t *testing.T) {
	payloads, err := ParseReadingsPayload([]byte(`{"readings": [
		{"user_id": "user-1", "temperature": 22.5},
		{"user_id": "user-1", "humidity": 58}
	]}`))

	require.NoError(t, err)
	assert.Len(t, payloads, 2)
}

func TestParseReadingsPayload_Invalid(t *testing.T) {
	payloads, err := ParseReadingsPayload([]byte(`{not json`))

	assert.Error(t, err)
	assert.Nil(t, payloads)
}

func TestHandleMessage_IngestsBatch(t *testing.T) {
	svc := &fakeIngestService{}
	consumer := newTestConsumer(svc)

	err := consumer.handleMessage("greenhouse/readings", []byte(`{"readings": [
		{"user_id": "user-1", "device_id": "esp32-001", "temperature": 22.5}
	]}`))

	require.NoError(t, err)
	require.Len(t, svc.received, 1)
	assert.Len(t, svc.received[0], 1)
}

func TestHandleMessage_InvalidPayloadDropped(t *testing.T) {
	// 校验失败的消息丢弃，不向 MQTT 层报错
	svc := &fakeIngestService{err: service.ErrMissingUserID}
	consumer := newTestConsumer(svc)

	err := consumer.handleMessage("greenhouse/readings", []byte(`{"temperature": 22.5}`))

	assert.NoError(t, err)
}

func TestHandleMessage_StorageErrorPropagates(t *testing.T) {
	svc := &fakeIngestService{err: fmt.Errorf("connection refused")}
	consumer := newTestConsumer(svc)

	err := consumer.handleMessage("greenhouse/readings", []byte(`{"user_id": "user-1"}`))

	assert.ErrorContains(t, err, "connection refused")
}

func TestHandleMessage_MalformedJSON(t *testing.T) {
	svc := &fakeIngestService{}
	consumer := newTestConsumer(svc)

	err := consumer.handleMessage("greenhouse/readings", []byte(`not json`))

	assert.Error(t, err)
	assert.Empty(t, svc.received)
}
