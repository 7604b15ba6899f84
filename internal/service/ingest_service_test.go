package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/realtime"
	"greenhouse-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---- 内存 fake，与 Repository 接口同形 ----

type fakeReadingsRepo struct {
	mu        sync.Mutex
	inserted  []*domain.SensorReading
	insertErr error
}

func (f *fakeReadingsRepo) InsertReadings(ctx context.Context, readings []*domain.SensorReading) ([]*domain.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for i, reading := range readings {
		reading.ID = fmt.Sprintf("r-%d", len(f.inserted)+i+1)
	}
	f.inserted = append(f.inserted, readings...)
	return readings, nil
}

func (f *fakeReadingsRepo) ListReadings(ctx context.Context, userID string, filters repository.ReadingFilters) ([]*domain.SensorReading, error) {
	return f.inserted, nil
}

type fakeDevicesRepo struct {
	mu         sync.Mutex
	registered map[string]bool // device_id → 已注册
	touches    []domain.DeviceTouch
	touchErr   error
}

func (f *fakeDevicesRepo) TouchDevice(ctx context.Context, touch domain.DeviceTouch, seenAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return false, f.touchErr
	}
	f.touches = append(f.touches, touch)
	return f.registered[touch.DeviceID], nil
}

func (f *fakeDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	return device, nil
}
func (f *fakeDevicesRepo) ListDevices(ctx context.Context, userID string) ([]*domain.Device, error) {
	return nil, nil
}
func (f *fakeDevicesRepo) GetDevice(ctx context.Context, userID, id string) (*domain.Device, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeDevicesRepo) UpdateDevice(ctx context.Context, userID, id string, device *domain.Device) error {
	return domain.ErrNotFound
}
func (f *fakeDevicesRepo) DeleteDevice(ctx context.Context, userID, id string) error {
	return domain.ErrNotFound
}

type fakeAlertsRepo struct {
	settings []*domain.AlertSetting
	listErr  error
}

func (f *fakeAlertsRepo) ListByUser(ctx context.Context, userID string) ([]*domain.AlertSetting, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.settings, nil
}
func (f *fakeAlertsRepo) CreateSetting(ctx context.Context, setting *domain.AlertSetting) (*domain.AlertSetting, error) {
	return setting, nil
}
func (f *fakeAlertsRepo) UpdateSetting(ctx context.Context, userID, id string, setting *domain.AlertSetting) error {
	return nil
}
func (f *fakeAlertsRepo) DeleteSetting(ctx context.Context, userID, id string) error {
	return nil
}

type fakeProfilesRepo struct {
	profile *domain.Profile
}

func (f *fakeProfilesRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.profile == nil {
		return nil, domain.ErrNotFound
	}
	return f.profile, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*domain.SensorReading
	err       error
}

func (f *fakePublisher) PublishReading(ctx context.Context, reading *domain.SensorReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, reading)
	return nil
}

func newTestIngestService(readings *fakeReadingsRepo, devices *fakeDevicesRepo, alerts *fakeAlertsRepo, publisher *fakePublisher) IngestService {
	// *fakePublisher 的 nil 指针不能直接塞进接口值
	var pub realtime.Publisher
	if publisher != nil {
		pub = publisher
	}
	return NewIngestService(readings, devices, alerts, &fakeProfilesRepo{}, nil, pub, zap.NewNop())
}

func fptr(v float64) *float64 { return &v }

func TestIngest_Batch(t *testing.T) {
	readings := &fakeReadingsRepo{}
	devices := &fakeDevicesRepo{registered: map[string]bool{"esp32-001": true}}
	svc := newTestIngestService(readings, devices, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", DeviceID: "esp32-001", Temperature: fptr(22.5)},
		{UserID: "user-1", DeviceID: "esp32-001", Humidity: fptr(61)},
		{UserID: "user-1", Moisture: fptr(40)},
	})

	require.NoError(t, err)
	assert.Len(t, result.Readings, 3)
	// 同一设备的多条读数折叠为一次活性更新
	assert.Equal(t, 1, result.DevicesUpdated)
	assert.Len(t, devices.touches, 1)
	assert.Len(t, readings.inserted, 3)
}

func TestIngest_EmptyBatch(t *testing.T) {
	svc := newTestIngestService(&fakeReadingsRepo{}, &fakeDevicesRepo{}, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoReadings)
}

func TestIngest_MissingUserIDRejectsWholeBatch(t *testing.T) {
	readings := &fakeReadingsRepo{}
	svc := newTestIngestService(readings, &fakeDevicesRepo{}, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(20)},
		{Temperature: fptr(21)}, // user_id 缺失
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMissingUserID)
	// 整批拒绝：第一条也不入库
	assert.Empty(t, readings.inserted)
}

func TestIngest_StorageFailureAborts(t *testing.T) {
	readings := &fakeReadingsRepo{insertErr: fmt.Errorf("connection refused")}
	svc := newTestIngestService(readings, &fakeDevicesRepo{}, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(20)},
	})

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "connection refused")
}

func TestIngest_UnregisteredDeviceIsSilentNoop(t *testing.T) {
	devices := &fakeDevicesRepo{registered: map[string]bool{}}
	svc := newTestIngestService(&fakeReadingsRepo{}, devices, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", DeviceID: "never-registered", Temperature: fptr(20)},
	})

	// 未注册设备不报错，读数照常入库
	require.NoError(t, err)
	assert.Len(t, result.Readings, 1)
}

func TestIngest_TouchFailureDoesNotFailRequest(t *testing.T) {
	devices := &fakeDevicesRepo{touchErr: fmt.Errorf("deadlock detected")}
	svc := newTestIngestService(&fakeReadingsRepo{}, devices, &fakeAlertsRepo{}, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", DeviceID: "esp32-001", Temperature: fptr(20)},
	})

	require.NoError(t, err)
	assert.Len(t, result.Readings, 1)
}

func TestIngest_AlertSettingsFailureDoesNotFailRequest(t *testing.T) {
	alerts := &fakeAlertsRepo{listErr: fmt.Errorf("timeout")}
	svc := newTestIngestService(&fakeReadingsRepo{}, &fakeDevicesRepo{}, alerts, nil)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(45)},
	})

	require.NoError(t, err)
	assert.Len(t, result.Readings, 1)
}

func TestIngest_PublishesToStream(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestIngestService(&fakeReadingsRepo{}, &fakeDevicesRepo{}, &fakeAlertsRepo{}, publisher)

	_, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(22)},
		{UserID: "user-1", Humidity: fptr(55)},
	})

	require.NoError(t, err)
	assert.Len(t, publisher.published, 2)
}

func TestIngest_PublishFailureDoesNotFailRequest(t *testing.T) {
	publisher := &fakePublisher{err: fmt.Errorf("stream full")}
	svc := newTestIngestService(&fakeReadingsRepo{}, &fakeDevicesRepo{}, &fakeAlertsRepo{}, publisher)

	result, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(22)},
	})

	require.NoError(t, err)
	assert.Len(t, result.Readings, 1)
}

func TestIngest_KeepsProvidedTimestamp(t *testing.T) {
	readings := &fakeReadingsRepo{}
	svc := newTestIngestService(readings, &fakeDevicesRepo{}, &fakeAlertsRepo{}, nil)

	recordedAt := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	_, err := svc.Ingest(context.Background(), []ReadingPayload{
		{UserID: "user-1", Temperature: fptr(22), Timestamp: &recordedAt},
	})

	require.NoError(t, err)
	require.Len(t, readings.inserted, 1)
	assert.Equal(t, recordedAt, readings.inserted[0].RecordedAt)
}
