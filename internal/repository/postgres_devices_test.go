package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresDevicesRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresDevicesRepo(db)

	return db, mock, repo
}

func TestCreateDevice_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	device, err := repo.CreateDevice(context.Background(), &domain.Device{
		UserID:   "user-1",
		DeviceID: "esp32-001",
		Name:     "Tomato bed sensor",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, device.ID)
	assert.Equal(t, "sensor", device.DeviceType)
	assert.Equal(t, domain.DeviceStatusOffline, device.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDevice_DuplicateDeviceID(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO iot_devices`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	device, err := repo.CreateDevice(context.Background(), &domain.Device{
		UserID:   "user-1",
		DeviceID: "esp32-001",
		Name:     "Duplicate",
	})

	assert.Nil(t, device)
	assert.ErrorIs(t, err, domain.ErrDeviceExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDevice_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("user-1", "dev-404").
		WillReturnError(sql.ErrNoRows)

	device, err := repo.GetDevice(context.Background(), "user-1", "dev-404")

	assert.Nil(t, device)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchDevice_Registered(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	seenAt := time.Now()
	battery := 87.5

	mock.ExpectExec(`UPDATE iot_devices`).
		WithArgs("esp32-001", domain.DeviceStatusOnline, seenAt, &battery, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	touched, err := repo.TouchDevice(context.Background(), domain.DeviceTouch{
		DeviceID:     "esp32-001",
		UserID:       "user-1",
		BatteryLevel: &battery,
	}, seenAt)

	require.NoError(t, err)
	assert.True(t, touched)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchDevice_Unregistered(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	seenAt := time.Now()

	// 未注册设备：0 行受影响，不是错误
	mock.ExpectExec(`UPDATE iot_devices`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	touched, err := repo.TouchDevice(context.Background(), domain.DeviceTouch{
		DeviceID: "unknown-device",
		UserID:   "user-1",
	}, seenAt)

	require.NoError(t, err)
	assert.False(t, touched)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDevices_ScansMetadata(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "device_id", "name", "device_type", "zone_id", "status",
		"last_seen", "firmware_version", "battery_level", "ip_address", "metadata",
		"created_at", "updated_at",
	}).AddRow(
		"dev-1", "user-1", "esp32-001", "Tomato bed sensor", "sensor", nil, "online",
		now, "1.2.0", 92.0, "10.0.0.12", `{"location":"north wall"}`,
		now, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs("user-1").
		WillReturnRows(rows)

	devices, err := repo.ListDevices(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "esp32-001", devices[0].DeviceID)
	assert.Equal(t, "north wall", devices[0].Metadata["location"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDevice_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM iot_devices`).
		WithArgs("user-1", "dev-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteDevice(context.Background(), "user-1", "dev-404")

	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
