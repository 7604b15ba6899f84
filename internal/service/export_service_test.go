package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportReadings_GeneratesWorkbook(t *testing.T) {
	zoneID := "zone-1"
	temp := 24.5
	readings := &fakeReadingsRepo{inserted: []*domain.SensorReading{
		{
			ID:          "r-1",
			UserID:      "user-1",
			ZoneID:      &zoneID,
			Temperature: &temp,
			RecordedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewExportService(readings)

	data, err := svc.ExportReadings(context.Background(), "user-1", repository.ReadingFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// 生成的文件应能被 excelize 重新打开
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sensor Readings")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Recorded At", rows[0][0])
	assert.Equal(t, "2025-06-01T12:00:00Z", rows[1][0])
	assert.Equal(t, "zone-1", rows[1][1])
	assert.Equal(t, "24.5", rows[1][2])
}

func TestExportReadings_EmptyResult(t *testing.T) {
	svc := NewExportService(&fakeReadingsRepo{})

	data, err := svc.ExportReadings(context.Background(), "user-1", repository.ReadingFilters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sensor Readings")
	require.NoError(t, err)
	require.Len(t, rows, 1) // 仅表头
}

func TestExportReadings_RequiresUserID(t *testing.T) {
	svc := NewExportService(&fakeReadingsRepo{})

	data, err := svc.ExportReadings(context.Background(), "", repository.ReadingFilters{})

	assert.Nil(t, data)
	assert.ErrorContains(t, err, "user_id is required")
}
