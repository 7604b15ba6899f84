package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"

	"github.com/xuri/excelize/v2"
)

// ReadingsExportHeader 读数导出表头
var ReadingsExportHeader = []string{
	"Recorded At",
	"Zone",
	"Temperature (°C)",
	"Humidity (%)",
	"Soil Moisture (%)",
	"Light Level (lux)",
}

// ExportService 读数导出服务接口
type ExportService interface {
	ExportReadings(ctx context.Context, userID string, filters repository.ReadingFilters) ([]byte, error)
}

// exportService 实现
type exportService struct {
	readingsRepo repository.ReadingsRepository
}

// NewExportService 创建导出服务
func NewExportService(readingsRepo repository.ReadingsRepository) ExportService {
	return &exportService{readingsRepo: readingsRepo}
}

// ExportReadings 导出读数为 Excel 文件
func (s *exportService) ExportReadings(ctx context.Context, userID string, filters repository.ReadingFilters) ([]byte, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	readings, err := s.readingsRepo.ListReadings(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings for export: %w", err)
	}

	return generateReadingsExcel(readings)
}

// generateReadingsExcel 生成读数 Excel 文件
func generateReadingsExcel(readings []*domain.SensorReading) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：WriteTo 之前不能 Close

	sheetName := "Sensor Readings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	// 表头
	for i, header := range ReadingsExportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	// 数据行
	for rowIdx, reading := range readings {
		row := rowIdx + 2
		values := []any{
			reading.RecordedAt.Format(time.RFC3339),
			stringOrEmpty(reading.ZoneID),
			floatOrEmpty(reading.Temperature),
			floatOrEmpty(reading.Humidity),
			floatOrEmpty(reading.Moisture),
			floatOrEmpty(reading.LightLevel),
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
