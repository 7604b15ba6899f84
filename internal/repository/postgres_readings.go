package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresReadingsRepository 传感器读数Repository实现
type PostgresReadingsRepository struct {
	db *sql.DB
}

// NewPostgresReadingsRepository 创建传感器读数Repository
func NewPostgresReadingsRepository(db *sql.DB) *PostgresReadingsRepository {
	return &PostgresReadingsRepository{db: db}
}

// 确保实现了接口
var _ ReadingsRepository = (*PostgresReadingsRepository)(nil)

// InsertReadings 批量写入读数（单条INSERT多VALUES，原子性由存储层保证）
// 未携带 recorded_at 的读数在调用方已补当前时间；ID 在此生成
func (r *PostgresReadingsRepository) InsertReadings(ctx context.Context, readings []*domain.SensorReading) ([]*domain.SensorReading, error) {
	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings to insert")
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO sensor_readings
			(id, user_id, zone_id, temperature, humidity, moisture, light_level, recorded_at)
		VALUES `)

	args := make([]any, 0, len(readings)*8)
	for i, reading := range readings {
		if reading.ID == "" {
			reading.ID = uuid.New().String()
		}
		if reading.RecordedAt.IsZero() {
			reading.RecordedAt = time.Now()
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			reading.ID,
			reading.UserID,
			reading.ZoneID,
			reading.Temperature,
			reading.Humidity,
			reading.Moisture,
			reading.LightLevel,
			reading.RecordedAt,
		)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to insert sensor readings: %w", err)
	}

	return readings, nil
}

// ListReadings 查询读数（时间倒序）
func (r *PostgresReadingsRepository) ListReadings(ctx context.Context, userID string, filters ReadingFilters) ([]*domain.SensorReading, error) {
	if userID == "" {
		return []*domain.SensorReading{}, nil
	}

	where := []string{"user_id = $1"}
	args := []any{userID}
	argN := 2

	if filters.ZoneID != "" {
		where = append(where, fmt.Sprintf("zone_id = $%d", argN))
		args = append(args, filters.ZoneID)
		argN++
	}
	if !filters.From.IsZero() {
		where = append(where, fmt.Sprintf("recorded_at >= $%d", argN))
		args = append(args, filters.From)
		argN++
	}
	if !filters.To.IsZero() {
		where = append(where, fmt.Sprintf("recorded_at <= $%d", argN))
		args = append(args, filters.To)
		argN++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)

	query := `
		SELECT
			id::text,
			user_id::text,
			zone_id::text,
			temperature,
			humidity,
			moisture,
			light_level,
			recorded_at
		FROM sensor_readings
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY recorded_at DESC
		LIMIT $` + fmt.Sprintf("%d", argN)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	defer rows.Close()

	var readings []*domain.SensorReading
	for rows.Next() {
		var reading domain.SensorReading
		if err := rows.Scan(
			&reading.ID,
			&reading.UserID,
			&reading.ZoneID,
			&reading.Temperature,
			&reading.Humidity,
			&reading.Moisture,
			&reading.LightLevel,
			&reading.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		readings = append(readings, &reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}

	return readings, nil
}
