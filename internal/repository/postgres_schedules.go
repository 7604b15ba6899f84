package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresSchedulesRepo 计划Repository实现
// 计划仅为展示数据，本服务不执行任何计划
type PostgresSchedulesRepo struct {
	db *sql.DB
}

// NewPostgresSchedulesRepo 创建计划Repository
func NewPostgresSchedulesRepo(db *sql.DB) *PostgresSchedulesRepo {
	return &PostgresSchedulesRepo{db: db}
}

var _ SchedulesRepository = (*PostgresSchedulesRepo)(nil)

// ListSchedules 查询用户计划列表
func (r *PostgresSchedulesRepo) ListSchedules(ctx context.Context, userID string) ([]*domain.Schedule, error) {
	if userID == "" {
		return []*domain.Schedule{}, nil
	}

	query := `
		SELECT
			id::text,
			user_id::text,
			name,
			type,
			days,
			start_time,
			end_time,
			duration,
			intensity,
			enabled,
			created_at,
			updated_at
		FROM schedules
		WHERE user_id = $1
		ORDER BY start_time
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		var schedule domain.Schedule
		if err := rows.Scan(
			&schedule.ID,
			&schedule.UserID,
			&schedule.Name,
			&schedule.Type,
			pq.Array(&schedule.Days),
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.Duration,
			&schedule.Intensity,
			&schedule.Enabled,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, &schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return schedules, nil
}

// CreateSchedule 新建计划
func (r *PostgresSchedulesRepo) CreateSchedule(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules
			(id, user_id, name, type, days, start_time, end_time, duration, intensity,
			 enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		schedule.ID, schedule.UserID, schedule.Name, schedule.Type,
		pq.Array(schedule.Days), schedule.StartTime, schedule.EndTime,
		schedule.Duration, schedule.Intensity, schedule.Enabled,
		schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

// UpdateSchedule 更新计划
func (r *PostgresSchedulesRepo) UpdateSchedule(ctx context.Context, userID, id string, schedule *domain.Schedule) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE schedules
		SET name = $3, type = $4, days = $5, start_time = $6, end_time = $7,
		    duration = $8, intensity = $9, enabled = $10, updated_at = $11
		WHERE user_id = $1 AND id = $2`,
		userID, id, schedule.Name, schedule.Type, pq.Array(schedule.Days),
		schedule.StartTime, schedule.EndTime, schedule.Duration,
		schedule.Intensity, schedule.Enabled, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteSchedule 删除计划
func (r *PostgresSchedulesRepo) DeleteSchedule(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM schedules WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
