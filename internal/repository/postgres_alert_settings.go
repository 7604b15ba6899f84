package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresAlertSettingsRepo 阈值报警规则Repository实现
type PostgresAlertSettingsRepo struct {
	db *sql.DB
}

// NewPostgresAlertSettingsRepo 创建报警规则Repository
func NewPostgresAlertSettingsRepo(db *sql.DB) *PostgresAlertSettingsRepo {
	return &PostgresAlertSettingsRepo{db: db}
}

// 确保实现了接口
var _ AlertSettingsRepository = (*PostgresAlertSettingsRepo)(nil)

// ListByUser 查询用户全部报警规则（遥测路径按读数逐条调用）
func (r *PostgresAlertSettingsRepo) ListByUser(ctx context.Context, userID string) ([]*domain.AlertSetting, error) {
	if userID == "" {
		return []*domain.AlertSetting{}, nil
	}

	query := `
		SELECT
			id::text,
			user_id::text,
			zone_id::text,
			metric,
			min_threshold,
			max_threshold,
			COALESCE(email_enabled, false),
			created_at
		FROM alert_settings
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert settings: %w", err)
	}
	defer rows.Close()

	var settings []*domain.AlertSetting
	for rows.Next() {
		var setting domain.AlertSetting
		if err := rows.Scan(
			&setting.ID,
			&setting.UserID,
			&setting.ZoneID,
			&setting.Metric,
			&setting.MinThreshold,
			&setting.MaxThreshold,
			&setting.EmailEnabled,
			&setting.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert setting: %w", err)
		}
		settings = append(settings, &setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert settings: %w", err)
	}

	return settings, nil
}

// CreateSetting 新建报警规则
func (r *PostgresAlertSettingsRepo) CreateSetting(ctx context.Context, setting *domain.AlertSetting) (*domain.AlertSetting, error) {
	if setting.ID == "" {
		setting.ID = uuid.New().String()
	}
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO alert_settings
			(id, user_id, zone_id, metric, min_threshold, max_threshold, email_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		setting.ID,
		setting.UserID,
		setting.ZoneID,
		setting.Metric,
		setting.MinThreshold,
		setting.MaxThreshold,
		setting.EmailEnabled,
		setting.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert setting: %w", err)
	}
	return setting, nil
}

// UpdateSetting 更新报警规则
func (r *PostgresAlertSettingsRepo) UpdateSetting(ctx context.Context, userID, id string, setting *domain.AlertSetting) error {
	query := `
		UPDATE alert_settings
		SET zone_id = $3,
		    metric = $4,
		    min_threshold = $5,
		    max_threshold = $6,
		    email_enabled = $7
		WHERE user_id = $1 AND id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		userID, id,
		setting.ZoneID,
		setting.Metric,
		setting.MinThreshold,
		setting.MaxThreshold,
		setting.EmailEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert setting: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteSetting 删除报警规则
func (r *PostgresAlertSettingsRepo) DeleteSetting(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM alert_settings WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert setting: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
