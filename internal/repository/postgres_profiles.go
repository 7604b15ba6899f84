package repository

import (
	"context"
	"database/sql"
	"fmt"

	"greenhouse-data/internal/domain"
)

// PostgresProfilesRepo 用户资料Repository实现
type PostgresProfilesRepo struct {
	db *sql.DB
}

// NewPostgresProfilesRepo 创建用户资料Repository
func NewPostgresProfilesRepo(db *sql.DB) *PostgresProfilesRepo {
	return &PostgresProfilesRepo{db: db}
}

var _ ProfilesRepository = (*PostgresProfilesRepo)(nil)

// GetByUserID 按用户ID查询资料（报警路径用于解析收件地址）
func (r *PostgresProfilesRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT
			id::text,
			user_id::text,
			display_name,
			email,
			notification_email,
			created_at,
			updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var profile domain.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.Email,
		&profile.NotificationEmail,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
