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

// PostgresZonesRepo 分区Repository实现
type PostgresZonesRepo struct {
	db *sql.DB
}

// NewPostgresZonesRepo 创建分区Repository
func NewPostgresZonesRepo(db *sql.DB) *PostgresZonesRepo {
	return &PostgresZonesRepo{db: db}
}

var _ ZonesRepository = (*PostgresZonesRepo)(nil)

const zoneColumns = `
	id::text,
	user_id::text,
	name,
	color,
	plants,
	created_at,
	updated_at`

// ListZones 查询用户分区列表
func (r *PostgresZonesRepo) ListZones(ctx context.Context, userID string) ([]*domain.Zone, error) {
	if userID == "" {
		return []*domain.Zone{}, nil
	}

	query := `SELECT ` + zoneColumns + ` FROM zones WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zones []*domain.Zone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}
	return zones, nil
}

// GetZone 按ID查询分区
func (r *PostgresZonesRepo) GetZone(ctx context.Context, userID, id string) (*domain.Zone, error) {
	if userID == "" || id == "" {
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + zoneColumns + ` FROM zones WHERE user_id = $1 AND id = $2`
	zone, err := scanZone(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return zone, nil
}

// CreateZone 新建分区
func (r *PostgresZonesRepo) CreateZone(ctx context.Context, zone *domain.Zone) (*domain.Zone, error) {
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	now := time.Now()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO zones (id, user_id, name, color, plants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		zone.ID, zone.UserID, zone.Name, zone.Color, pq.Array(zone.Plants),
		zone.CreatedAt, zone.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return zone, nil
}

// UpdateZone 更新分区
func (r *PostgresZonesRepo) UpdateZone(ctx context.Context, userID, id string, zone *domain.Zone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE zones
		SET name = $3, color = $4, plants = $5, updated_at = $6
		WHERE user_id = $1 AND id = $2`,
		userID, id, zone.Name, zone.Color, pq.Array(zone.Plants), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteZone 删除分区
func (r *PostgresZonesRepo) DeleteZone(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM zones WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanZone(s scanner) (*domain.Zone, error) {
	var zone domain.Zone
	if err := s.Scan(
		&zone.ID,
		&zone.UserID,
		&zone.Name,
		&zone.Color,
		pq.Array(&zone.Plants),
		&zone.CreatedAt,
		&zone.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan zone: %w", err)
	}
	return &zone, nil
}
