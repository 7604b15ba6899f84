package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenhouse-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresPlantsRepo 植物Repository实现
type PostgresPlantsRepo struct {
	db *sql.DB
}

// NewPostgresPlantsRepo 创建植物Repository
func NewPostgresPlantsRepo(db *sql.DB) *PostgresPlantsRepo {
	return &PostgresPlantsRepo{db: db}
}

var _ PlantsRepository = (*PostgresPlantsRepo)(nil)

// ListPlants 查询用户植物列表
func (r *PostgresPlantsRepo) ListPlants(ctx context.Context, userID string) ([]*domain.Plant, error) {
	if userID == "" {
		return []*domain.Plant{}, nil
	}

	query := `
		SELECT
			id::text,
			user_id::text,
			name,
			species,
			growth_stage,
			health_score,
			planted_date,
			light_needs,
			water_needs,
			image_url,
			created_at,
			updated_at
		FROM plants
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plants: %w", err)
	}
	defer rows.Close()

	var plants []*domain.Plant
	for rows.Next() {
		var plant domain.Plant
		if err := rows.Scan(
			&plant.ID,
			&plant.UserID,
			&plant.Name,
			&plant.Species,
			&plant.GrowthStage,
			&plant.HealthScore,
			&plant.PlantedDate,
			&plant.LightNeeds,
			&plant.WaterNeeds,
			&plant.ImageURL,
			&plant.CreatedAt,
			&plant.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		plants = append(plants, &plant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plants: %w", err)
	}
	return plants, nil
}

// CreatePlant 新建植物
func (r *PostgresPlantsRepo) CreatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plants
			(id, user_id, name, species, growth_stage, health_score, planted_date,
			 light_needs, water_needs, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		plant.ID, plant.UserID, plant.Name, plant.Species, plant.GrowthStage,
		plant.HealthScore, plant.PlantedDate, plant.LightNeeds, plant.WaterNeeds,
		plant.ImageURL, plant.CreatedAt, plant.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}
	return plant, nil
}

// UpdatePlant 更新植物
func (r *PostgresPlantsRepo) UpdatePlant(ctx context.Context, userID, id string, plant *domain.Plant) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE plants
		SET name = $3, species = $4, growth_stage = $5, health_score = $6,
		    planted_date = $7, light_needs = $8, water_needs = $9, image_url = $10,
		    updated_at = $11
		WHERE user_id = $1 AND id = $2`,
		userID, id, plant.Name, plant.Species, plant.GrowthStage, plant.HealthScore,
		plant.PlantedDate, plant.LightNeeds, plant.WaterNeeds, plant.ImageURL,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update plant: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePlant 删除植物
func (r *PostgresPlantsRepo) DeletePlant(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM plants WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
