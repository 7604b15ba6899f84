package domain

import "time"

// Plant 植物领域模型（对应 plants 表）
type Plant struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Name        string     `db:"name" json:"name"`
	Species     *string    `db:"species" json:"species"`
	GrowthStage *string    `db:"growth_stage" json:"growth_stage"`
	HealthScore *float64   `db:"health_score" json:"health_score"`
	PlantedDate *time.Time `db:"planted_date" json:"planted_date"`
	LightNeeds  *string    `db:"light_needs" json:"light_needs"`
	WaterNeeds  *string    `db:"water_needs" json:"water_needs"`
	ImageURL    *string    `db:"image_url" json:"image_url"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
