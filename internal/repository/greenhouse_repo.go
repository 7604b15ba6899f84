package repository

import (
	"context"

	"greenhouse-data/internal/domain"
)

// ZonesRepository 分区Repository接口
type ZonesRepository interface {
	ListZones(ctx context.Context, userID string) ([]*domain.Zone, error)
	GetZone(ctx context.Context, userID, id string) (*domain.Zone, error)
	CreateZone(ctx context.Context, zone *domain.Zone) (*domain.Zone, error)
	UpdateZone(ctx context.Context, userID, id string, zone *domain.Zone) error
	DeleteZone(ctx context.Context, userID, id string) error
}

// PlantsRepository 植物Repository接口
type PlantsRepository interface {
	ListPlants(ctx context.Context, userID string) ([]*domain.Plant, error)
	CreatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	UpdatePlant(ctx context.Context, userID, id string, plant *domain.Plant) error
	DeletePlant(ctx context.Context, userID, id string) error
}

// SchedulesRepository 计划Repository接口（纯展示数据）
type SchedulesRepository interface {
	ListSchedules(ctx context.Context, userID string) ([]*domain.Schedule, error)
	CreateSchedule(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error)
	UpdateSchedule(ctx context.Context, userID, id string, schedule *domain.Schedule) error
	DeleteSchedule(ctx context.Context, userID, id string) error
}

// ProfilesRepository 用户资料Repository接口（报警路径用于解析收件地址）
type ProfilesRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}
