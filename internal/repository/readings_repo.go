package repository

import (
	"context"
	"time"

	"greenhouse-data/internal/domain"
)

// ReadingsRepository 传感器读数Repository接口
// 使用强类型领域模型，不使用map[string]any
type ReadingsRepository interface {
	// 批量写入（一次请求一条INSERT，由存储层保证原子性）
	InsertReadings(ctx context.Context, readings []*domain.SensorReading) ([]*domain.SensorReading, error)

	// 查询（仪表盘图表/导出）
	ListReadings(ctx context.Context, userID string, filters ReadingFilters) ([]*domain.SensorReading, error)
}

// ReadingFilters 读数查询过滤器
type ReadingFilters struct {
	ZoneID string    // 分区过滤（空=全部）
	From   time.Time // 起始时间（零值=不限）
	To     time.Time // 结束时间（零值=不限）
	Limit  int       // 返回条数上限（<=0 时默认 500）
}
