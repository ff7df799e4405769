package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// ShopPerformanceRepository 店铺级表现汇总仓储
// 每个 (shop_id, performance_date, hour) 至多一行
type ShopPerformanceRepository interface {
	BatchUpsert(ctx context.Context, records []model.ShopPerformance) (int, error)
	ListRange(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]model.ShopPerformance, error)
}

// ==================== 仓储实现 ====================

type shopPerformanceRepo struct {
	db *gorm.DB
}

// NewShopPerformanceRepository 创建表现汇总仓储
func NewShopPerformanceRepository(db *gorm.DB) ShopPerformanceRepository {
	return &shopPerformanceRepo{db: db}
}

func (r *shopPerformanceRepo) BatchUpsert(ctx context.Context, records []model.ShopPerformance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "shop_id"}, {Name: "performance_date"}, {Name: "hour"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"impression", "clicks", "expense", "broad_gmv", "broad_order",
			"ctr", "roas", "acos", "source", "updated_at",
		}),
	}).Create(&records).Error
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *shopPerformanceRepo) ListRange(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]model.ShopPerformance, error) {
	var records []model.ShopPerformance

	query := r.db.WithContext(ctx).
		Where("shop_id = ? AND performance_date >= ? AND performance_date <= ?", shopID, start, end)

	if hourly {
		query = query.Where("hour >= 0")
	} else {
		query = query.Where("hour = ?", model.HourDaily)
	}

	err := query.Order("performance_date ASC, hour ASC").Find(&records).Error
	return records, err
}
