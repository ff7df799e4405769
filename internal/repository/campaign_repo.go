package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// CampaignRepository 广告活动仓储
// 累积资源：历史行保留，命中自然键的行原地覆盖
type CampaignRepository interface {
	// BatchUpsert 按 (shop_id, campaign_id) 批量写入
	BatchUpsert(ctx context.Context, campaigns []model.Campaign) (int, error)
	// BatchUpsertPerformance 按 (shop_id, campaign_id, performance_date, hour) 批量写入
	BatchUpsertPerformance(ctx context.Context, rows []model.CampaignPerformance) (int, error)

	List(ctx context.Context, filter CampaignFilter) ([]model.Campaign, int64, error)
	ListCampaignIDs(ctx context.Context, shopID int64) ([]int64, error)
	// SumPerformance 按 (date[, hour]) 汇总活动级表现，聚合兜底路径用
	SumPerformance(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]PerformanceSum, error)
}

// ==================== 过滤 / 汇总结构 ====================

// CampaignFilter 活动过滤条件
type CampaignFilter struct {
	ShopID   int64
	Status   string
	AdType   string
	Page     int
	PageSize int
}

// PerformanceSum 按日期（小时）分组的求和结果
type PerformanceSum struct {
	PerformanceDate time.Time
	Hour            int
	Impression      int64
	Clicks          int64
	Expense         float64
	BroadGmv        float64
	BroadOrder      int64
}

// ==================== 仓储实现 ====================

type campaignRepo struct {
	db *gorm.DB
}

// NewCampaignRepository 创建广告活动仓储
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

func (r *campaignRepo) BatchUpsert(ctx context.Context, campaigns []model.Campaign) (int, error) {
	if len(campaigns) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "campaign_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "ad_type", "status",
			"daily_budget", "total_budget", "keywords",
			"raw_payload", "start_date", "end_date", "updated_at",
		}),
	}).Create(&campaigns).Error
	if err != nil {
		return 0, err
	}
	return len(campaigns), nil
}

func (r *campaignRepo) BatchUpsertPerformance(ctx context.Context, rows []model.CampaignPerformance) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "shop_id"}, {Name: "campaign_id"},
			{Name: "performance_date"}, {Name: "hour"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"impression", "clicks", "expense", "broad_gmv", "broad_order",
			"ctr", "roas", "acos", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *campaignRepo) List(ctx context.Context, filter CampaignFilter) ([]model.Campaign, int64, error) {
	var campaigns []model.Campaign
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Campaign{})

	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AdType != "" {
		query = query.Where("ad_type = ?", filter.AdType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("campaign_id DESC").Limit(filter.PageSize).Offset(offset).Find(&campaigns).Error
	return campaigns, total, err
}

func (r *campaignRepo) ListCampaignIDs(ctx context.Context, shopID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("shop_id = ?", shopID).
		Pluck("campaign_id", &ids).Error
	return ids, err
}

// SumPerformance 聚合兜底查询：把活动级行按 (date[, hour]) 分组求和
// 只统计与请求粒度一致的行（日粒度行 hour = -1）
func (r *campaignRepo) SumPerformance(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]PerformanceSum, error) {
	var sums []PerformanceSum

	query := r.db.WithContext(ctx).
		Model(&model.CampaignPerformance{}).
		Select(`performance_date, hour,
			SUM(impression) AS impression,
			SUM(clicks) AS clicks,
			SUM(expense) AS expense,
			SUM(broad_gmv) AS broad_gmv,
			SUM(broad_order) AS broad_order`).
		Where("shop_id = ? AND performance_date >= ? AND performance_date <= ?", shopID, start, end)

	if hourly {
		query = query.Where("hour >= 0")
	} else {
		query = query.Where("hour = ?", model.HourDaily)
	}

	err := query.
		Group("performance_date, hour").
		Order("performance_date ASC, hour ASC").
		Scan(&sums).Error
	return sums, err
}
