package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Campaign 广告活动（累积资源）
// 历史活动会下线但本地记录要保留，同步走 (shop_id, campaign_id) upsert
type Campaign struct {
	BaseModel

	ShopID     int64 `gorm:"uniqueIndex:idx_shop_campaign;not null" json:"shop_id"`
	CampaignID int64 `gorm:"uniqueIndex:idx_shop_campaign;not null" json:"campaign_id"`

	Name   string `gorm:"size:255" json:"name"`
	AdType string `gorm:"size:32" json:"ad_type"` // auto / manual / shop
	Status string `gorm:"size:32;index" json:"status"`

	DailyBudget float64 `json:"daily_budget"`
	TotalBudget float64 `json:"total_budget"`

	Keywords pq.StringArray `gorm:"type:text[]" json:"keywords"`

	// 原始返回，排查对账问题时用
	RawPayload datatypes.JSON `json:"-"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// HourDaily CampaignPerformance.Hour 的日粒度哨兵值
const HourDaily = -1

// CampaignPerformance 单活动日/小时表现（累积资源）
// 自然键 (shop_id, campaign_id, performance_date, hour)；hour=-1 表示日粒度行
type CampaignPerformance struct {
	BaseModel

	ShopID     int64 `gorm:"uniqueIndex:idx_campaign_perf;not null" json:"shop_id"`
	CampaignID int64 `gorm:"uniqueIndex:idx_campaign_perf;not null" json:"campaign_id"`

	PerformanceDate time.Time `gorm:"uniqueIndex:idx_campaign_perf;type:date;not null" json:"performance_date"`
	Hour            int       `gorm:"uniqueIndex:idx_campaign_perf;default:-1" json:"hour"`

	Impression int64   `gorm:"default:0" json:"impression"`
	Clicks     int64   `gorm:"default:0" json:"clicks"`
	Expense    float64 `gorm:"default:0" json:"expense"`
	BroadGmv   float64 `gorm:"default:0" json:"broad_gmv"`
	BroadOrder int64   `gorm:"default:0" json:"broad_order"`

	// 派生指标（同步时按原始值重算）
	Ctr  float64 `gorm:"default:0" json:"ctr"`
	Roas float64 `gorm:"default:0" json:"roas"`
	Acos float64 `gorm:"default:0" json:"acos"`
}

func (CampaignPerformance) TableName() string {
	return "campaign_performances"
}
