package model

import (
	"time"
)

// 聚合数据来源
const (
	PerformanceSourceUpstream = "upstream" // 平台聚合接口直出
	PerformanceSourceComputed = "computed" // 由活动级数据汇总兜底
)

// ShopPerformance 店铺级日/小时广告表现汇总
// 每个 (shop_id, performance_date, hour) 至多一行；
// 数值要么全部来自平台聚合接口，要么全部由活动行求和，不混用
type ShopPerformance struct {
	BaseModel

	ShopID          int64     `gorm:"uniqueIndex:idx_shop_perf;not null" json:"shop_id"`
	PerformanceDate time.Time `gorm:"uniqueIndex:idx_shop_perf;type:date;not null" json:"performance_date"`
	Hour            int       `gorm:"uniqueIndex:idx_shop_perf;default:-1" json:"hour"` // -1 表示日粒度

	Impression int64   `gorm:"default:0" json:"impression"`
	Clicks     int64   `gorm:"default:0" json:"clicks"`
	Expense    float64 `gorm:"default:0" json:"expense"`
	BroadGmv   float64 `gorm:"default:0" json:"broad_gmv"`
	BroadOrder int64   `gorm:"default:0" json:"broad_order"`

	Ctr  float64 `gorm:"default:0" json:"ctr"`
	Roas float64 `gorm:"default:0" json:"roas"`
	Acos float64 `gorm:"default:0" json:"acos"`

	Source string `gorm:"size:16" json:"source"` // upstream / computed
}

func (ShopPerformance) TableName() string {
	return "shop_performances"
}
