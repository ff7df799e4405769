package model

import (
	"time"

	"gorm.io/datatypes"
)

// 同步资源类型
const (
	ResourceFlashSale   = "flash_sale"
	ResourceProduct     = "product"
	ResourceCampaign    = "campaign"
	ResourcePerformance = "performance"
)

// SyncStatus 每个 (shop, resource_kind) 一行的同步状态
// is_syncing 仅作提示性标记（advisory），不做分布式锁；
// 并发触发时靠各资源的幂等写入（upsert / 全量替换）兜底
type SyncStatus struct {
	BaseModel

	ShopID       int64  `gorm:"uniqueIndex:idx_shop_kind;not null" json:"shop_id"`
	ResourceKind string `gorm:"uniqueIndex:idx_shop_kind;size:32;not null" json:"resource_kind"`

	IsSyncing     bool              `gorm:"default:false" json:"is_syncing"`
	LastSyncAt    *time.Time        `json:"last_sync_at"`
	LastSyncError string            `gorm:"type:text" json:"last_sync_error"`
	Progress      datatypes.JSONMap `json:"progress"`
}

func (SyncStatus) TableName() string {
	return "sync_statuses"
}
