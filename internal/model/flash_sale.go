package model

// Flash Sale 状态常量（对应开放平台 type 字段）
const (
	FlashSaleStatusUpcoming = 1 // 即将开始
	FlashSaleStatusOngoing  = 2 // 进行中
	FlashSaleStatusExpired  = 3 // 已结束
)

// FlashSale 店铺限时特卖场次（快照资源）
// 平台只返回当前状态，没有变更日志，每次同步整组替换
type FlashSale struct {
	BaseModel

	ShopID      int64 `gorm:"index:idx_fs_shop;not null" json:"shop_id"`
	FlashSaleID int64 `gorm:"index" json:"flash_sale_id"`
	TimeslotID  int64 `json:"timeslot_id"`

	Status    int   `json:"status"` // 1-upcoming 2-ongoing 3-expired
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`

	// 运营关键指标
	ItemCount        int `gorm:"default:0" json:"item_count"`
	EnabledItemCount int `gorm:"default:0" json:"enabled_item_count"`
	ClickCount       int `gorm:"default:0" json:"click_count"`
	RemindmeCount    int `gorm:"default:0" json:"remindme_count"`
}

func (FlashSale) TableName() string {
	return "flash_sales"
}

// 商品在场次中的启用状态
const (
	FlashSaleItemDisabled = 0
	FlashSaleItemEnabled  = 1
)

// FlashSaleItem 场次内的商品/变体（快照资源，按场次整组替换）
type FlashSaleItem struct {
	BaseModel

	ShopID      int64 `gorm:"index;not null" json:"shop_id"`
	FlashSaleID int64 `gorm:"index:idx_fsi_sale;not null" json:"flash_sale_id"`

	ItemID   int64  `gorm:"index" json:"item_id"`
	ModelID  int64  `json:"model_id"` // 0 表示无变体商品
	ItemName string `gorm:"size:255" json:"item_name"`

	OriginalPrice  float64 `json:"original_price"`
	PromotionPrice float64 `json:"promotion_price"`
	CampaignStock  int     `json:"campaign_stock"`
	Stock          int     `json:"stock"`
	PurchaseLimit  int     `json:"purchase_limit"`
	Status         int     `json:"status"` // 0-disabled 1-enabled
}

func (FlashSaleItem) TableName() string {
	return "flash_sale_items"
}
