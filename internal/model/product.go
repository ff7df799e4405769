package model

import (
	"github.com/lib/pq"
)

// 商品状态
const (
	ItemStatusNormal = "NORMAL"
	ItemStatusBanned = "BANNED"
	ItemStatusUnlist = "UNLIST"
)

// Product 商品（快照资源，按店铺整组替换）
type Product struct {
	BaseModel

	ShopID int64 `gorm:"index:idx_product_shop;not null" json:"shop_id"`
	ItemID int64 `gorm:"index" json:"item_id"`

	ItemName   string `gorm:"size:255" json:"item_name"`
	ItemSku    string `gorm:"size:100" json:"item_sku"`
	ItemStatus string `gorm:"size:32;index" json:"item_status"` // NORMAL / BANNED / UNLIST

	CategoryID int64   `json:"category_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	HasModel   bool    `gorm:"default:false" json:"has_model"`

	Images pq.StringArray `gorm:"type:text[]" json:"images"`
}

func (Product) TableName() string {
	return "products"
}

// ProductModel 商品变体（快照资源，跟随商品整组替换）
// 自然键为 item_id + model_id
type ProductModel struct {
	BaseModel

	ShopID  int64 `gorm:"index;not null" json:"shop_id"`
	ItemID  int64 `gorm:"index:idx_model_item" json:"item_id"`
	ModelID int64 `gorm:"index:idx_model_item" json:"model_id"`

	ModelName string  `gorm:"size:255" json:"model_name"`
	ModelSku  string  `gorm:"size:100" json:"model_sku"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Status    int     `gorm:"default:1" json:"status"` // 0-disabled 1-enabled
}

func (ProductModel) TableName() string {
	return "product_models"
}
