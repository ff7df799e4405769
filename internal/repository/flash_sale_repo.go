package repository

import (
	"context"

	"gorm.io/gorm"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// FlashSaleRepository 限时特卖仓储
// 快照资源：每次同步对店铺（或场次）范围内整组替换
type FlashSaleRepository interface {
	// ReplaceForShop 删掉店铺下全部场次后批量写入新快照，事务内完成
	ReplaceForShop(ctx context.Context, shopID int64, sales []model.FlashSale) (int, error)
	// ReplaceItems 按场次范围替换场次内商品
	ReplaceItems(ctx context.Context, shopID int64, flashSaleID int64, items []model.FlashSaleItem) (int, error)

	GetByFlashSaleID(ctx context.Context, shopID, flashSaleID int64) (*model.FlashSale, error)
	List(ctx context.Context, filter FlashSaleFilter) ([]model.FlashSale, int64, error)
	ListItems(ctx context.Context, shopID, flashSaleID int64) ([]model.FlashSaleItem, error)
}

// ==================== 过滤条件 ====================

// FlashSaleFilter 场次过滤条件
type FlashSaleFilter struct {
	ShopID   int64
	Status   int // 0 表示不筛选
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type flashSaleRepo struct {
	db *gorm.DB
}

// NewFlashSaleRepository 创建限时特卖仓储
func NewFlashSaleRepository(db *gorm.DB) FlashSaleRepository {
	return &flashSaleRepo{db: db}
}

// ReplaceForShop 全量替换店铺场次快照
// delete + insert 放在同一事务里，避免外部读到中途的空集
func (r *flashSaleRepo) ReplaceForShop(ctx context.Context, shopID int64, sales []model.FlashSale) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.FlashSale{}).Error; err != nil {
			return err
		}
		if len(sales) == 0 {
			return nil
		}
		return tx.Create(&sales).Error
	})
	if err != nil {
		return 0, err
	}
	return len(sales), nil
}

// ReplaceItems 替换场次内商品快照（按 flash_sale_id 范围删除）
func (r *flashSaleRepo) ReplaceItems(ctx context.Context, shopID int64, flashSaleID int64, items []model.FlashSaleItem) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ? AND flash_sale_id = ?", shopID, flashSaleID).
			Delete(&model.FlashSaleItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *flashSaleRepo) GetByFlashSaleID(ctx context.Context, shopID, flashSaleID int64) (*model.FlashSale, error) {
	var sale model.FlashSale
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND flash_sale_id = ?", shopID, flashSaleID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *flashSaleRepo) List(ctx context.Context, filter FlashSaleFilter) ([]model.FlashSale, int64, error) {
	var sales []model.FlashSale
	var total int64

	query := r.db.WithContext(ctx).Model(&model.FlashSale{})

	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Status > 0 {
		query = query.Where("status = ?", filter.Status)
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
	err := query.Order("start_time DESC").Limit(filter.PageSize).Offset(offset).Find(&sales).Error
	return sales, total, err
}

func (r *flashSaleRepo) ListItems(ctx context.Context, shopID, flashSaleID int64) ([]model.FlashSaleItem, error) {
	var items []model.FlashSaleItem
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND flash_sale_id = ?", shopID, flashSaleID).
		Order("item_id ASC, model_id ASC").
		Find(&items).Error
	return items, err
}
