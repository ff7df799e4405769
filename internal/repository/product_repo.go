package repository

import (
	"context"

	"gorm.io/gorm"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储
// 快照资源：商品和变体一起整组替换
type ProductRepository interface {
	// ReplaceForShop 店铺范围内全量替换商品与变体，事务内完成
	ReplaceForShop(ctx context.Context, shopID int64, products []model.Product, models []model.ProductModel) (int, error)

	GetByItemID(ctx context.Context, shopID, itemID int64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListModels(ctx context.Context, shopID, itemID int64) ([]model.ProductModel, error)
	CountByShop(ctx context.Context, shopID int64) (int64, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	ShopID     int64
	ItemStatus string
	Keyword    string
	Page       int
	PageSize   int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

// ReplaceForShop 全量替换店铺商品快照
// 商品与变体同一事务删除重建，写入条数 = 商品数 + 变体数
func (r *productRepo) ReplaceForShop(ctx context.Context, shopID int64, products []model.Product, models []model.ProductModel) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.ProductModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}
		if len(models) > 0 {
			if err := tx.Create(&models).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(products) + len(models), nil
}

func (r *productRepo) GetByItemID(ctx context.Context, shopID, itemID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND item_id = ?", shopID, itemID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.ItemStatus != "" {
		query = query.Where("item_status = ?", filter.ItemStatus)
	}
	if filter.Keyword != "" {
		query = query.Where("item_name LIKE ?", "%"+filter.Keyword+"%")
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
	err := query.Order("item_id ASC").Limit(filter.PageSize).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListModels(ctx context.Context, shopID, itemID int64) ([]model.ProductModel, error) {
	var models []model.ProductModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND item_id = ?", shopID, itemID).
		Order("model_id ASC").
		Find(&models).Error
	return models, err
}

func (r *productRepo) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}
