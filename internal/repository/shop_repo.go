package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// ShopRepository 店铺凭证仓储
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByShopID(ctx context.Context, shopID int64) (*model.Shop, error)
	Delete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error)
	ListActiveShops(ctx context.Context) ([]model.Shop, error)
	FindExpiringShops(ctx context.Context, within time.Duration) ([]model.Shop, error)

	// 凭证相关
	// ReplaceCredential 重新授权：按 shop_id 整行覆盖，绝不只改 partner 对
	ReplaceCredential(ctx context.Context, shop *model.Shop) error
	// UpdateToken 刷新成功后成对写入新 Token（一条 Updates，保证原子性）
	UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error
}

// ==================== 过滤条件 ====================

// ShopFilter 店铺过滤条件
type ShopFilter struct {
	Region      string
	ShopName    string
	Status      int // -1 表示不筛选
	TokenStatus string
	Page        int
	PageSize    int
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByShopID(ctx context.Context, shopID int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

func (r *shopRepo) List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error) {
	var shops []model.Shop
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Shop{})

	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.ShopName != "" {
		query = query.Where("shop_name LIKE ?", "%"+filter.ShopName+"%")
	}
	if filter.Status >= 0 {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TokenStatus != "" {
		query = query.Where("token_status = ?", filter.TokenStatus)
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
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&shops).Error; err != nil {
		return nil, 0, err
	}

	return shops, total, nil
}

// ListActiveShops 获取所有可同步的店铺
func (r *shopRepo) ListActiveShops(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ? AND token_status = ?", model.ShopStatusActive, model.TokenStatusValid).
		Find(&shops).Error
	return shops, err
}

// FindExpiringShops 查找 Token 即将过期的店铺（within 窗口内）
func (r *shopRepo) FindExpiringShops(ctx context.Context, within time.Duration) ([]model.Shop, error) {
	var shops []model.Shop
	deadline := time.Now().Add(within)
	err := r.db.WithContext(ctx).
		Where("token_status = ? AND token_expires_at < ?", model.TokenStatusValid, deadline).
		Find(&shops).Error
	return shops, err
}

// ReplaceCredential 按平台 shop_id 整行覆盖（重新授权场景）
func (r *shopRepo) ReplaceCredential(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_name", "region",
			"partner_id", "partner_key",
			"access_token", "refresh_token", "token_expires_at", "token_status",
			"status", "updated_at",
		}),
	}).Create(shop).Error
}

// UpdateToken 成对更新 Token
// access_token / refresh_token / token_expires_at 必须同一条语句落库
func (r *shopRepo) UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
			"token_status":     model.TokenStatusValid,
		}).Error
}

func (r *shopRepo) UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Update("token_status", tokenStatus).Error
}
