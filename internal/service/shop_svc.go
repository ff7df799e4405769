package service

import (
	"context"
	"fmt"
	"time"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/utils"
)

// ShopService 店铺与授权管理
type ShopService struct {
	shopRepo  repository.ShopRepository
	credCache *utils.TTLCache
}

// NewShopService 创建店铺服务
func NewShopService(shopRepo repository.ShopRepository, credCache *utils.TTLCache) *ShopService {
	return &ShopService{shopRepo: shopRepo, credCache: credCache}
}

// AuthorizeShop 录入或重新授权店铺
// 凭证整行覆盖写入，旧缓存立即失效
func (s *ShopService) AuthorizeShop(ctx context.Context, shop *model.Shop) error {
	if shop.ShopID <= 0 {
		return fmt.Errorf("shop_id 不能为空")
	}
	if shop.PartnerID <= 0 || shop.PartnerKey == "" {
		return fmt.Errorf("partner 凭证不完整")
	}

	if shop.TokenStatus == "" {
		shop.TokenStatus = model.TokenStatusValid
	}
	if shop.Status == model.ShopStatusPending {
		shop.Status = model.ShopStatusActive
	}
	if shop.TokenExpiresAt.IsZero() {
		// Shopee access_token 有效期 4 小时
		shop.TokenExpiresAt = time.Now().Add(4 * time.Hour)
	}

	if err := s.shopRepo.ReplaceCredential(ctx, shop); err != nil {
		return fmt.Errorf("店铺授权写入失败: %w", err)
	}
	s.credCache.Invalidate(credCacheKey(shop.ShopID))
	return nil
}

// GetShop 按平台 shop_id 查询店铺
func (s *ShopService) GetShop(ctx context.Context, shopID int64) (*model.Shop, error) {
	return s.shopRepo.GetByShopID(ctx, shopID)
}

// ListShops 店铺列表
func (s *ShopService) ListShops(ctx context.Context, filter repository.ShopFilter) ([]model.Shop, int64, error) {
	return s.shopRepo.List(ctx, filter)
}

// DisableShop 停用店铺（停止参与定时同步）
func (s *ShopService) DisableShop(ctx context.Context, shopID int64) error {
	shop, err := s.shopRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return err
	}
	shop.Status = model.ShopStatusInactive
	if err := s.shopRepo.ReplaceCredential(ctx, shop); err != nil {
		return err
	}
	s.credCache.Invalidate(credCacheKey(shopID))
	return nil
}
