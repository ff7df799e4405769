package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/shopee"
	"shopee_ops_v1/pkg/utils"
)

// 业务常量
const (
	// DefaultBaseURL Shopee 开放平台生产环境
	DefaultBaseURL = "https://partner.shopeemobile.com"
	// PathRefreshToken 刷新 Token 接口（公共接口，签名不带 access_token/shop_id）
	PathRefreshToken = "/api/v2/auth/access_token/get"
)

// ErrIncompleteCredential 店铺凭证缺失或不完整（致命，直接中止本次同步）
type credentialError string

func (e credentialError) Error() string { return string(e) }

const ErrIncompleteCredential credentialError = "店铺凭证缺失或不完整，请重新授权"

// PartnerClient 带签名与透明刷新的开放平台客户端
// 每次调用：读凭证 → 签名 → 请求；命中鉴权失败时按 RetryPolicy 刷新一次并重试一次，
// 重试仍失败则原样返回错误，调用方视为本轮同步的终态错误
type PartnerClient struct {
	shopRepo  repository.ShopRepository
	http      *resty.Client
	baseURL   string
	credCache *utils.TTLCache
	retry     shopee.RetryPolicy

	// 便于测试固定时间戳
	now func() time.Time
}

// NewPartnerClient 创建客户端
// credCache 显式注入；刷新 Token 后写方负责失效对应条目
func NewPartnerClient(shopRepo repository.ShopRepository, credCache *utils.TTLCache, baseURL string) *PartnerClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")

	return &PartnerClient{
		shopRepo:  shopRepo,
		http:      client,
		baseURL:   baseURL,
		credCache: credCache,
		retry:     shopee.AuthRetryPolicy(),
		now:       time.Now,
	}
}

// Call 发起一次签名调用
// params 为业务查询参数，body 非 nil 时作为 JSON 请求体
func (c *PartnerClient) Call(ctx context.Context, shopID int64, path, method string, params url.Values, body interface{}) (*shopee.CommonResp, error) {
	shop, err := c.loadShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, shop, path, method, params, body)
		if err != nil {
			// 网络层错误不触发刷新
			return nil, err
		}
		if resp.IsOK() {
			return resp, nil
		}
		if !c.retry.ShouldRetry(attempt, resp) {
			return resp, resp.Err()
		}

		// 鉴权失败：刷新一次后用新 Token 重试
		log.Printf("[PartnerClient] 店铺 %d 鉴权失败 (%s)，尝试刷新 Token", shopID, resp.Error)
		if err := c.RefreshToken(ctx, shop); err != nil {
			return resp, fmt.Errorf("刷新 Token 失败: %w", err)
		}
	}
}

// Get 便捷方法
func (c *PartnerClient) Get(ctx context.Context, shopID int64, path string, params url.Values) (*shopee.CommonResp, error) {
	return c.Call(ctx, shopID, path, http.MethodGet, params, nil)
}

// Post 便捷方法
func (c *PartnerClient) Post(ctx context.Context, shopID int64, path string, body interface{}) (*shopee.CommonResp, error) {
	return c.Call(ctx, shopID, path, http.MethodPost, nil, body)
}

// RefreshToken 用 refresh_token 换新 Token 对并落库
// 成功后 access_token / refresh_token 成对更新，并失效凭证缓存
func (c *PartnerClient) RefreshToken(ctx context.Context, shop *model.Shop) error {
	ts := c.now().Unix()
	// 公共接口：签名不带 access_token / shop_id
	q, err := shopee.SignedQuery(shop.PartnerKey, shop.PartnerID, PathRefreshToken, ts, "", 0, nil)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"refresh_token": shop.RefreshToken,
		"partner_id":    shop.PartnerID,
		"shop_id":       shop.ShopID,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q).
		SetBody(body).
		Post(c.baseURL + PathRefreshToken)
	if err != nil {
		return fmt.Errorf("refresh network error: %w", err)
	}

	var tokenResp shopee.TokenResp
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return fmt.Errorf("refresh 响应解析失败: %w", err)
	}
	if tokenResp.Error != "" || tokenResp.AccessToken == "" {
		// 平台明确拒绝，标记凭证失效等待重新授权
		if err := c.shopRepo.UpdateTokenStatus(ctx, shop.ID, model.TokenStatusInvalid); err != nil {
			log.Printf("[PartnerClient] 标记店铺 %d Token 失效出错: %v", shop.ShopID, err)
		}
		c.credCache.Invalidate(credCacheKey(shop.ShopID))
		return fmt.Errorf("refresh denied [%s]: %s", tokenResp.Error, tokenResp.Message)
	}

	expiresAt := c.now().Add(time.Duration(tokenResp.ExpireIn) * time.Second)
	if err := c.shopRepo.UpdateToken(ctx, shop.ID, tokenResp.AccessToken, tokenResp.RefreshToken, expiresAt); err != nil {
		return fmt.Errorf("新 Token 入库失败: %w", err)
	}

	// 更新内存对象供本次重试使用，并写后失效缓存
	shop.AccessToken = tokenResp.AccessToken
	shop.RefreshToken = tokenResp.RefreshToken
	shop.TokenExpiresAt = expiresAt
	shop.TokenStatus = model.TokenStatusValid
	c.credCache.Invalidate(credCacheKey(shop.ShopID))

	return nil
}

// ==================== 内部方法 ====================

// loadShop 读取店铺凭证
// 缓存里存值不存指针：并发同步（is_syncing 不做互斥）下各调用方
// 拿到的是独立副本，RefreshToken 改写自己的副本不会影响他人
func (c *PartnerClient) loadShop(ctx context.Context, shopID int64) (*model.Shop, error) {
	if cached, ok := c.credCache.Get(credCacheKey(shopID)); ok {
		if shop, ok := cached.(model.Shop); ok {
			return &shop, nil
		}
	}

	shop, err := c.shopRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺 %d 不存在: %w", shopID, err)
	}
	if !shop.HasCredential() {
		return nil, ErrIncompleteCredential
	}

	c.credCache.Set(credCacheKey(shopID), *shop)
	return shop, nil
}

func (c *PartnerClient) send(ctx context.Context, shop *model.Shop, path, method string, params url.Values, body interface{}) (*shopee.CommonResp, error) {
	ts := c.now().Unix()
	q, err := shopee.SignedQuery(shop.PartnerKey, shop.PartnerID, path, ts, shop.AccessToken, shop.ShopID, params)
	if err != nil {
		return nil, err
	}

	req := c.http.R().SetContext(ctx).SetQueryParamsFromValues(q)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return nil, fmt.Errorf("请求开放平台失败: %w", err)
	}

	var common shopee.CommonResp
	if err := json.Unmarshal(resp.Body(), &common); err != nil {
		return nil, fmt.Errorf("响应解析失败 [HTTP %d]: %w", resp.StatusCode(), err)
	}
	return &common, nil
}

func credCacheKey(shopID int64) string {
	return fmt.Sprintf("shop_cred:%d", shopID)
}
