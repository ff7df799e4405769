package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/internal/service"
)

// ShopController 店铺管理控制器
type ShopController struct {
	shopService *service.ShopService
}

// NewShopController 创建店铺控制器
func NewShopController(shopService *service.ShopService) *ShopController {
	return &ShopController{shopService: shopService}
}

// authorizeReq 店铺授权请求体
type authorizeReq struct {
	ShopID       int64  `json:"shop_id" binding:"required"`
	ShopName     string `json:"shop_name"`
	Region       string `json:"region"`
	PartnerID    int64  `json:"partner_id" binding:"required"`
	PartnerKey   string `json:"partner_key" binding:"required"`
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	ExpireIn     int64  `json:"expire_in"`
}

// ==================== Handler 实现 ====================

// Authorize 录入或重新授权店铺
// @Summary 录入店铺凭证（重复提交视为重新授权，整行覆盖）
// @Tags Shop
// @Param body body authorizeReq true "店铺凭证"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/shops/authorize [post]
func (c *ShopController) Authorize(ctx *gin.Context) {
	var req authorizeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	shop := &model.Shop{
		ShopID:       req.ShopID,
		ShopName:     req.ShopName,
		Region:       req.Region,
		PartnerID:    req.PartnerID,
		PartnerKey:   req.PartnerKey,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}
	if req.ExpireIn > 0 {
		shop.TokenExpiresAt = time.Now().Add(time.Duration(req.ExpireIn) * time.Second)
	}

	if err := c.shopService.AuthorizeShop(ctx.Request.Context(), shop); err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "店铺授权成功",
		"data":    gin.H{"shop_id": req.ShopID},
	})
}

// GetShops 店铺列表
// @Summary 获取店铺列表
// @Tags Shop
// @Param region query string false "地区筛选"
// @Param token_status query string false "Token 状态筛选"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/shops [get]
func (c *ShopController) GetShops(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	filter := repository.ShopFilter{
		Region:      ctx.Query("region"),
		ShopName:    ctx.Query("shop_name"),
		TokenStatus: ctx.Query("token_status"),
		Status:      -1,
		Page:        page,
		PageSize:    pageSize,
	}
	if s := ctx.Query("status"); s != "" {
		if status, err := strconv.Atoi(s); err == nil {
			filter.Status = status
		}
	}

	shops, total, err := c.shopService.ListShops(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "success",
		"data":    shops,
		"total":   total,
	})
}

// GetShop 店铺详情
// @Summary 获取单个店铺详情
// @Tags Shop
// @Param shop_id path int true "平台店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/shops/{shop_id} [get]
func (c *ShopController) GetShop(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return
	}

	shop, err := c.shopService.GetShop(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": shop})
}

// DisableShop 停用店铺
// @Summary 停用店铺（停止参与定时同步）
// @Tags Shop
// @Param shop_id path int true "平台店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/shops/{shop_id}/disable [post]
func (c *ShopController) DisableShop(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return
	}

	if err := c.shopService.DisableShop(ctx.Request.Context(), shopID); err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "店铺已停用"})
}
