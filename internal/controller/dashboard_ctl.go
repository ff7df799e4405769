package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/internal/service"
)

// DashboardController 看板数据控制器
// 全部读本地库，不直接触达平台接口
type DashboardController struct {
	flashSaleService   *service.FlashSaleService
	productService     *service.ProductService
	campaignService    *service.CampaignService
	performanceService *service.PerformanceService
}

// NewDashboardController 创建看板控制器
func NewDashboardController(
	flashSaleService *service.FlashSaleService,
	productService *service.ProductService,
	campaignService *service.CampaignService,
	performanceService *service.PerformanceService,
) *DashboardController {
	return &DashboardController{
		flashSaleService:   flashSaleService,
		productService:     productService,
		campaignService:    campaignService,
		performanceService: performanceService,
	}
}

// ==================== 限时特卖 ====================

// GetFlashSales 场次列表
// @Summary 获取店铺限时特卖场次
// @Tags Dashboard
// @Param shop_id query int true "店铺ID"
// @Param status query int false "状态 1-未开始 2-进行中 3-已结束"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/flash-sales [get]
func (c *DashboardController) GetFlashSales(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	status, _ := strconv.Atoi(ctx.DefaultQuery("status", "0"))

	sales, total, err := c.flashSaleService.ListFlashSales(ctx.Request.Context(), repository.FlashSaleFilter{
		ShopID:   shopID,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": sales, "total": total})
}

// GetFlashSaleItems 场次商品
// @Summary 获取场次内商品
// @Tags Dashboard
// @Param id path int true "场次ID"
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/flash-sales/{id}/items [get]
func (c *DashboardController) GetFlashSaleItems(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}
	flashSaleID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || flashSaleID <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的场次 ID"})
		return
	}

	items, err := c.flashSaleService.ListItems(ctx.Request.Context(), shopID, flashSaleID)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": items})
}

// enrollReq 报名请求体
type enrollReq struct {
	Items []service.TemplateItem `json:"items" binding:"required"`
}

// EnrollItems 报名商品到场次
// @Summary 把模板商品报名到指定场次
// @Tags Dashboard
// @Param id path int true "场次ID"
// @Param shop_id query int true "店铺ID"
// @Param body body enrollReq true "模板商品列表"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/flash-sales/{id}/items [post]
func (c *DashboardController) EnrollItems(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}
	flashSaleID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || flashSaleID <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的场次 ID"})
		return
	}

	var req enrollReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	submitted, err := c.flashSaleService.AddItems(ctx.Request.Context(), shopID, flashSaleID, req.Items)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "报名成功",
		"data":    gin.H{"submitted": submitted},
	})
}

// ==================== 商品 ====================

// GetProducts 商品列表
// @Summary 获取店铺商品列表
// @Tags Dashboard
// @Param shop_id query int true "店铺ID"
// @Param item_status query string false "状态筛选 NORMAL/BANNED/UNLIST"
// @Param keyword query string false "标题搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (c *DashboardController) GetProducts(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	products, total, err := c.productService.ListProducts(ctx.Request.Context(), repository.ProductFilter{
		ShopID:     shopID,
		ItemStatus: ctx.Query("item_status"),
		Keyword:    ctx.Query("keyword"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": products, "total": total})
}

// ==================== 广告 ====================

// GetCampaigns 广告活动列表
// @Summary 获取店铺广告活动
// @Tags Dashboard
// @Param shop_id query int true "店铺ID"
// @Param status query string false "状态筛选"
// @Param ad_type query string false "广告类型筛选"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/campaigns [get]
func (c *DashboardController) GetCampaigns(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	campaigns, total, err := c.campaignService.ListCampaigns(ctx.Request.Context(), repository.CampaignFilter{
		ShopID:   shopID,
		Status:   ctx.Query("status"),
		AdType:   ctx.Query("ad_type"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": campaigns, "total": total})
}

// GetPerformanceSummary 店铺表现汇总
// @Summary 聚合指定日期区间的店铺广告表现
// @Tags Dashboard
// @Param shop_id query int true "店铺ID"
// @Param start_date query string true "开始日期 YYYY-MM-DD"
// @Param end_date query string true "结束日期 YYYY-MM-DD"
// @Param hourly query bool false "是否按小时粒度" default(false)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/performance/summary [get]
func (c *DashboardController) GetPerformanceSummary(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	start, err := time.Parse("2006-01-02", ctx.Query("start_date"))
	if err != nil {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 start_date"})
		return
	}
	end, err := time.Parse("2006-01-02", ctx.Query("end_date"))
	if err != nil {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 end_date"})
		return
	}
	hourly := ctx.DefaultQuery("hourly", "false") == "true"

	summary, err := c.performanceService.Aggregate(ctx.Request.Context(), shopID, start, end, hourly)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "聚合失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": summary})
}
