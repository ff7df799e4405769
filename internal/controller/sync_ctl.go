package controller

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/service"
	"shopee_ops_v1/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	taskManager *task.TaskManager
	syncService *service.SyncService
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager, syncService *service.SyncService) *SyncController {
	return &SyncController{taskManager: taskManager, syncService: syncService}
}

// validKinds 允许通过 API 触发的资源类型
var validKinds = map[string]bool{
	model.ResourceFlashSale:   true,
	model.ResourceProduct:     true,
	model.ResourceCampaign:    true,
	model.ResourcePerformance: true,
}

// ==================== Handler 实现 ====================

// TriggerSync 触发单资源同步
// @Summary 手动触发指定店铺单个资源的同步
// @Tags Sync
// @Param kind path string true "资源类型 flash_sale/product/campaign/performance"
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "已在同步中"
// @Router /api/v1/sync/{kind} [post]
func (c *SyncController) TriggerSync(ctx *gin.Context) {
	kind := ctx.Param("kind")
	if !validKinds[kind] {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的资源类型: " + kind})
		return
	}

	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	// 同步是耗时操作，异步跑，前端轮询状态接口
	// 不能挂在请求 ctx 上，响应返回后会被取消
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		_ = c.taskManager.TriggerResourceSync(bg, shopID, kind)
	}()

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "同步已触发",
		"data":    gin.H{"shop_id": shopID, "kind": kind},
	})
}

// TriggerSyncAll 触发全店铺同步
// @Summary 手动触发所有激活店铺的全量同步
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/sync [post]
func (c *SyncController) TriggerSyncAll(ctx *gin.Context) {
	c.taskManager.TriggerAllShopsSync()

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "全店铺同步任务已启动",
	})
}

// GetSyncStatus 查询单资源同步状态
// @Summary 查询指定店铺单个资源的同步状态
// @Tags Sync
// @Param kind path string true "资源类型"
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/sync/{kind}/status [get]
func (c *SyncController) GetSyncStatus(ctx *gin.Context) {
	kind := ctx.Param("kind")
	if !validKinds[kind] {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的资源类型: " + kind})
		return
	}

	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	status, err := c.syncService.GetStatus(ctx.Request.Context(), shopID, kind)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": status})
}

// GetAllSyncStatus 查询店铺全部资源的同步状态
// @Summary 查询指定店铺全部资源的同步状态
// @Tags Sync
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/sync/status [get]
func (c *SyncController) GetAllSyncStatus(ctx *gin.Context) {
	shopID := parseShopID(ctx)
	if shopID == 0 {
		return
	}

	statuses, err := c.syncService.GetAllStatus(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "message": "success", "data": statuses})
}

// ==================== 公共辅助 ====================

// parseShopID 解析 query 中的 shop_id，非法时直接写 400 响应并返回 0
func parseShopID(ctx *gin.Context) int64 {
	shopID, err := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return 0
	}
	return shopID
}
