package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopee_ops_v1/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	shopCtl *controller.ShopController,
	syncCtl *controller.SyncController,
	dashboardCtl *controller.DashboardController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api/v1")
	{
		// shop 店铺与授权
		shops := api.Group("/shops")
		{
			shops.GET("", shopCtl.GetShops)
			shops.GET("/:shop_id", shopCtl.GetShop)
			shops.POST("/authorize", shopCtl.Authorize)
			shops.POST("/:shop_id/disable", shopCtl.DisableShop)
		}

		// sync 同步触发与状态
		sync := api.Group("/sync")
		{
			// POST /api/v1/sync 全店铺
			sync.POST("", syncCtl.TriggerSyncAll)
			// GET /api/v1/sync/status 必须排在 /:kind 前注册
			sync.GET("/status", syncCtl.GetAllSyncStatus)
			sync.POST("/:kind", syncCtl.TriggerSync)
			sync.GET("/:kind/status", syncCtl.GetSyncStatus)
		}

		// dashboard 看板读接口
		flashSales := api.Group("/flash-sales")
		{
			flashSales.GET("", dashboardCtl.GetFlashSales)
			flashSales.GET("/:id/items", dashboardCtl.GetFlashSaleItems)
			flashSales.POST("/:id/items", dashboardCtl.EnrollItems)
		}
		api.GET("/products", dashboardCtl.GetProducts)
		api.GET("/campaigns", dashboardCtl.GetCampaigns)
		api.GET("/performance/summary", dashboardCtl.GetPerformanceSummary)
	}
}
