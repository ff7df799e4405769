package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopee_ops_v1/internal/controller"
	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/internal/router"
	"shopee_ops_v1/internal/service"
	"shopee_ops_v1/internal/task"
	"shopee_ops_v1/pkg/database"
	"shopee_ops_v1/pkg/utils"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	taskManager := initTasks(deps)
	deps.TaskManager = taskManager

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		controller.NewShopController(deps.Services.Shop),
		controller.NewSyncController(taskManager, deps.Services.Sync),
		controller.NewDashboardController(
			deps.Services.FlashSale,
			deps.Services.Product,
			deps.Services.Campaign,
			deps.Services.Performance,
		),
	)

	// 5. 启动服务
	startServer(r, taskManager)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	TaskManager *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Shop        repository.ShopRepository
	SyncStatus  repository.SyncStatusRepository
	FlashSale   repository.FlashSaleRepository
	Product     repository.ProductRepository
	Campaign    repository.CampaignRepository
	Performance repository.ShopPerformanceRepository
}

// Services 服务集合
type Services struct {
	Client      *service.PartnerClient
	Shop        *service.ShopService
	FlashSale   *service.FlashSaleService
	Product     *service.ProductService
	Campaign    *service.CampaignService
	Performance *service.PerformanceService
	Sync        *service.SyncService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	cfg := database.Config{
		DSN: getEnv("DATABASE_DSN",
			"host=localhost user=postgres password=postgres dbname=shopee_ops port=5432 sslmode=disable TimeZone=Asia/Jakarta"),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 50),
		LogSQL:       getEnv("DB_LOG_SQL", "") == "1",
	}

	return database.InitDB(cfg,
		// Shop
		&model.Shop{}, &model.SyncStatus{},
		// Flash Sale
		&model.FlashSale{}, &model.FlashSaleItem{},
		// Product
		&model.Product{}, &model.ProductModel{},
		// Ads
		&model.Campaign{}, &model.CampaignPerformance{}, &model.ShopPerformance{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Shop:        repository.NewShopRepository(db),
		SyncStatus:  repository.NewSyncStatusRepository(db),
		FlashSale:   repository.NewFlashSaleRepository(db),
		Product:     repository.NewProductRepository(db),
		Campaign:    repository.NewCampaignRepository(db),
		Performance: repository.NewShopPerformanceRepository(db),
	}

	// -------- 基础设施 --------
	credCache := utils.NewTTLCache(5 * time.Minute)
	client := service.NewPartnerClient(repos.Shop, credCache, getEnv("SHOPEE_BASE_URL", ""))
	fetcher := service.NewPageFetcher(client)

	// -------- 业务服务 --------
	services := &Services{Client: client}
	services.Shop = service.NewShopService(repos.Shop, credCache)
	services.FlashSale = service.NewFlashSaleService(repos.FlashSale, client, fetcher)
	services.Product = service.NewProductService(repos.Product, client, fetcher)
	services.Campaign = service.NewCampaignService(repos.Campaign, client, fetcher)
	services.Performance = service.NewPerformanceService(repos.Performance, repos.Campaign, client)
	services.Sync = service.NewSyncService(
		repos.SyncStatus,
		services.FlashSale,
		services.Product,
		services.Campaign,
		services.Performance,
	)

	return &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *task.TaskManager {
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		ShopRepo:    deps.Repos.Shop,
		SyncService: deps.Services.Sync,
		Client:      deps.Services.Client,
	}, nil)
	tm.Start()
	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, tm *task.TaskManager) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")
	tm.Stop()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
