package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/internal/service"
)

// ==================== ResourceSyncTask 资源同步任务 ====================

// ResourceSyncTask 营销资源定时同步任务
// 同步策略：
//   - 常规同步：每 30 分钟，所有激活店铺的全部资源
//   - 全量兜底：每日凌晨 4 点再跑一轮
type ResourceSyncTask struct {
	shopRepo    repository.ShopRepository
	syncService *service.SyncService
	cron        *cron.Cron

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewResourceSyncTask 创建资源同步任务
func NewResourceSyncTask(shopRepo repository.ShopRepository, syncService *service.SyncService) *ResourceSyncTask {
	return &ResourceSyncTask{
		shopRepo:         shopRepo,
		syncService:      syncService,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
		sleepTime:        300 * time.Millisecond,
	}
}

// SetConcurrency 设置并发参数
func (t *ResourceSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *ResourceSyncTask) Start() {
	// 首次执行（延迟 30 秒，等待 Token 保活完成首轮检查）
	go func() {
		time.Sleep(30 * time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()
		t.syncAllShops(ctx)
	}()

	// 常规同步
	_, _ = t.cron.AddFunc("0 */30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()
		t.syncAllShops(ctx)
	})

	// 全量兜底
	_, _ = t.cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllShops(ctx)
	})

	t.cron.Start()
	log.Println("[Task] 资源同步任务已启动 (每30分钟一轮)")
}

// Stop 停止定时任务，等待运行中的 job 结束
func (t *ResourceSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[Task] 资源同步任务已停止")
}

// syncAllShops 对所有激活店铺跑一轮全资源同步
func (t *ResourceSyncTask) syncAllShops(ctx context.Context) {
	shops, err := t.shopRepo.ListActiveShops(ctx)
	if err != nil {
		log.Printf("[Cron] 激活店铺查询失败: %v", err)
		return
	}
	if len(shops) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始同步 %d 个店铺，并发上限: %d", len(shops), t.concurrencyLimit)

	for _, shop := range shops {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 资源同步任务超时停止")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		// 平滑波峰
		time.Sleep(t.sleepTime)

		go func(s model.Shop) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := t.syncService.SyncAll(ctx, s.ShopID); err != nil {
				log.Printf("[Cron] 店铺 [%s] 同步失败: %v", s.ShopName, err)
			}
		}(shop)
	}

	wg.Wait()
	log.Println("[Cron] 本轮资源同步任务完成")
}

// SyncShopNow 手动触发单店铺单资源同步
func (t *ResourceSyncTask) SyncShopNow(ctx context.Context, shopID int64, kind string) error {
	return t.syncService.SyncResource(ctx, shopID, kind)
}

// SyncAllNow 手动触发全店铺同步（异步）
func (t *ResourceSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()
		t.syncAllShops(ctx)
	}()
}
