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

// ==================== TokenTask Token 保活任务 ====================

// Token 到期前多久开始续期
// Shopee access_token 有效期 4 小时，提前 1 小时续
const tokenRenewWindow = 1 * time.Hour

// TokenTask Token 保活定时任务
// 对即将过期的店铺主动刷新 Token，避免同步时才撞上鉴权失败
type TokenTask struct {
	shopRepo repository.ShopRepository
	client   *service.PartnerClient
	cron     *cron.Cron

	// 控制并发刷新的数量
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewTokenTask 创建 Token 保活任务
func NewTokenTask(shopRepo repository.ShopRepository, client *service.PartnerClient) *TokenTask {
	return &TokenTask{
		shopRepo:         shopRepo,
		client:           client,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 10,
		sleepTime:        50 * time.Millisecond, // 每个协程启动间隔，平滑波峰
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 定时策略
	_, err := t.cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("[Task] Token 保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[Task] Token 保活任务已停止")
}

// refreshJob 刷新即将过期店铺的 Token
func (t *TokenTask) refreshJob(ctx context.Context) {
	shops, err := t.shopRepo.FindExpiringShops(ctx, tokenRenewWindow)
	if err != nil {
		log.Printf("[Cron] 店铺过期状态查询失败: %v", err)
		return
	}
	if len(shops) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始处理 %d 个店铺的 Token 刷新，并发上限: %d", len(shops), t.concurrencyLimit)

	for _, shop := range shops {
		select {
		case <-ctx.Done():
			log.Println("[Cron] Token 任务超时停止")
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

			if err := t.client.RefreshToken(ctx, &s); err != nil {
				// 日志仅记录，不中断其他协程
				log.Printf("[Cron] 店铺 [%s] Token 刷新失败: %v", s.ShopName, err)
			}
		}(shop)
	}

	wg.Wait()
	log.Println("[Cron] 本轮 Token 刷新任务完成")
}

// RefreshNow 手动触发一轮 Token 检查（异步）
func (t *TokenTask) RefreshNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	}()
}
