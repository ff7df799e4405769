package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
)

// ProgressFunc 同步过程中的进度回调
// step 为当前阶段名，percent 取 0~100
type ProgressFunc func(step string, percent int)

// ErrUnknownResource 未注册的资源类型
type ErrUnknownResource struct {
	Kind string
}

func (e *ErrUnknownResource) Error() string {
	return fmt.Sprintf("未知的同步资源类型: %s", e.Kind)
}

// 表现同步默认回看天数
const defaultPerfLookbackDays = 7

// ==================== SyncService ====================

// SyncService 同步编排器
// 每次同步走 idle → syncing → completed | failed 状态机，
// 状态与进度写进 sync_statuses，供前端轮询展示
type SyncService struct {
	statusRepo  repository.SyncStatusRepository
	flashSale   *FlashSaleService
	product     *ProductService
	campaign    *CampaignService
	performance *PerformanceService

	now func() time.Time
}

// NewSyncService 创建同步编排器
func NewSyncService(
	statusRepo repository.SyncStatusRepository,
	flashSale *FlashSaleService,
	product *ProductService,
	campaign *CampaignService,
	performance *PerformanceService,
) *SyncService {
	return &SyncService{
		statusRepo:  statusRepo,
		flashSale:   flashSale,
		product:     product,
		campaign:    campaign,
		performance: performance,
		now:         time.Now,
	}
}

// SyncResource 同步单个资源
// is_syncing 只是提示性标记：已在同步中时直接拒绝本次触发，
// 但不依赖它做互斥，真正的幂等由各资源的写入方式保证
func (s *SyncService) SyncResource(ctx context.Context, shopID int64, kind string) error {
	status, err := s.statusRepo.GetOrDefault(ctx, shopID, kind)
	if err != nil {
		return fmt.Errorf("读取同步状态失败: %w", err)
	}
	if status.IsSyncing {
		return fmt.Errorf("店铺 %d 的 %s 正在同步中", shopID, kind)
	}

	runID := uuid.New().String()
	if err := s.statusRepo.BeginSync(ctx, shopID, kind, runID); err != nil {
		return fmt.Errorf("写入同步状态失败: %w", err)
	}
	log.Printf("[SyncService] 店铺 %d 开始同步 %s (run=%s)", shopID, kind, runID)

	// 记录最后上报的阶段，失败时写进状态行
	lastStep := "start"
	report := func(step string, percent int) {
		lastStep = step
		if err := s.statusRepo.UpdateProgress(ctx, shopID, kind, step, percent); err != nil {
			log.Printf("[SyncService] 店铺 %d 进度写入失败 (%s/%s): %v", shopID, kind, step, err)
		}
	}

	written, err := s.runSync(ctx, shopID, kind, report)
	if err != nil {
		if failErr := s.statusRepo.Fail(ctx, shopID, kind, lastStep, err); failErr != nil {
			log.Printf("[SyncService] 店铺 %d 失败状态写入失败: %v", shopID, failErr)
		}
		log.Printf("[SyncService] 店铺 %d 同步 %s 失败: %v", shopID, kind, err)
		return err
	}

	report("finish", 100)
	if err := s.statusRepo.Complete(ctx, shopID, kind); err != nil {
		return fmt.Errorf("收尾状态写入失败: %w", err)
	}
	log.Printf("[SyncService] 店铺 %d 同步 %s 完成，写入 %d 行", shopID, kind, written)
	return nil
}

// SyncAll 按固定顺序同步店铺的全部资源
// 单个资源失败不阻断后续资源，最后汇总返回首个错误
func (s *SyncService) SyncAll(ctx context.Context, shopID int64) error {
	kinds := []string{
		model.ResourceProduct,
		model.ResourceFlashSale,
		model.ResourceCampaign,
		model.ResourcePerformance,
	}

	var firstErr error
	for _, kind := range kinds {
		if err := s.SyncResource(ctx, shopID, kind); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// runSync 分发到具体资源的同步实现
func (s *SyncService) runSync(ctx context.Context, shopID int64, kind string, report ProgressFunc) (int, error) {
	switch kind {
	case model.ResourceFlashSale:
		return s.flashSale.SyncFlashSales(ctx, shopID, report)
	case model.ResourceProduct:
		return s.product.SyncProducts(ctx, shopID, report)
	case model.ResourceCampaign:
		return s.campaign.SyncCampaigns(ctx, shopID, report)
	case model.ResourcePerformance:
		// 先同步活动级表现，再做店铺级聚合落库
		end := s.now()
		start := end.AddDate(0, 0, -defaultPerfLookbackDays)
		written, err := s.campaign.SyncPerformance(ctx, shopID, start, end, report)
		if err != nil {
			return written, err
		}
		n, err := s.performance.SyncShopPerformance(ctx, shopID, start, end, report)
		return written + n, err
	default:
		return 0, &ErrUnknownResource{Kind: kind}
	}
}

// GetStatus 查询单资源同步状态（从未同步返回默认形态）
func (s *SyncService) GetStatus(ctx context.Context, shopID int64, kind string) (*model.SyncStatus, error) {
	return s.statusRepo.GetOrDefault(ctx, shopID, kind)
}

// GetAllStatus 查询店铺全部资源的同步状态
func (s *SyncService) GetAllStatus(ctx context.Context, shopID int64) (map[string]*model.SyncStatus, error) {
	kinds := []string{
		model.ResourceProduct,
		model.ResourceFlashSale,
		model.ResourceCampaign,
		model.ResourcePerformance,
	}

	result := make(map[string]*model.SyncStatus, len(kinds))
	for _, kind := range kinds {
		status, err := s.statusRepo.GetOrDefault(ctx, shopID, kind)
		if err != nil {
			return nil, err
		}
		result[kind] = status
	}
	return result, nil
}
