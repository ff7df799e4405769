package task

import (
	"context"
	"log"
	"time"

	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/internal/service"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一管理定时任务
// 管理范围：资源同步、Token 保活
type TaskManager struct {
	syncTask  *ResourceSyncTask
	tokenTask *TokenTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ShopRepo    repository.ShopRepository
	SyncService *service.SyncService
	Client      *service.PartnerClient
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 资源同步
	SyncEnabled     bool
	SyncConcurrency int

	// Token 保活
	TokenEnabled     bool
	TokenConcurrency int
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SyncEnabled:     true,
		SyncConcurrency: 3,

		TokenEnabled:     true,
		TokenConcurrency: 10,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.SyncEnabled && deps.SyncService != nil {
		tm.syncTask = NewResourceSyncTask(deps.ShopRepo, deps.SyncService)
		tm.syncTask.SetConcurrency(cfg.SyncConcurrency, 300*time.Millisecond)
	}

	if cfg.TokenEnabled && deps.Client != nil {
		tm.tokenTask = NewTokenTask(deps.ShopRepo, deps.Client)
		tm.tokenTask.concurrencyLimit = cfg.TokenConcurrency
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动定时任务...")

	if tm.tokenTask != nil {
		tm.tokenTask.Start()
	}
	if tm.syncTask != nil {
		tm.syncTask.Start()
	}

	log.Println("[TaskManager] 定时任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止定时任务...")

	if tm.syncTask != nil {
		tm.syncTask.Stop()
	}
	if tm.tokenTask != nil {
		tm.tokenTask.Stop()
	}

	log.Println("[TaskManager] 定时任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerResourceSync 触发单店铺单资源同步
func (tm *TaskManager) TriggerResourceSync(ctx context.Context, shopID int64, kind string) error {
	if tm.syncTask == nil {
		return ErrTaskDisabled
	}
	return tm.syncTask.SyncShopNow(ctx, shopID, kind)
}

// TriggerAllShopsSync 触发全店铺同步
func (tm *TaskManager) TriggerAllShopsSync() {
	if tm.syncTask != nil {
		tm.syncTask.SyncAllNow()
	}
}

// TriggerTokenRefresh 触发一轮 Token 检查
func (tm *TaskManager) TriggerTokenRefresh() {
	if tm.tokenTask != nil {
		tm.tokenTask.RefreshNow()
	}
}

// ==================== 状态查询 ====================

// Status 获取任务启用状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"sync":  tm.syncTask != nil,
		"token": tm.tokenTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
