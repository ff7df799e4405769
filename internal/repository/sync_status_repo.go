package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1/internal/model"
)

// ==================== 接口定义 ====================

// SyncStatusRepository 同步状态仓储
// 状态机：idle → syncing → completed | failed
// is_syncing 仅为提示性标记，不做互斥锁
type SyncStatusRepository interface {
	Get(ctx context.Context, shopID int64, kind string) (*model.SyncStatus, error)
	// GetOrDefault 行不存在时返回“从未同步”的默认形态，不报错
	GetOrDefault(ctx context.Context, shopID int64, kind string) (*model.SyncStatus, error)

	// BeginSync 进入 syncing：置位 is_syncing，重置进度
	BeginSync(ctx context.Context, shopID int64, kind string, runID string) error
	// UpdateProgress 刷新当前阶段与百分比
	UpdateProgress(ctx context.Context, shopID int64, kind string, step string, percent int) error
	// Complete 成功收尾：记录 last_sync_at，清空错误
	Complete(ctx context.Context, shopID int64, kind string) error
	// Fail 失败收尾：记录出错阶段与错误文本
	Fail(ctx context.Context, shopID int64, kind string, step string, syncErr error) error
}

// ==================== 仓储实现 ====================

type syncStatusRepo struct {
	db *gorm.DB
}

// NewSyncStatusRepository 创建同步状态仓储
func NewSyncStatusRepository(db *gorm.DB) SyncStatusRepository {
	return &syncStatusRepo{db: db}
}

func (r *syncStatusRepo) Get(ctx context.Context, shopID int64, kind string) (*model.SyncStatus, error) {
	var status model.SyncStatus
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND resource_kind = ?", shopID, kind).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *syncStatusRepo) GetOrDefault(ctx context.Context, shopID int64, kind string) (*model.SyncStatus, error) {
	status, err := r.Get(ctx, shopID, kind)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 从未同步过的默认形态
		return &model.SyncStatus{
			ShopID:       shopID,
			ResourceKind: kind,
			IsSyncing:    false,
			Progress:     datatypes.JSONMap{},
		}, nil
	}
	return status, err
}

func (r *syncStatusRepo) BeginSync(ctx context.Context, shopID int64, kind string, runID string) error {
	status := model.SyncStatus{
		ShopID:       shopID,
		ResourceKind: kind,
		IsSyncing:    true,
		Progress: datatypes.JSONMap{
			"run_id":  runID,
			"step":    "start",
			"percent": 0,
		},
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "resource_kind"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_syncing", "progress", "updated_at",
		}),
	}).Create(&status).Error
}

func (r *syncStatusRepo) UpdateProgress(ctx context.Context, shopID int64, kind string, step string, percent int) error {
	status, err := r.Get(ctx, shopID, kind)
	if err != nil {
		return err
	}
	progress := status.Progress
	if progress == nil {
		progress = datatypes.JSONMap{}
	}
	progress["step"] = step
	progress["percent"] = percent
	return r.db.WithContext(ctx).
		Model(&model.SyncStatus{}).
		Where("shop_id = ? AND resource_kind = ?", shopID, kind).
		Update("progress", progress).Error
}

func (r *syncStatusRepo) Complete(ctx context.Context, shopID int64, kind string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.SyncStatus{}).
		Where("shop_id = ? AND resource_kind = ?", shopID, kind).
		Updates(map[string]interface{}{
			"is_syncing":      false,
			"last_sync_at":    &now,
			"last_sync_error": "",
		}).Error
}

func (r *syncStatusRepo) Fail(ctx context.Context, shopID int64, kind string, step string, syncErr error) error {
	status, _ := r.Get(ctx, shopID, kind)
	progress := datatypes.JSONMap{}
	if status != nil && status.Progress != nil {
		progress = status.Progress
	}
	progress["step"] = step

	return r.db.WithContext(ctx).
		Model(&model.SyncStatus{}).
		Where("shop_id = ? AND resource_kind = ?", shopID, kind).
		Updates(map[string]interface{}{
			"is_syncing":      false,
			"last_sync_error": syncErr.Error(),
			"progress":        progress,
		}).Error
}
