package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1/internal/model"
)

func setupSyncStatusTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.SyncStatus{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestSyncStatusRepo_GetOrDefault(t *testing.T) {
	db := setupSyncStatusTestDB(t)
	repo := NewSyncStatusRepository(db)
	ctx := context.Background()

	// 从未同步过：返回默认形态而不是报错
	status, err := repo.GetOrDefault(ctx, 1, model.ResourceProduct)
	if err != nil {
		t.Fatalf("GetOrDefault() error = %v", err)
	}
	if status.IsSyncing {
		t.Error("默认形态 is_syncing 应为 false")
	}
	if status.LastSyncAt != nil {
		t.Error("默认形态 last_sync_at 应为 nil")
	}
}

func TestSyncStatusRepo_StateMachine_Success(t *testing.T) {
	db := setupSyncStatusTestDB(t)
	repo := NewSyncStatusRepository(db)
	ctx := context.Background()

	// idle → syncing
	if err := repo.BeginSync(ctx, 1, model.ResourceProduct, "run-1"); err != nil {
		t.Fatalf("BeginSync() error = %v", err)
	}
	status, _ := repo.Get(ctx, 1, model.ResourceProduct)
	if !status.IsSyncing {
		t.Error("BeginSync 后 is_syncing 应为 true")
	}
	if status.Progress["run_id"] != "run-1" {
		t.Errorf("run_id = %v", status.Progress["run_id"])
	}

	// 进度推进
	if err := repo.UpdateProgress(ctx, 1, model.ResourceProduct, "fetch", 40); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	status, _ = repo.Get(ctx, 1, model.ResourceProduct)
	if status.Progress["step"] != "fetch" {
		t.Errorf("step = %v, want fetch", status.Progress["step"])
	}

	// syncing → completed
	if err := repo.Complete(ctx, 1, model.ResourceProduct); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	status, _ = repo.Get(ctx, 1, model.ResourceProduct)
	if status.IsSyncing {
		t.Error("Complete 后 is_syncing 应为 false")
	}
	if status.LastSyncAt == nil {
		t.Error("Complete 后 last_sync_at 应被记录")
	}
	if status.LastSyncError != "" {
		t.Errorf("Complete 后错误应清空, got %s", status.LastSyncError)
	}
}

func TestSyncStatusRepo_StateMachine_Failure(t *testing.T) {
	db := setupSyncStatusTestDB(t)
	repo := NewSyncStatusRepository(db)
	ctx := context.Background()

	_ = repo.BeginSync(ctx, 1, model.ResourceCampaign, "run-1")

	// syncing → failed：记录出错阶段与错误文本
	if err := repo.Fail(ctx, 1, model.ResourceCampaign, "reconcile", errors.New("写入失败")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	status, _ := repo.Get(ctx, 1, model.ResourceCampaign)
	if status.IsSyncing {
		t.Error("Fail 后 is_syncing 应为 false")
	}
	if status.LastSyncError != "写入失败" {
		t.Errorf("last_sync_error = %s", status.LastSyncError)
	}
	if status.Progress["step"] != "reconcile" {
		t.Errorf("失败阶段 = %v, want reconcile", status.Progress["step"])
	}
}

func TestSyncStatusRepo_BeginSyncResetsPreviousRun(t *testing.T) {
	db := setupSyncStatusTestDB(t)
	repo := NewSyncStatusRepository(db)
	ctx := context.Background()

	_ = repo.BeginSync(ctx, 1, model.ResourceProduct, "run-1")
	_ = repo.Fail(ctx, 1, model.ResourceProduct, "fetch", errors.New("超时"))

	// 新一轮同步复用同一行（自然键 upsert），进度重置
	if err := repo.BeginSync(ctx, 1, model.ResourceProduct, "run-2"); err != nil {
		t.Fatalf("重新 BeginSync() error = %v", err)
	}

	var count int64
	db.Model(&model.SyncStatus{}).Count(&count)
	if count != 1 {
		t.Errorf("行数 = %d, want 1", count)
	}

	status, _ := repo.Get(ctx, 1, model.ResourceProduct)
	if !status.IsSyncing {
		t.Error("新一轮 is_syncing 应为 true")
	}
	if status.Progress["run_id"] != "run-2" {
		t.Errorf("run_id = %v, want run-2", status.Progress["run_id"])
	}
}
