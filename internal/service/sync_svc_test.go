package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
)

func setupSyncSvcTest(t *testing.T) (*SyncService, repository.SyncStatusRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SyncStatus{}))

	statusRepo := repository.NewSyncStatusRepository(db)
	// 各资源服务为 nil 也能走通状态机分支（未知资源 / 并发拒绝）
	return NewSyncService(statusRepo, nil, nil, nil, nil), statusRepo
}

func TestSyncResource_UnknownKindFails(t *testing.T) {
	svc, statusRepo := setupSyncSvcTest(t)
	ctx := context.Background()

	err := svc.SyncResource(ctx, 1, "bogus")
	require.Error(t, err)

	var unknownErr *ErrUnknownResource
	assert.ErrorAs(t, err, &unknownErr)

	// 失败收尾：行进入 failed 形态
	status, err := statusRepo.Get(ctx, 1, "bogus")
	require.NoError(t, err)
	assert.False(t, status.IsSyncing)
	assert.NotEmpty(t, status.LastSyncError)
	assert.Nil(t, status.LastSyncAt)
}

func TestSyncResource_RejectsWhileSyncing(t *testing.T) {
	svc, statusRepo := setupSyncSvcTest(t)
	ctx := context.Background()

	// 模拟另一轮同步在途
	require.NoError(t, statusRepo.BeginSync(ctx, 1, model.ResourceProduct, "run-other"))

	err := svc.SyncResource(ctx, 1, model.ResourceProduct)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "正在同步中")
}

func TestGetStatus_NeverSyncedDefault(t *testing.T) {
	svc, _ := setupSyncSvcTest(t)

	status, err := svc.GetStatus(context.Background(), 1, model.ResourceFlashSale)
	require.NoError(t, err)
	assert.False(t, status.IsSyncing)
	assert.Nil(t, status.LastSyncAt)
	assert.Empty(t, status.LastSyncError)
}

func TestGetAllStatus_CoversAllKinds(t *testing.T) {
	svc, statusRepo := setupSyncSvcTest(t)
	ctx := context.Background()

	require.NoError(t, statusRepo.BeginSync(ctx, 1, model.ResourceCampaign, "run-1"))
	require.NoError(t, statusRepo.Complete(ctx, 1, model.ResourceCampaign))

	statuses, err := svc.GetAllStatus(ctx, 1)
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	assert.NotNil(t, statuses[model.ResourceCampaign].LastSyncAt)
	assert.Nil(t, statuses[model.ResourceProduct].LastSyncAt)
}
