package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1/internal/model"
)

func setupFlashSaleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.FlashSale{}, &model.FlashSaleItem{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestFlashSaleRepo_ReplaceForShop(t *testing.T) {
	db := setupFlashSaleTestDB(t)
	repo := NewFlashSaleRepository(db)
	ctx := context.Background()

	first := []model.FlashSale{
		{ShopID: 1, FlashSaleID: 101, Status: model.FlashSaleStatusOngoing, StartTime: 100},
		{ShopID: 1, FlashSaleID: 102, Status: model.FlashSaleStatusUpcoming, StartTime: 200},
	}
	n, err := repo.ReplaceForShop(ctx, 1, first)
	if err != nil {
		t.Fatalf("ReplaceForShop() error = %v", err)
	}
	if n != 2 {
		t.Errorf("写入行数 = %d, want 2", n)
	}

	// 第二轮快照：101 消失，103 新增
	second := []model.FlashSale{
		{ShopID: 1, FlashSaleID: 102, Status: model.FlashSaleStatusOngoing, StartTime: 200},
		{ShopID: 1, FlashSaleID: 103, Status: model.FlashSaleStatusUpcoming, StartTime: 300},
	}
	if _, err := repo.ReplaceForShop(ctx, 1, second); err != nil {
		t.Fatalf("ReplaceForShop() error = %v", err)
	}

	sales, total, err := repo.List(ctx, FlashSaleFilter{ShopID: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, s := range sales {
		if s.FlashSaleID == 101 {
			t.Error("上轮快照里的场次 101 应该被替换掉")
		}
	}
}

func TestFlashSaleRepo_ReplaceForShop_EmptySet(t *testing.T) {
	db := setupFlashSaleTestDB(t)
	repo := NewFlashSaleRepository(db)
	ctx := context.Background()

	if _, err := repo.ReplaceForShop(ctx, 1, []model.FlashSale{
		{ShopID: 1, FlashSaleID: 101},
	}); err != nil {
		t.Fatalf("ReplaceForShop() error = %v", err)
	}

	// 上游返回空集合也是合法快照，本地要清空
	n, err := repo.ReplaceForShop(ctx, 1, nil)
	if err != nil {
		t.Fatalf("空集合替换失败: %v", err)
	}
	if n != 0 {
		t.Errorf("写入行数 = %d, want 0", n)
	}

	_, total, _ := repo.List(ctx, FlashSaleFilter{ShopID: 1})
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestFlashSaleRepo_ReplaceForShop_ScopedToShop(t *testing.T) {
	db := setupFlashSaleTestDB(t)
	repo := NewFlashSaleRepository(db)
	ctx := context.Background()

	_, _ = repo.ReplaceForShop(ctx, 1, []model.FlashSale{{ShopID: 1, FlashSaleID: 101}})
	_, _ = repo.ReplaceForShop(ctx, 2, []model.FlashSale{{ShopID: 2, FlashSaleID: 201}})

	// 店铺 1 的替换不能动店铺 2 的数据
	_, _ = repo.ReplaceForShop(ctx, 1, nil)

	_, total, _ := repo.List(ctx, FlashSaleFilter{ShopID: 2})
	if total != 1 {
		t.Errorf("店铺 2 的快照被误删, total = %d", total)
	}
}

func TestFlashSaleRepo_ReplaceItems(t *testing.T) {
	db := setupFlashSaleTestDB(t)
	repo := NewFlashSaleRepository(db)
	ctx := context.Background()

	_, err := repo.ReplaceItems(ctx, 1, 101, []model.FlashSaleItem{
		{ShopID: 1, FlashSaleID: 101, ItemID: 11, ModelID: 0, PromotionPrice: 9.9},
		{ShopID: 1, FlashSaleID: 101, ItemID: 12, ModelID: 1, PromotionPrice: 19.9},
	})
	if err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}
	_, _ = repo.ReplaceItems(ctx, 1, 102, []model.FlashSaleItem{
		{ShopID: 1, FlashSaleID: 102, ItemID: 13, ModelID: 0, PromotionPrice: 5},
	})

	// 重放同一场次：旧条目被替换，其他场次不受影响
	_, err = repo.ReplaceItems(ctx, 1, 101, []model.FlashSaleItem{
		{ShopID: 1, FlashSaleID: 101, ItemID: 11, ModelID: 0, PromotionPrice: 8.8},
	})
	if err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}

	items, err := repo.ListItems(ctx, 1, 101)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("场次 101 条目数 = %d, want 1", len(items))
	}
	if items[0].PromotionPrice != 8.8 {
		t.Errorf("促销价 = %v, want 8.8", items[0].PromotionPrice)
	}

	other, _ := repo.ListItems(ctx, 1, 102)
	if len(other) != 1 {
		t.Errorf("场次 102 条目数 = %d, want 1", len(other))
	}
}
