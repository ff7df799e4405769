package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/utils"
)

func noProgress(string, int) {}

func setupFlashSaleSvcTest(t *testing.T, handler http.Handler) (*FlashSaleService, repository.FlashSaleRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Shop{}, &model.FlashSale{}, &model.FlashSaleItem{},
	))

	shopRepo := repository.NewShopRepository(db)
	require.NoError(t, shopRepo.Create(context.Background(), &model.Shop{
		ShopID:         testShopID,
		PartnerID:      testPartnerID,
		PartnerKey:     testPartnerKey,
		AccessToken:    "token",
		RefreshToken:   "refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
		TokenStatus:    model.TokenStatusValid,
		Status:         model.ShopStatusActive,
	}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewPartnerClient(shopRepo, utils.NewTTLCache(time.Minute), srv.URL)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(100, 50, time.Millisecond)

	flashSaleRepo := repository.NewFlashSaleRepository(db)
	return NewFlashSaleService(flashSaleRepo, client, fetcher), flashSaleRepo
}

func TestSyncFlashSales_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathFlashSaleList, func(w http.ResponseWriter, r *http.Request) {
		// 只有进行中状态有场次
		if r.URL.Query().Get("type") != "2" {
			fmt.Fprint(w, `{"request_id":"r","error":"","response":{"total_count":0,"flash_sale_list":[]}}`)
			return
		}
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{"total_count":1,"flash_sale_list":[
			{"flash_sale_id":9001,"timeslot_id":77,"status":2,"start_time":1700000000,"end_time":1700003600,
			 "item_count":2,"enabled_item_count":2,"click_count":15,"remindme_count":3}
		]}}`)
	})
	mux.HandleFunc(pathFlashSaleItems, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{
			"total_count":2,
			"item_info":[{"item_id":11,"item_name":"商品A"},{"item_id":12,"item_name":"商品B"}],
			"models":[
				{"item_id":11,"model_id":0,"original_price":100,"promotion_price_with_tax":79,"campaign_stock":5,"stock":50,"purchase_limit":2,"status":1},
				{"item_id":12,"model_id":3,"original_price":60,"promotion_price_with_tax":39,"campaign_stock":10,"stock":30,"purchase_limit":1,"status":1}
			]}}`)
	})

	svc, repo := setupFlashSaleSvcTest(t, mux)

	written, err := svc.SyncFlashSales(context.Background(), testShopID, noProgress)
	require.NoError(t, err)
	assert.Equal(t, 3, written) // 1 场次 + 2 商品

	sale, err := repo.GetByFlashSaleID(context.Background(), testShopID, 9001)
	require.NoError(t, err)
	assert.Equal(t, model.FlashSaleStatusOngoing, sale.Status)
	assert.Equal(t, int64(77), sale.TimeslotID)

	items, err := repo.ListItems(context.Background(), testShopID, 9001)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "商品A", items[0].ItemName)
	assert.Equal(t, 79.0, items[0].PromotionPrice)
}

func TestSyncFlashSales_PagesEachStatusFully(t *testing.T) {
	// 每个状态两个场次、页大小 1：排在后面的状态也必须翻到第二页，
	// 不能被前面状态已累计的行数提前终止
	perStatus := map[string][]int64{"1": {11, 12}, "2": {21, 22}}

	mux := http.NewServeMux()
	mux.HandleFunc(pathFlashSaleList, func(w http.ResponseWriter, r *http.Request) {
		ids := perStatus[r.URL.Query().Get("type")]
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		rows := ""
		if offset < len(ids) {
			rows = fmt.Sprintf(`{"flash_sale_id":%d,"timeslot_id":1,"status":2}`, ids[offset])
		}
		fmt.Fprintf(w, `{"request_id":"r","error":"","response":{"total_count":%d,"flash_sale_list":[%s]}}`,
			len(ids), rows)
	})
	mux.HandleFunc(pathFlashSaleItems, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{"total_count":0,"item_info":[],"models":[]}}`)
	})

	svc, repo := setupFlashSaleSvcTest(t, mux)
	svc.fetcher.SetTuning(1, 50, time.Millisecond)

	written, err := svc.SyncFlashSales(context.Background(), testShopID, noProgress)
	require.NoError(t, err)
	assert.Equal(t, 4, written)

	sales, total, err := repo.List(context.Background(), repository.FlashSaleFilter{ShopID: testShopID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	got := make([]int64, 0, len(sales))
	for _, s := range sales {
		got = append(got, s.FlashSaleID)
	}
	assert.ElementsMatch(t, []int64{11, 12, 21, 22}, got)
}

func TestSyncFlashSales_ItemFailureSkipsSale(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathFlashSaleList, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "2" {
			fmt.Fprint(w, `{"request_id":"r","error":"","response":{"total_count":0,"flash_sale_list":[]}}`)
			return
		}
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{"total_count":1,"flash_sale_list":[
			{"flash_sale_id":9001,"timeslot_id":77,"status":2}
		]}}`)
	})
	mux.HandleFunc(pathFlashSaleItems, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"r","error":"error_server","message":"boom"}`)
	})

	svc, repo := setupFlashSaleSvcTest(t, mux)

	// 场次内商品失败只跳过该场次，整体同步不报错
	written, err := svc.SyncFlashSales(context.Background(), testShopID, noProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	_, err = repo.GetByFlashSaleID(context.Background(), testShopID, 9001)
	assert.NoError(t, err)
}

func TestAddItems_NormalizesPayload(t *testing.T) {
	var gotBody struct {
		FlashSaleID int64                  `json:"flash_sale_id"`
		Items       []FlashSaleItemPayload `json:"items"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pathFlashSaleAddItems, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{}}`)
	})

	svc, _ := setupFlashSaleSvcTest(t, mux)

	submitted, err := svc.AddItems(context.Background(), testShopID, 9001, []TemplateItem{
		{ItemID: 11, Price: 50, Stock: 5},
		{ItemID: 12, Price: 0}, // 无效条目被归一化剔除
	})
	require.NoError(t, err)
	assert.Equal(t, 1, submitted)

	assert.Equal(t, int64(9001), gotBody.FlashSaleID)
	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, int64(11), gotBody.Items[0].ItemID)
	assert.Equal(t, 50.0, gotBody.Items[0].PromotionPrice)
}

func TestAddItems_AllInvalidRejected(t *testing.T) {
	mux := http.NewServeMux()
	svc, _ := setupFlashSaleSvcTest(t, mux)

	_, err := svc.AddItems(context.Background(), testShopID, 9001, []TemplateItem{
		{ItemID: 11, Price: 0},
	})
	assert.Error(t, err)
}
