package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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

const (
	testShopID     = int64(123456)
	testPartnerID  = int64(200707)
	testPartnerKey = "secret-key"
)

// setupClientTest 建一个持有已授权店铺的客户端，出站请求全部打到 handler
func setupClientTest(t *testing.T, handler http.Handler) (*PartnerClient, repository.ShopRepository, *httptest.Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Shop{}))

	shopRepo := repository.NewShopRepository(db)
	shop := &model.Shop{
		ShopID:         testShopID,
		ShopName:       "测试店铺",
		Region:         "ID",
		PartnerID:      testPartnerID,
		PartnerKey:     testPartnerKey,
		AccessToken:    "old-token",
		RefreshToken:   "old-refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
		TokenStatus:    model.TokenStatusValid,
		Status:         model.ShopStatusActive,
	}
	require.NoError(t, shopRepo.Create(context.Background(), shop))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewPartnerClient(shopRepo, utils.NewTTLCache(time.Minute), srv.URL)
	return client, shopRepo, srv
}

func TestPartnerClient_RefreshAndRetryOnce(t *testing.T) {
	var refreshCalls, listCalls int

	mux := http.NewServeMux()
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		fmt.Fprint(w, `{"access_token":"new-token","refresh_token":"new-refresh","expire_in":14400}`)
	})
	mux.HandleFunc("/api/v2/product/get_item_list", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		if r.URL.Query().Get("access_token") == "new-token" {
			fmt.Fprint(w, `{"request_id":"r2","error":"","response":{"total_count":0}}`)
			return
		}
		fmt.Fprint(w, `{"request_id":"r1","error":"error_auth","message":"Invalid access_token"}`)
	})

	client, shopRepo, _ := setupClientTest(t, mux)

	resp, err := client.Get(context.Background(), testShopID, "/api/v2/product/get_item_list", nil)
	require.NoError(t, err)
	assert.True(t, resp.IsOK())

	// 恰好刷新一次、重试一次
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, listCalls)

	// 新 Token 对成对落库
	shop, err := shopRepo.GetByShopID(context.Background(), testShopID)
	require.NoError(t, err)
	assert.Equal(t, "new-token", shop.AccessToken)
	assert.Equal(t, "new-refresh", shop.RefreshToken)
	assert.Equal(t, model.TokenStatusValid, shop.TokenStatus)
}

func TestPartnerClient_SecondAuthFailureIsFinal(t *testing.T) {
	var refreshCalls, listCalls int

	mux := http.NewServeMux()
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		fmt.Fprint(w, `{"access_token":"new-token","refresh_token":"new-refresh","expire_in":14400}`)
	})
	mux.HandleFunc("/api/v2/product/get_item_list", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		// 刷新后依然拒绝
		fmt.Fprint(w, `{"request_id":"r1","error":"error_auth","message":"Invalid access_token"}`)
	})

	client, _, _ := setupClientTest(t, mux)

	_, err := client.Get(context.Background(), testShopID, "/api/v2/product/get_item_list", nil)
	require.Error(t, err)

	// 只允许刷新一次，绝不循环
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, listCalls)
}

func TestPartnerClient_RefreshDeniedMarksShop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"error_auth","message":"refresh_token is invalid"}`)
	})
	mux.HandleFunc("/api/v2/product/get_item_list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"r1","error":"error_auth","message":"Invalid access_token"}`)
	})

	client, shopRepo, _ := setupClientTest(t, mux)

	_, err := client.Get(context.Background(), testShopID, "/api/v2/product/get_item_list", nil)
	require.Error(t, err)

	// 平台拒绝刷新后店铺被标记为待重新授权
	shop, err := shopRepo.GetByShopID(context.Background(), testShopID)
	require.NoError(t, err)
	assert.Equal(t, model.TokenStatusInvalid, shop.TokenStatus)
}

func TestPartnerClient_BusinessErrorNoRefresh(t *testing.T) {
	var refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		fmt.Fprint(w, `{"access_token":"new-token","refresh_token":"new-refresh","expire_in":14400}`)
	})
	mux.HandleFunc("/api/v2/product/get_item_list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"r1","error":"error_param","message":"invalid offset"}`)
	})

	client, _, _ := setupClientTest(t, mux)

	_, err := client.Get(context.Background(), testShopID, "/api/v2/product/get_item_list", nil)
	require.Error(t, err)
	// 普通业务错误不触发刷新
	assert.Equal(t, 0, refreshCalls)
}

func TestPartnerClient_IncompleteCredential(t *testing.T) {
	mux := http.NewServeMux()
	client, shopRepo, _ := setupClientTest(t, mux)

	// 录入一个缺 Token 的店铺
	require.NoError(t, shopRepo.Create(context.Background(), &model.Shop{
		ShopID:     999,
		PartnerID:  testPartnerID,
		PartnerKey: testPartnerKey,
	}))

	_, err := client.Get(context.Background(), 999, "/api/v2/product/get_item_list", nil)
	assert.ErrorIs(t, err, ErrIncompleteCredential)
}

func TestPartnerClient_RequestIsSigned(t *testing.T) {
	var gotSign, gotPartnerID string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/product/get_item_list", func(w http.ResponseWriter, r *http.Request) {
		gotSign = r.URL.Query().Get("sign")
		gotPartnerID = r.URL.Query().Get("partner_id")
		fmt.Fprint(w, `{"request_id":"r1","error":"","response":{}}`)
	})

	client, _, _ := setupClientTest(t, mux)

	_, err := client.Get(context.Background(), testShopID, "/api/v2/product/get_item_list", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, gotSign)
	assert.Equal(t, "200707", gotPartnerID)
}

func TestPartnerClient_CredentialCacheReturnsCopy(t *testing.T) {
	client, _, _ := setupClientTest(t, http.NewServeMux())

	ctx := context.Background()
	first, err := client.loadShop(ctx, testShopID)
	require.NoError(t, err)
	second, err := client.loadShop(ctx, testShopID)
	require.NoError(t, err)

	// 并发同步时各调用方持有独立副本，改写自己的副本不能影响他人
	require.NotSame(t, first, second)
	first.AccessToken = "scribbled"
	assert.Equal(t, "old-token", second.AccessToken)

	// 缓存条目本身也不被污染
	third, err := client.loadShop(ctx, testShopID)
	require.NoError(t, err)
	assert.Equal(t, "old-token", third.AccessToken)
}
