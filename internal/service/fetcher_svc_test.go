package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopee_ops_v1/pkg/shopee"
)

func TestFetchAllPages_OffsetPagination(t *testing.T) {
	var offsets []int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/list", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		// 前两页有下一页，第三页收尾
		hasNext := offset < 20
		fmt.Fprintf(w, `{"request_id":"r","error":"","response":{"has_next_page":%v,"next_offset":%d}}`,
			hasNext, offset+10)
	})

	client, _, _ := setupClientTest(t, mux)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(10, 50, time.Millisecond)

	pages := 0
	err := fetcher.FetchAllPages(context.Background(), testShopID, "/api/v2/list", nil, "", nil,
		func(resp *shopee.CommonResp) (FetchPage, error) {
			pages++
			var body struct {
				HasNextPage bool `json:"has_next_page"`
				NextOffset  int  `json:"next_offset"`
			}
			if err := resp.Decode(&body); err != nil {
				return FetchPage{}, err
			}
			return FetchPage{HasNext: body.HasNextPage, NextOffset: body.NextOffset}, nil
		})
	require.NoError(t, err)

	// offset 按上游给的 next_offset 推进
	assert.Equal(t, []int{0, 10, 20}, offsets)
	assert.Equal(t, 3, pages)
}

func TestFetchAllPages_PerStatus(t *testing.T) {
	var statuses []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/list", func(w http.ResponseWriter, r *http.Request) {
		statuses = append(statuses, r.URL.Query().Get("type"))
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{}}`)
	})

	client, _, _ := setupClientTest(t, mux)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(10, 50, time.Millisecond)

	err := fetcher.FetchAllPages(context.Background(), testShopID, "/api/v2/list", nil, "type", []string{"1", "2", "3"},
		func(resp *shopee.CommonResp) (FetchPage, error) {
			return FetchPage{}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, statuses)
}

func TestFetchAllPages_FailedStatusSkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/list", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "2" {
			fmt.Fprint(w, `{"request_id":"r","error":"error_server","message":"boom"}`)
			return
		}
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{}}`)
	})

	client, _, _ := setupClientTest(t, mux)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(10, 50, time.Millisecond)

	var handled []string
	err := fetcher.FetchAllPages(context.Background(), testShopID, "/api/v2/list", nil, "type", []string{"1", "2", "3"},
		func(resp *shopee.CommonResp) (FetchPage, error) {
			handled = append(handled, "page")
			return FetchPage{}, nil
		})

	// 状态 2 失败被跳过，状态 1/3 正常消费，整体不报错
	require.NoError(t, err)
	assert.Len(t, handled, 2)
}

func TestFetchDetails_FixedSizeBatches(t *testing.T) {
	var batches []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/detail", func(w http.ResponseWriter, r *http.Request) {
		batches = append(batches, r.URL.Query().Get("item_id_list"))
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{}}`)
	})

	client, _, _ := setupClientTest(t, mux)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(100, 2, time.Millisecond)

	failed := fetcher.FetchDetails(context.Background(), testShopID, "/api/v2/detail", "item_id_list",
		[]int64{1, 2, 3, 4, 5},
		func(resp *shopee.CommonResp) error { return nil })

	assert.Equal(t, 0, failed)
	// 5 个 ID 按批大小 2 切成 3 批，逗号拼接
	assert.Equal(t, []string{"1,2", "3,4", "5"}, batches)
}

func TestFetchDetails_PartialFailure(t *testing.T) {
	calls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/detail", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			fmt.Fprint(w, `{"request_id":"r","error":"error_server","message":"boom"}`)
			return
		}
		fmt.Fprint(w, `{"request_id":"r","error":"","response":{}}`)
	})

	client, _, _ := setupClientTest(t, mux)
	fetcher := NewPageFetcher(client)
	fetcher.SetTuning(100, 2, time.Millisecond)

	handled := 0
	failed := fetcher.FetchDetails(context.Background(), testShopID, "/api/v2/detail", "item_id_list",
		[]int64{1, 2, 3, 4, 5, 6},
		func(resp *shopee.CommonResp) error {
			handled++
			return nil
		})

	// 失败批次被跳过，成功批次照常消费
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, handled)
}
