package service

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopee_ops_v1/pkg/shopee"
)

// ==================== PageFetcher 分页/批量拉取器 ====================

// FetchPage 单页解析结果
type FetchPage struct {
	HasNext    bool
	NextOffset int
}

// PageHandler 消费一页列表响应，返回翻页信息
type PageHandler func(resp *shopee.CommonResp) (FetchPage, error)

// DetailHandler 消费一批详情响应
type DetailHandler func(resp *shopee.CommonResp) error

// PageFetcher 驱动 offset 分页和固定大小的 ID 批量拉取
// 平台对单次详情请求有条数上限（50~100），batchSize 不要超过 50；
// 每次调用之间固定 sleep 以规避限流
type PageFetcher struct {
	client *PartnerClient

	pageSize  int
	batchSize int
	delay     time.Duration
}

// NewPageFetcher 创建拉取器
func NewPageFetcher(client *PartnerClient) *PageFetcher {
	return &PageFetcher{
		client:    client,
		pageSize:  100,
		batchSize: 50,
		delay:     100 * time.Millisecond,
	}
}

// SetTuning 调整分页/批量/间隔参数
func (f *PageFetcher) SetTuning(pageSize, batchSize int, delay time.Duration) {
	if pageSize > 0 {
		f.pageSize = pageSize
	}
	if batchSize > 0 {
		f.batchSize = batchSize
	}
	if delay > 0 {
		f.delay = delay
	}
}

// FetchAllPages 逐状态、逐页拉取列表
// statuses 为状态过滤值（statusParam 为参数名）；为空时只按无过滤拉一轮。
// 单个状态的列表页出错时记日志并跳过该状态，其余状态继续（可用性优先于完整性）
func (f *PageFetcher) FetchAllPages(ctx context.Context, shopID int64, listPath string, base url.Values, statusParam string, statuses []string, handle PageHandler) error {
	if len(statuses) == 0 {
		statuses = []string{""}
	}

	for _, status := range statuses {
		offset := 0
		for {
			params := url.Values{}
			for k, vs := range base {
				for _, v := range vs {
					params.Add(k, v)
				}
			}
			if status != "" && statusParam != "" {
				params.Set(statusParam, status)
			}
			params.Set("offset", strconv.Itoa(offset))
			params.Set("page_size", strconv.Itoa(f.pageSize))

			resp, err := f.client.Call(ctx, shopID, listPath, http.MethodGet, params, nil)
			if err != nil {
				log.Printf("[Fetcher] 店铺 %d 列表页失败 (path=%s status=%s offset=%d): %v，跳过该状态",
					shopID, listPath, status, offset, err)
				break
			}

			page, err := handle(resp)
			if err != nil {
				log.Printf("[Fetcher] 店铺 %d 列表页解析失败 (path=%s offset=%d): %v，跳过该状态",
					shopID, listPath, offset, err)
				break
			}

			if !page.HasNext {
				break
			}
			if page.NextOffset > offset {
				offset = page.NextOffset
			} else {
				offset += f.pageSize
			}

			time.Sleep(f.delay)
		}
	}
	return nil
}

// FetchDetails 把 ID 按固定大小分批请求详情接口
// 单批失败只记日志并跳过，整体返回成功批次的并集；返回失败批次数
func (f *PageFetcher) FetchDetails(ctx context.Context, shopID int64, detailPath, idParam string, ids []int64, handle DetailHandler) int {
	return f.FetchDetailsWith(ctx, shopID, detailPath, idParam, ids, nil, handle)
}

// FetchDetailsWith 同 FetchDetails，额外附带固定业务参数（如报表日期区间）
func (f *PageFetcher) FetchDetailsWith(ctx context.Context, shopID int64, detailPath, idParam string, ids []int64, base url.Values, handle DetailHandler) int {
	failed := 0

	for i := 0; i < len(ids); i += f.batchSize {
		end := i + f.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		params := url.Values{}
		for k, vs := range base {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
		params.Set(idParam, joinIDs(batch))

		resp, err := f.client.Call(ctx, shopID, detailPath, http.MethodGet, params, nil)
		if err != nil {
			log.Printf("[Fetcher] 店铺 %d 详情批次失败 (path=%s batch=%d~%d): %v，跳过",
				shopID, detailPath, i, end, err)
			failed++
		} else if err := handle(resp); err != nil {
			log.Printf("[Fetcher] 店铺 %d 详情批次解析失败 (path=%s batch=%d~%d): %v，跳过",
				shopID, detailPath, i, end, err)
			failed++
		}

		time.Sleep(f.delay)
	}
	return failed
}

// joinIDs 详情接口要求逗号拼接的 ID 列表
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
