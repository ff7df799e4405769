package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/shopee"
)

// Flash Sale 接口路径
const (
	pathFlashSaleList     = "/api/v2/shop_flash_sale/get_shop_flash_sale_list"
	pathFlashSaleItems    = "/api/v2/shop_flash_sale/get_shop_flash_sale_items"
	pathFlashSaleAddItems = "/api/v2/shop_flash_sale/add_shop_flash_sale_items"
)

// ==================== 响应结构 ====================

type flashSaleListResp struct {
	TotalCount    int                `json:"total_count"`
	FlashSaleList []flashSaleListRow `json:"flash_sale_list"`
}

type flashSaleListRow struct {
	FlashSaleID      int64 `json:"flash_sale_id"`
	TimeslotID       int64 `json:"timeslot_id"`
	Status           int   `json:"status"`
	Type             int   `json:"type"`
	StartTime        int64 `json:"start_time"`
	EndTime          int64 `json:"end_time"`
	ItemCount        int   `json:"item_count"`
	EnabledItemCount int   `json:"enabled_item_count"`
	ClickCount       int   `json:"click_count"`
	RemindmeCount    int   `json:"remindme_count"`
}

type flashSaleItemsResp struct {
	TotalCount int `json:"total_count"`
	ItemInfo   []struct {
		ItemID   int64  `json:"item_id"`
		ItemName string `json:"item_name"`
	} `json:"item_info"`
	Models []struct {
		ItemID         int64   `json:"item_id"`
		ModelID        int64   `json:"model_id"`
		OriginalPrice  float64 `json:"original_price"`
		PromotionPrice float64 `json:"promotion_price_with_tax"`
		CampaignStock  int     `json:"campaign_stock"`
		Stock          int     `json:"stock"`
		PurchaseLimit  int     `json:"purchase_limit"`
		Status         int     `json:"status"`
	} `json:"models"`
}

// ==================== FlashSaleService ====================

// FlashSaleService 限时特卖同步与报名服务
type FlashSaleService struct {
	flashSaleRepo repository.FlashSaleRepository
	client        *PartnerClient
	fetcher       *PageFetcher
}

// NewFlashSaleService 创建限时特卖服务
func NewFlashSaleService(flashSaleRepo repository.FlashSaleRepository, client *PartnerClient, fetcher *PageFetcher) *FlashSaleService {
	return &FlashSaleService{
		flashSaleRepo: flashSaleRepo,
		client:        client,
		fetcher:       fetcher,
	}
}

// ==================== 场次同步 ====================

// SyncFlashSales 同步店铺限时特卖快照
// 拉取即将开始/进行中/已结束三种状态的场次，整组替换本地数据，
// 再逐场次替换场次内商品。返回写入行数
func (s *FlashSaleService) SyncFlashSales(ctx context.Context, shopID int64, report ProgressFunc) (int, error) {
	report("fetch", 10)

	var sales []model.FlashSale
	statuses := []string{
		strconv.Itoa(model.FlashSaleStatusUpcoming),
		strconv.Itoa(model.FlashSaleStatusOngoing),
		strconv.Itoa(model.FlashSaleStatusExpired),
	}

	// total_count 是单个状态下的总数，翻页判断只能数本状态已取的行数，
	// 所以逐状态起一轮分页，每轮的计数从零开始
	for _, status := range statuses {
		fetched := 0
		err := s.fetcher.FetchAllPages(ctx, shopID, pathFlashSaleList, nil, "type", []string{status},
			func(resp *shopee.CommonResp) (FetchPage, error) {
				var page flashSaleListResp
				if err := resp.Decode(&page); err != nil {
					return FetchPage{}, err
				}
				for _, row := range page.FlashSaleList {
					sales = append(sales, model.FlashSale{
						ShopID:           shopID,
						FlashSaleID:      row.FlashSaleID,
						TimeslotID:       row.TimeslotID,
						Status:           row.Status,
						StartTime:        row.StartTime,
						EndTime:          row.EndTime,
						ItemCount:        row.ItemCount,
						EnabledItemCount: row.EnabledItemCount,
						ClickCount:       row.ClickCount,
						RemindmeCount:    row.RemindmeCount,
					})
				}
				fetched += len(page.FlashSaleList)
				return FetchPage{HasNext: fetched < page.TotalCount && len(page.FlashSaleList) > 0}, nil
			})
		if err != nil {
			return 0, fmt.Errorf("拉取场次列表失败: %w", err)
		}
	}

	report("reconcile", 50)
	written, err := s.flashSaleRepo.ReplaceForShop(ctx, shopID, sales)
	if err != nil {
		return 0, fmt.Errorf("场次快照写入失败: %w", err)
	}

	// 逐场次替换商品，单场次失败只记日志跳过
	report("items", 70)
	for _, sale := range sales {
		n, err := s.syncSaleItems(ctx, shopID, sale.FlashSaleID)
		if err != nil {
			log.Printf("[FlashSaleService] 店铺 %d 场次 %d 商品同步失败: %v，跳过", shopID, sale.FlashSaleID, err)
			continue
		}
		written += n
		time.Sleep(100 * time.Millisecond)
	}

	return written, nil
}

// syncSaleItems 替换单场次内商品快照
func (s *FlashSaleService) syncSaleItems(ctx context.Context, shopID, flashSaleID int64) (int, error) {
	params := url.Values{}
	params.Set("flash_sale_id", strconv.FormatInt(flashSaleID, 10))
	params.Set("offset", "0")
	params.Set("limit", "100")

	resp, err := s.client.Get(ctx, shopID, pathFlashSaleItems, params)
	if err != nil {
		return 0, err
	}

	var detail flashSaleItemsResp
	if err := resp.Decode(&detail); err != nil {
		return 0, err
	}

	// item_id -> item_name
	names := make(map[int64]string, len(detail.ItemInfo))
	for _, info := range detail.ItemInfo {
		names[info.ItemID] = info.ItemName
	}

	items := make([]model.FlashSaleItem, 0, len(detail.Models))
	for _, m := range detail.Models {
		items = append(items, model.FlashSaleItem{
			ShopID:         shopID,
			FlashSaleID:    flashSaleID,
			ItemID:         m.ItemID,
			ModelID:        m.ModelID,
			ItemName:       names[m.ItemID],
			OriginalPrice:  m.OriginalPrice,
			PromotionPrice: m.PromotionPrice,
			CampaignStock:  m.CampaignStock,
			Stock:          m.Stock,
			PurchaseLimit:  m.PurchaseLimit,
			Status:         m.Status,
		})
	}

	return s.flashSaleRepo.ReplaceItems(ctx, shopID, flashSaleID, items)
}

// ==================== 报名商品 ====================

// AddItems 把模板商品报名到指定场次
// 模板条目先经过归一化，无效条目直接丢弃；返回实际提交的条目数
func (s *FlashSaleService) AddItems(ctx context.Context, shopID, flashSaleID int64, items []TemplateItem) (int, error) {
	payload := NormalizeTemplateItems(items)
	if len(payload) == 0 {
		return 0, fmt.Errorf("模板中没有可报名的有效商品")
	}

	body := map[string]interface{}{
		"flash_sale_id": flashSaleID,
		"items":         payload,
	}
	if _, err := s.client.Post(ctx, shopID, pathFlashSaleAddItems, body); err != nil {
		return 0, fmt.Errorf("报名商品失败: %w", err)
	}
	return len(payload), nil
}

// ==================== 查询 ====================

// ListFlashSales 本地场次列表
func (s *FlashSaleService) ListFlashSales(ctx context.Context, filter repository.FlashSaleFilter) ([]model.FlashSale, int64, error) {
	return s.flashSaleRepo.List(ctx, filter)
}

// ListItems 本地场次商品
func (s *FlashSaleService) ListItems(ctx context.Context, shopID, flashSaleID int64) ([]model.FlashSaleItem, error) {
	return s.flashSaleRepo.ListItems(ctx, shopID, flashSaleID)
}
