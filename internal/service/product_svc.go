package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/shopee"
)

// 商品接口路径
const (
	pathItemList     = "/api/v2/product/get_item_list"
	pathItemBaseInfo = "/api/v2/product/get_item_base_info"
	pathModelList    = "/api/v2/product/get_model_list"
)

// ==================== 响应结构 ====================

type itemListResp struct {
	TotalCount  int  `json:"total_count"`
	HasNextPage bool `json:"has_next_page"`
	NextOffset  int  `json:"next_offset"`
	Item        []struct {
		ItemID     int64  `json:"item_id"`
		ItemStatus string `json:"item_status"`
	} `json:"item"`
}

type itemBaseInfoResp struct {
	ItemList []struct {
		ItemID     int64  `json:"item_id"`
		ItemName   string `json:"item_name"`
		ItemSku    string `json:"item_sku"`
		ItemStatus string `json:"item_status"`
		CategoryID int64  `json:"category_id"`
		HasModel   bool   `json:"has_model"`
		PriceInfo  []struct {
			OriginalPrice float64 `json:"original_price"`
		} `json:"price_info"`
		StockInfoV2 struct {
			SummaryInfo struct {
				TotalAvailableStock int `json:"total_available_stock"`
			} `json:"summary_info"`
		} `json:"stock_info_v2"`
		Image struct {
			ImageURLList []string `json:"image_url_list"`
		} `json:"image"`
	} `json:"item_list"`
}

type modelListResp struct {
	Model []struct {
		ModelID   int64  `json:"model_id"`
		ModelName string `json:"model_name"`
		ModelSku  string `json:"model_sku"`
		PriceInfo []struct {
			OriginalPrice float64 `json:"original_price"`
		} `json:"price_info"`
		StockInfoV2 struct {
			SummaryInfo struct {
				TotalAvailableStock int `json:"total_available_stock"`
			} `json:"summary_info"`
		} `json:"stock_info_v2"`
		ModelStatus string `json:"model_status"`
	} `json:"model"`
}

// ==================== ProductService ====================

// ProductService 商品同步服务
type ProductService struct {
	productRepo repository.ProductRepository
	client      *PartnerClient
	fetcher     *PageFetcher
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, client *PartnerClient, fetcher *PageFetcher) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		client:      client,
		fetcher:     fetcher,
	}
}

// SyncProducts 同步店铺商品快照
// 流程：分页拉取 item_id → 分批拉取基础信息 → 对多规格商品拉取规格 →
// 整组替换本地快照。返回写入行数
func (s *ProductService) SyncProducts(ctx context.Context, shopID int64, report ProgressFunc) (int, error) {
	report("fetch", 10)

	var itemIDs []int64
	statuses := []string{model.ItemStatusNormal, model.ItemStatusBanned, model.ItemStatusUnlist}

	err := s.fetcher.FetchAllPages(ctx, shopID, pathItemList, nil, "item_status", statuses,
		func(resp *shopee.CommonResp) (FetchPage, error) {
			var page itemListResp
			if err := resp.Decode(&page); err != nil {
				return FetchPage{}, err
			}
			for _, item := range page.Item {
				itemIDs = append(itemIDs, item.ItemID)
			}
			return FetchPage{HasNext: page.HasNextPage, NextOffset: page.NextOffset}, nil
		})
	if err != nil {
		return 0, fmt.Errorf("拉取商品列表失败: %w", err)
	}

	report("detail", 40)
	var products []model.Product
	failed := s.fetcher.FetchDetails(ctx, shopID, pathItemBaseInfo, "item_id_list", itemIDs,
		func(resp *shopee.CommonResp) error {
			var detail itemBaseInfoResp
			if err := resp.Decode(&detail); err != nil {
				return err
			}
			for _, item := range detail.ItemList {
				p := model.Product{
					ShopID:     shopID,
					ItemID:     item.ItemID,
					ItemName:   item.ItemName,
					ItemSku:    item.ItemSku,
					ItemStatus: item.ItemStatus,
					CategoryID: item.CategoryID,
					HasModel:   item.HasModel,
					Stock:      item.StockInfoV2.SummaryInfo.TotalAvailableStock,
					Images:     item.Image.ImageURLList,
				}
				if len(item.PriceInfo) > 0 {
					p.Price = item.PriceInfo[0].OriginalPrice
				}
				products = append(products, p)
			}
			return nil
		})
	if failed > 0 {
		log.Printf("[ProductService] 店铺 %d 有 %d 批商品详情拉取失败，已跳过", shopID, failed)
	}

	// 多规格商品逐个拉规格，失败只记日志
	report("models", 60)
	var models []model.ProductModel
	for _, p := range products {
		if !p.HasModel {
			continue
		}
		ms, err := s.fetchModels(ctx, shopID, p.ItemID)
		if err != nil {
			log.Printf("[ProductService] 店铺 %d 商品 %d 规格拉取失败: %v，跳过", shopID, p.ItemID, err)
			continue
		}
		models = append(models, ms...)
	}

	report("reconcile", 85)
	written, err := s.productRepo.ReplaceForShop(ctx, shopID, products, models)
	if err != nil {
		return 0, fmt.Errorf("商品快照写入失败: %w", err)
	}
	return written, nil
}

// fetchModels 拉取单商品规格列表
func (s *ProductService) fetchModels(ctx context.Context, shopID, itemID int64) ([]model.ProductModel, error) {
	params := url.Values{}
	params.Set("item_id", strconv.FormatInt(itemID, 10))

	resp, err := s.client.Get(ctx, shopID, pathModelList, params)
	if err != nil {
		return nil, err
	}

	var detail modelListResp
	if err := resp.Decode(&detail); err != nil {
		return nil, err
	}

	models := make([]model.ProductModel, 0, len(detail.Model))
	for _, m := range detail.Model {
		pm := model.ProductModel{
			ShopID:    shopID,
			ItemID:    itemID,
			ModelID:   m.ModelID,
			ModelName: m.ModelName,
			ModelSku:  m.ModelSku,
			Stock:     m.StockInfoV2.SummaryInfo.TotalAvailableStock,
		}
		if m.ModelStatus == "MODEL_NORMAL" {
			pm.Status = 1
		}
		if len(m.PriceInfo) > 0 {
			pm.Price = m.PriceInfo[0].OriginalPrice
		}
		models = append(models, pm)
	}
	return models, nil
}

// ListProducts 本地商品列表
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}
