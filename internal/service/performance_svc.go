package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/shopee"
)

// 店铺级报表接口路径
const (
	pathShopDailyPerf  = "/api/v2/ads/get_all_cpc_ads_daily_performance"
	pathShopHourlyPerf = "/api/v2/ads/get_all_cpc_ads_hourly_performance"
)

// SummarySourceNone 上游与兜底都失败时的占位来源
const SummarySourceNone = "none"

// ==================== 响应结构 ====================

type shopPerfResp struct {
	EntryList []struct {
		Date       string  `json:"date"` // DD-MM-YYYY
		Hour       int     `json:"hour"`
		Impression int64   `json:"impression"`
		Clicks     int64   `json:"clicks"`
		Expense    float64 `json:"expense"`
		BroadGmv   float64 `json:"broad_gmv"`
		BroadOrder int64   `json:"broad_order"`
	} `json:"entry_list"`
}

// ==================== PerformanceSummary ====================

// PerformanceSummary 店铺级表现汇总
// Source 标记数据来源：upstream（平台聚合接口）、computed（活动行求和兜底）
// 或 none（两条路径都失败，返回全零）
type PerformanceSummary struct {
	Source string `json:"source"`

	Impression int64   `json:"impression"`
	Clicks     int64   `json:"clicks"`
	Expense    float64 `json:"expense"`
	BroadGmv   float64 `json:"broad_gmv"`
	BroadOrder int64   `json:"broad_order"`

	Ctr  float64 `json:"ctr"`
	Roas float64 `json:"roas"`
	Acos float64 `json:"acos"`

	Records []model.ShopPerformance `json:"records"`
}

// ==================== PerformanceService ====================

// PerformanceService 店铺级表现聚合服务
type PerformanceService struct {
	perfRepo     repository.ShopPerformanceRepository
	campaignRepo repository.CampaignRepository
	client       *PartnerClient
}

// NewPerformanceService 创建表现聚合服务
func NewPerformanceService(perfRepo repository.ShopPerformanceRepository, campaignRepo repository.CampaignRepository, client *PartnerClient) *PerformanceService {
	return &PerformanceService{
		perfRepo:     perfRepo,
		campaignRepo: campaignRepo,
		client:       client,
	}
}

// ==================== 聚合 ====================

// Aggregate 聚合 [start, end] 的店铺级表现
// 优先走平台聚合接口；失败或返回空时退回到本地活动行求和；
// 两条路径都拿不到数据时返回全零汇总而不是报错
func (s *PerformanceService) Aggregate(ctx context.Context, shopID int64, start, end time.Time, hourly bool) (*PerformanceSummary, error) {
	records, err := s.fetchUpstream(ctx, shopID, start, end, hourly)
	source := model.PerformanceSourceUpstream
	if err != nil || len(records) == 0 {
		if err != nil {
			log.Printf("[PerformanceService] 店铺 %d 上游聚合失败: %v，改用本地求和", shopID, err)
		}
		records, err = s.computeFromCampaigns(ctx, shopID, start, end, hourly)
		source = model.PerformanceSourceComputed
		if err != nil || len(records) == 0 {
			if err != nil {
				log.Printf("[PerformanceService] 店铺 %d 本地求和失败: %v，返回全零汇总", shopID, err)
			}
			return &PerformanceSummary{Source: SummarySourceNone}, nil
		}
	}

	summary := &PerformanceSummary{Source: source, Records: records}
	for _, r := range records {
		summary.Impression += r.Impression
		summary.Clicks += r.Clicks
		summary.Expense += r.Expense
		summary.BroadGmv += r.BroadGmv
		summary.BroadOrder += r.BroadOrder
	}
	summary.Ctr, summary.Roas, summary.Acos = deriveRatios(
		summary.Impression, summary.Clicks, summary.Expense, summary.BroadGmv)
	return summary, nil
}

// SyncShopPerformance 聚合并落库店铺级表现
// 全零汇总（两条路径都失败）不落库，返回写入行数
func (s *PerformanceService) SyncShopPerformance(ctx context.Context, shopID int64, start, end time.Time, report ProgressFunc) (int, error) {
	report("aggregate", 20)

	written := 0
	for _, hourly := range []bool{false, true} {
		summary, err := s.Aggregate(ctx, shopID, start, end, hourly)
		if err != nil {
			return written, err
		}
		if summary.Source == SummarySourceNone {
			continue
		}
		n, err := s.perfRepo.BatchUpsert(ctx, summary.Records)
		if err != nil {
			return written, fmt.Errorf("店铺表现写入失败: %w", err)
		}
		written += n
	}

	report("persist", 90)
	return written, nil
}

// fetchUpstream 调平台聚合接口拉店铺级表现
func (s *PerformanceService) fetchUpstream(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]model.ShopPerformance, error) {
	path := pathShopDailyPerf
	if hourly {
		path = pathShopHourlyPerf
	}

	params := url.Values{}
	params.Set("start_date", shopee.FormatDate(start.Year(), int(start.Month()), start.Day()))
	params.Set("end_date", shopee.FormatDate(end.Year(), int(end.Month()), end.Day()))

	resp, err := s.client.Get(ctx, shopID, path, params)
	if err != nil {
		return nil, err
	}

	var perf shopPerfResp
	if err := resp.Decode(&perf); err != nil {
		return nil, err
	}

	records := make([]model.ShopPerformance, 0, len(perf.EntryList))
	for _, e := range perf.EntryList {
		date, err := time.Parse("02-01-2006", e.Date)
		if err != nil {
			continue
		}
		hour := model.HourDaily
		if hourly {
			hour = e.Hour
		}
		r := model.ShopPerformance{
			ShopID:          shopID,
			PerformanceDate: date,
			Hour:            hour,
			Impression:      e.Impression,
			Clicks:          e.Clicks,
			Expense:         e.Expense,
			BroadGmv:        e.BroadGmv,
			BroadOrder:      e.BroadOrder,
			Source:          model.PerformanceSourceUpstream,
		}
		r.Ctr, r.Roas, r.Acos = deriveRatios(e.Impression, e.Clicks, e.Expense, e.BroadGmv)
		records = append(records, r)
	}
	return records, nil
}

// computeFromCampaigns 兜底路径：把本地活动行按日期（小时）分组求和
func (s *PerformanceService) computeFromCampaigns(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]model.ShopPerformance, error) {
	sums, err := s.campaignRepo.SumPerformance(ctx, shopID, start, end, hourly)
	if err != nil {
		return nil, err
	}

	records := make([]model.ShopPerformance, 0, len(sums))
	for _, sum := range sums {
		r := model.ShopPerformance{
			ShopID:          shopID,
			PerformanceDate: sum.PerformanceDate,
			Hour:            sum.Hour,
			Impression:      sum.Impression,
			Clicks:          sum.Clicks,
			Expense:         sum.Expense,
			BroadGmv:        sum.BroadGmv,
			BroadOrder:      sum.BroadOrder,
			Source:          model.PerformanceSourceComputed,
		}
		r.Ctr, r.Roas, r.Acos = deriveRatios(sum.Impression, sum.Clicks, sum.Expense, sum.BroadGmv)
		records = append(records, r)
	}
	return records, nil
}

// ListRange 本地店铺表现查询
func (s *PerformanceService) ListRange(ctx context.Context, shopID int64, start, end time.Time, hourly bool) ([]model.ShopPerformance, error) {
	return s.perfRepo.ListRange(ctx, shopID, start, end, hourly)
}
