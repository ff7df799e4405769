package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/datatypes"

	"shopee_ops_v1/internal/model"
	"shopee_ops_v1/internal/repository"
	"shopee_ops_v1/pkg/shopee"
)

// 广告接口路径
const (
	pathCampaignIDList      = "/api/v2/ads/get_product_campaign_id_list"
	pathCampaignSettingInfo = "/api/v2/ads/get_product_campaign_setting_info"
	pathCampaignDailyPerf   = "/api/v2/ads/get_product_campaign_daily_performance"
	pathCampaignHourlyPerf  = "/api/v2/ads/get_product_campaign_hourly_performance"
)

// ==================== 响应结构 ====================

type campaignIDListResp struct {
	HasNextPage    bool `json:"has_next_page"`
	CampaignIDList []struct {
		CampaignID int64  `json:"campaign_id"`
		AdType     string `json:"ad_type"`
	} `json:"campaign_id_list"`
}

type campaignSettingResp struct {
	CampaignList []struct {
		CampaignID int64           `json:"campaign_id"`
		AdType     string          `json:"ad_type"`
		CommonInfo json.RawMessage `json:"common_info"`
		ManualInfo json.RawMessage `json:"manual_bidding_info"`
	} `json:"campaign_list"`
}

type campaignCommonInfo struct {
	AdName           string  `json:"ad_name"`
	CampaignStatus   string  `json:"campaign_status"`
	DailyBudget      float64 `json:"campaign_budget"`
	TotalBudget      float64 `json:"total_budget"`
	CampaignDuration struct {
		StartTime int64 `json:"start_time"`
		EndTime   int64 `json:"end_time"`
	} `json:"campaign_duration"`
}

type campaignManualInfo struct {
	EnhancedCPC      bool `json:"enhanced_cpc"`
	SelectedKeywords []struct {
		Keyword string `json:"keyword"`
	} `json:"selected_keywords"`
}

type campaignPerfResp struct {
	CampaignList []struct {
		CampaignID  int64 `json:"campaign_id"`
		MetricsList []struct {
			Date       string  `json:"date"` // DD-MM-YYYY
			Hour       int     `json:"hour"`
			Impression int64   `json:"impression"`
			Clicks     int64   `json:"clicks"`
			Expense    float64 `json:"expense"`
			BroadGmv   float64 `json:"broad_gmv"`
			BroadOrder int64   `json:"broad_order"`
		} `json:"metrics_list"`
	} `json:"campaign_list"`
}

// ==================== CampaignService ====================

// CampaignService 广告活动同步服务
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	client       *PartnerClient
	fetcher      *PageFetcher
	now          func() time.Time
}

// NewCampaignService 创建广告活动服务
func NewCampaignService(campaignRepo repository.CampaignRepository, client *PartnerClient, fetcher *PageFetcher) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		client:       client,
		fetcher:      fetcher,
		now:          time.Now,
	}
}

// ==================== 活动同步 ====================

// SyncCampaigns 同步店铺广告活动
// 活动为累积资源：分页拉 id，分批拉配置，按自然键 upsert，历史活动保留
func (s *CampaignService) SyncCampaigns(ctx context.Context, shopID int64, report ProgressFunc) (int, error) {
	report("fetch", 10)

	var campaignIDs []int64
	adTypes := make(map[int64]string)

	base := url.Values{}
	base.Set("ad_type", "all")
	err := s.fetcher.FetchAllPages(ctx, shopID, pathCampaignIDList, base, "", nil,
		func(resp *shopee.CommonResp) (FetchPage, error) {
			var page campaignIDListResp
			if err := resp.Decode(&page); err != nil {
				return FetchPage{}, err
			}
			for _, row := range page.CampaignIDList {
				campaignIDs = append(campaignIDs, row.CampaignID)
				adTypes[row.CampaignID] = row.AdType
			}
			return FetchPage{HasNext: page.HasNextPage}, nil
		})
	if err != nil {
		return 0, fmt.Errorf("拉取活动列表失败: %w", err)
	}

	report("detail", 45)
	var campaigns []model.Campaign
	base = url.Values{}
	base.Set("info_type_list", "all")
	failed := s.fetcher.FetchDetails(ctx, shopID, pathCampaignSettingInfo, "campaign_id_list", campaignIDs,
		func(resp *shopee.CommonResp) error {
			var detail campaignSettingResp
			if err := resp.Decode(&detail); err != nil {
				return err
			}
			for _, row := range detail.CampaignList {
				c := model.Campaign{
					ShopID:     shopID,
					CampaignID: row.CampaignID,
					AdType:     row.AdType,
					RawPayload: datatypes.JSON(row.CommonInfo),
				}
				if c.AdType == "" {
					c.AdType = adTypes[row.CampaignID]
				}

				var common campaignCommonInfo
				if len(row.CommonInfo) > 0 {
					if err := json.Unmarshal(row.CommonInfo, &common); err == nil {
						c.Name = common.AdName
						c.Status = common.CampaignStatus
						c.DailyBudget = common.DailyBudget
						c.TotalBudget = common.TotalBudget
						if ts := common.CampaignDuration.StartTime; ts > 0 {
							t := time.Unix(ts, 0)
							c.StartDate = &t
						}
						if ts := common.CampaignDuration.EndTime; ts > 0 {
							t := time.Unix(ts, 0)
							c.EndDate = &t
						}
					}
				}

				var manual campaignManualInfo
				if len(row.ManualInfo) > 0 {
					if err := json.Unmarshal(row.ManualInfo, &manual); err == nil {
						for _, kw := range manual.SelectedKeywords {
							c.Keywords = append(c.Keywords, kw.Keyword)
						}
					}
				}

				campaigns = append(campaigns, c)
			}
			return nil
		})
	if failed > 0 {
		log.Printf("[CampaignService] 店铺 %d 有 %d 批活动配置拉取失败，已跳过", shopID, failed)
	}

	report("reconcile", 80)
	written, err := s.campaignRepo.BatchUpsert(ctx, campaigns)
	if err != nil {
		return 0, fmt.Errorf("活动写入失败: %w", err)
	}
	return written, nil
}

// ==================== 活动表现同步 ====================

// SyncPerformance 同步活动级表现数据
// 拉取 [start, end] 的日粒度行与 end 当天的小时粒度行，按自然键 upsert
func (s *CampaignService) SyncPerformance(ctx context.Context, shopID int64, start, end time.Time, report ProgressFunc) (int, error) {
	report("fetch", 10)
	ids, err := s.campaignRepo.ListCampaignIDs(ctx, shopID)
	if err != nil {
		return 0, fmt.Errorf("读取本地活动失败: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	written := 0

	// 日粒度
	report("daily", 30)
	daily, err := s.fetchPerfRows(ctx, shopID, pathCampaignDailyPerf, ids, start, end, false)
	if err != nil {
		return 0, err
	}
	n, err := s.campaignRepo.BatchUpsertPerformance(ctx, daily)
	if err != nil {
		return 0, fmt.Errorf("日粒度表现写入失败: %w", err)
	}
	written += n

	// 小时粒度只拉区间末端当天
	report("hourly", 65)
	hourly, err := s.fetchPerfRows(ctx, shopID, pathCampaignHourlyPerf, ids, end, end, true)
	if err != nil {
		return 0, err
	}
	n, err = s.campaignRepo.BatchUpsertPerformance(ctx, hourly)
	if err != nil {
		return 0, fmt.Errorf("小时粒度表现写入失败: %w", err)
	}
	written += n

	return written, nil
}

// fetchPerfRows 分批拉取表现数据并转成本地行
// 单批失败只记日志跳过，不中断整体同步
func (s *CampaignService) fetchPerfRows(ctx context.Context, shopID int64, path string, ids []int64, start, end time.Time, hourly bool) ([]model.CampaignPerformance, error) {
	base := url.Values{}
	base.Set("start_date", shopee.FormatDate(start.Year(), int(start.Month()), start.Day()))
	base.Set("end_date", shopee.FormatDate(end.Year(), int(end.Month()), end.Day()))

	var rows []model.CampaignPerformance
	failed := s.fetcher.FetchDetailsWith(ctx, shopID, path, "campaign_id_list", ids, base,
		func(resp *shopee.CommonResp) error {
			var perf campaignPerfResp
			if err := resp.Decode(&perf); err != nil {
				return err
			}
			for _, c := range perf.CampaignList {
				for _, m := range c.MetricsList {
					date, err := time.Parse("02-01-2006", m.Date)
					if err != nil {
						continue
					}
					hour := model.HourDaily
					if hourly {
						hour = m.Hour
					}
					row := model.CampaignPerformance{
						ShopID:          shopID,
						CampaignID:      c.CampaignID,
						PerformanceDate: date,
						Hour:            hour,
						Impression:      m.Impression,
						Clicks:          m.Clicks,
						Expense:         m.Expense,
						BroadGmv:        m.BroadGmv,
						BroadOrder:      m.BroadOrder,
					}
					row.Ctr, row.Roas, row.Acos = deriveRatios(m.Impression, m.Clicks, m.Expense, m.BroadGmv)
					rows = append(rows, row)
				}
			}
			return nil
		})
	if failed > 0 {
		log.Printf("[CampaignService] 店铺 %d 有 %d 批表现数据拉取失败，已跳过", shopID, failed)
	}
	return rows, nil
}

// ListCampaigns 本地活动列表
func (s *CampaignService) ListCampaigns(ctx context.Context, filter repository.CampaignFilter) ([]model.Campaign, int64, error) {
	return s.campaignRepo.List(ctx, filter)
}
