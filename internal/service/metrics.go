package service

// deriveRatios 根据原始指标重算派生指标
// 分母为零时对应指标取 0：
//
//	ctr  = clicks / impression * 100（百分比）
//	roas = broad_gmv / expense
//	acos = expense / broad_gmv
func deriveRatios(impression, clicks int64, expense, broadGmv float64) (ctr, roas, acos float64) {
	if impression > 0 {
		ctr = float64(clicks) / float64(impression) * 100
	}
	if expense > 0 {
		roas = broadGmv / expense
	}
	if broadGmv > 0 {
		acos = expense / broadGmv
	}
	return ctr, roas, acos
}
