package shopee

// RetryPolicy 显式重试策略
// 把“遇到鉴权失败刷一次 Token 再试”从调用点里抽出来，策略本身可独立测试
type RetryPolicy struct {
	// MaxRetries 最多重试次数（不含首次请求）
	MaxRetries int
	// Matches 判断响应是否命中可重试条件
	Matches func(resp *CommonResp) bool
}

// ShouldRetry attempt 从 0 开始计数（0 = 首次请求）
func (p RetryPolicy) ShouldRetry(attempt int, resp *CommonResp) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	return p.Matches != nil && p.Matches(resp)
}

// AuthRetryPolicy 鉴权失败刷新重试策略：最多重试一次
// 刷新后仍失败则视为终态错误，防止坏凭证导致死循环
func AuthRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 1,
		Matches: func(resp *CommonResp) bool {
			return resp.IsAuthError()
		},
	}
}
