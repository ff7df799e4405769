package shopee

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CommonResp Shopee 开放平台统一响应包
// 所有接口都是这个外壳，业务数据在 response 字段里按需解包
type CommonResp struct {
	RequestID string          `json:"request_id"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Response  json.RawMessage `json:"response"`
}

// 鉴权失败的错误码（平台历史上两种写法都出现过，必须同时匹配）
const (
	ErrorCodeAuth         = "error_auth"
	ErrorCodeInvalidToken = "error_invalid_access_token"
)

// IsOK 业务层是否成功
func (r *CommonResp) IsOK() bool {
	return r != nil && r.Error == ""
}

// IsAuthError 判断是否为鉴权失败
// 错误码和消息文本两种形态都要识别
func (r *CommonResp) IsAuthError() bool {
	if r == nil {
		return false
	}
	if r.Error == ErrorCodeAuth || r.Error == ErrorCodeInvalidToken {
		return true
	}
	msg := strings.ToLower(r.Message)
	return strings.Contains(msg, "invalid access_token") ||
		strings.Contains(msg, "access token expired")
}

// Err 转为 Go error（成功时返回 nil）
func (r *CommonResp) Err() error {
	if r.IsOK() {
		return nil
	}
	return fmt.Errorf("shopee api error [%s]: %s", r.Error, r.Message)
}

// Decode 解包 response 字段
func (r *CommonResp) Decode(v interface{}) error {
	if len(r.Response) == 0 {
		return fmt.Errorf("empty response body (request_id: %s)", r.RequestID)
	}
	return json.Unmarshal(r.Response, v)
}

// ==================== Token 响应 ====================

// TokenResp 换取/刷新 Token 的响应体
type TokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int    `json:"expire_in"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
}
