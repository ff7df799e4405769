package shopee

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Shopee 开放平台签名规则：
// base string = partner_id + api path + timestamp [+ access_token] [+ shop_id]
// sign = HMAC-SHA256(partner_key, base string) 的十六进制小写
//
// 店铺级接口带 access_token 和 shop_id；
// 换取/刷新 Token 的公共接口只签 partner_id + path + timestamp。

// ErrEmptyPartnerKey partner_key 为空时无法签名
var ErrEmptyPartnerKey = errors.New("shopee: partner_key is empty")

// Sign 计算请求签名
// accessToken / shopID 传零值表示公共接口（不参与签名）
func Sign(partnerKey string, partnerID int64, path string, timestamp int64, accessToken string, shopID int64) (string, error) {
	if partnerKey == "" {
		return "", ErrEmptyPartnerKey
	}

	base := strconv.FormatInt(partnerID, 10) + path + strconv.FormatInt(timestamp, 10)
	if accessToken != "" {
		base += accessToken
	}
	if shopID > 0 {
		base += strconv.FormatInt(shopID, 10)
	}

	h := hmac.New(sha256.New, []byte(partnerKey))
	h.Write([]byte(base))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SignedQuery 构建带公共参数的查询串
// 公共参数：partner_id, timestamp, sign [+ access_token, shop_id]
// extra 中的业务参数会一并合入
func SignedQuery(partnerKey string, partnerID int64, path string, timestamp int64, accessToken string, shopID int64, extra url.Values) (url.Values, error) {
	sign, err := Sign(partnerKey, partnerID, path, timestamp, accessToken, shopID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("partner_id", strconv.FormatInt(partnerID, 10))
	q.Set("timestamp", strconv.FormatInt(timestamp, 10))
	q.Set("sign", sign)
	if accessToken != "" {
		q.Set("access_token", accessToken)
	}
	if shopID > 0 {
		q.Set("shop_id", strconv.FormatInt(shopID, 10))
	}
	return q, nil
}

// FormatDate Shopee 报表类接口使用 DD-MM-YYYY 格式日期
func FormatDate(year int, month int, day int) string {
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
}
