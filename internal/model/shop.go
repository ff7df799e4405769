package model

import (
	"time"
)

// Shop 店铺状态常量
const (
	ShopStatusPending  = 0 // 待授权
	ShopStatusActive   = 1 // 正常
	ShopStatusInactive = 2 // 已停用
)

// Token 状态常量
const (
	TokenStatusValid   = "valid"        // 有效
	TokenStatusExpired = "expired"      // 已过期
	TokenStatusInvalid = "auth_invalid" // 需重新授权
)

// Shop 店铺凭证与基础信息
// partner_id / partner_key 授权后不可单独改动；重新授权时整行覆盖
// access_token / refresh_token 永远成对更新（见 ShopRepository.UpdateToken）
type Shop struct {
	BaseModel

	// 核心身份
	ShopID   int64  `gorm:"uniqueIndex" json:"shop_id"` // Shopee 平台的 shop_id
	ShopName string `gorm:"size:100" json:"shop_name"`
	Region   string `gorm:"size:20;not null;default:'ID'" json:"region"`

	// 合作方凭证（Partner credential）
	PartnerID  int64  `gorm:"not null" json:"partner_id"`
	PartnerKey string `gorm:"size:255;not null" json:"-"`

	// OAuth Token 对
	AccessToken    string    `gorm:"size:512" json:"-"`
	RefreshToken   string    `gorm:"size:512" json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	TokenStatus    string    `gorm:"index;size:20;default:'auth_invalid'" json:"token_status"`

	// 店铺状态
	Status int `gorm:"default:0;comment:状态 0-待授权 1-正常 2-已停用" json:"status"`
}

func (Shop) TableName() string {
	return "shops"
}

// HasCredential 凭证是否完整可用于出站调用
func (s *Shop) HasCredential() bool {
	return s.PartnerID > 0 && s.PartnerKey != "" && s.AccessToken != "" && s.RefreshToken != ""
}
