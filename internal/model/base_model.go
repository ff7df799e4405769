package model

import (
	"time"
)

// BaseModel 公共字段
// 同步表走“全量替换”语义时需要物理删除，这里不带软删除字段
type BaseModel struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
