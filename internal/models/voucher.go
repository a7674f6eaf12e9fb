package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher 优惠码
type Voucher struct {
	ID         uint           `gorm:"primarykey" json:"id"`                     // 主键
	Code       string         `gorm:"uniqueIndex;not null" json:"code"`         // 优惠码
	Type       string         `gorm:"not null" json:"type"`                     // 类型（fixed/percentage）
	Value      Money          `gorm:"type:decimal(20,2);not null" json:"value"` // 数值（固定金额或百分比）
	UsageLimit int            `gorm:"not null;default:0" json:"usage_limit"`    // 总使用上限（0 表示不限制）
	UsedCount  int            `gorm:"not null;default:0" json:"used_count"`     // 已使用次数
	StartDate  *time.Time     `gorm:"index" json:"start_date"`                  // 生效时间
	EndDate    *time.Time     `gorm:"index" json:"end_date"`                    // 失效时间
	IsActive   bool           `gorm:"not null" json:"is_active"`                // 是否启用（不设列默认值：false 插入时会被 default 覆盖）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}
