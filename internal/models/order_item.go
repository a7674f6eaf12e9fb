package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（下单时快照，后续商品改价改名不影响历史订单）
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                                // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                              // 商品ID（仅追溯用）
	VariantID       uint           `gorm:"index;not null" json:"variant_id"`                              // 规格ID（仅追溯用）
	ProductName     string         `gorm:"type:varchar(200);not null" json:"product_name"`                // 商品名称快照
	VariantName     string         `gorm:"type:varchar(200);not null" json:"variant_name"`                // 规格名称快照
	SKU             string         `gorm:"column:sku;type:varchar(64);not null" json:"sku"`               // SKU编码快照
	OriginalPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`   // 原价快照
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`                    // 折扣百分比快照
	UnitPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`       // 折后单价快照
	Quantity        int            `gorm:"not null" json:"quantity"`                                      // 数量
	TotalPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`      // 小计
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
