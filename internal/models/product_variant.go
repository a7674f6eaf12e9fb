package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant 商品规格表（售卖单元：价格+库存维度）
type ProductVariant struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	ProductID       uint           `gorm:"not null;index" json:"product_id"`                             // 商品ID
	SKU             string         `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"`  // SKU编码（全局唯一）
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`                       // 规格名称（如尺码/颜色）
	OriginalPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`  // 原价
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`                   // 折扣百分比（0-100）
	StockQuantity   int            `gorm:"not null;default:0" json:"stock_quantity"`                     // 库存数量（不允许为负）
	IsPreorder      bool           `gorm:"not null;default:false" json:"is_preorder"`                    // 是否预售
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                            // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// UnitPrice 计算折后单价：originalPrice × (100 − discountPercent) / 100
func (v *ProductVariant) UnitPrice() Money {
	if v.DiscountPercent <= 0 {
		return NewMoneyFromDecimal(v.OriginalPrice.Decimal)
	}
	factor := decimal.NewFromInt(int64(100 - v.DiscountPercent)).Div(decimal.NewFromInt(100))
	return NewMoneyFromDecimal(v.OriginalPrice.Decimal.Mul(factor))
}
