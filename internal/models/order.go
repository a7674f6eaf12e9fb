package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id,omitempty"`                       // 用户ID（游客订单为 0）
	FullName        string         `gorm:"type:varchar(200);not null" json:"full_name"`                   // 收件人姓名（下单时快照）
	Email           string         `gorm:"index;not null" json:"email"`                                   // 联系邮箱（下单时快照）
	Phone           string         `gorm:"type:varchar(32)" json:"phone"`                                 // 联系电话（下单时快照）
	ShippingAddress string         `gorm:"type:text;not null" json:"shipping_address"`                    // 收件地址
	PaymentMethod   string         `gorm:"type:varchar(32);not null" json:"payment_method"`               // 支付方式（cod/bank_transfer）
	Note            string         `gorm:"type:text" json:"note,omitempty"`                               // 买家备注
	Status          string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	Currency        string         `gorm:"not null" json:"currency"`                                      // 币种
	Subtotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 商品小计
	ShippingFee     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`     // 运费（固定）
	DiscountAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 优惠金额
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 实付金额
	VoucherID       *uint          `gorm:"index" json:"voucher_id,omitempty"`                             // 优惠码ID
	VoucherCode     string         `gorm:"type:varchar(64)" json:"voucher_code,omitempty"`                // 优惠码（下单时快照）
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                   // 下单客户端IP
	CanceledAt      *time.Time     `gorm:"index" json:"canceled_at"`                                      // 取消时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
