package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
)

// 商品状态常量
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusDeleted   = "deleted"
)

// 优惠码类型常量
const (
	VoucherTypeFixed      = "fixed"
	VoucherTypePercentage = "percentage"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
