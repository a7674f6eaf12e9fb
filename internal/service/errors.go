package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrProfileEmpty       = errors.New("nothing to update")
)

// 目录错误
var (
	ErrProductNotAvailable = errors.New("product not available")
	ErrVariantNotFound     = errors.New("variant not found")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrSlugExists          = errors.New("slug already exists")
	ErrSKUExists           = errors.New("sku already exists")
	ErrProductInvalid      = errors.New("product invalid")
)

// 订单错误
var (
	ErrInvalidOrderItem       = errors.New("invalid order item")
	ErrBuyerContactRequired   = errors.New("buyer contact required")
	ErrShippingAddressMissing = errors.New("shipping address required")
	ErrPaymentMethodInvalid   = errors.New("payment method invalid")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderCreateFailed      = errors.New("order create failed")
	ErrOrderFetchFailed       = errors.New("order fetch failed")
	ErrOrderUpdateFailed      = errors.New("order update failed")
	ErrOrderCancelNotAllowed  = errors.New("only pending orders can be cancelled")
	ErrOrderStatusInvalid     = errors.New("order status transition not allowed")
	ErrOrderStatusUnchanged   = errors.New("order already in that status")
)

// 库存错误：校验期不足与提交期冲突分开，便于调用方决定是否重试
var (
	ErrStockInsufficient = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock changed, please retry")
)

// 优惠码错误
var (
	ErrVoucherInvalid      = errors.New("invalid voucher code")
	ErrVoucherNotValidNow  = errors.New("voucher not valid at this time")
	ErrVoucherUsageLimit   = errors.New("voucher usage limit reached")
	ErrVoucherConflict     = errors.New("voucher consumed, please retry")
	ErrVoucherWindow       = errors.New("voucher window requires both start and end")
	ErrVoucherValueInvalid = errors.New("voucher value invalid")
	ErrVoucherCodeExists   = errors.New("voucher code already exists")
	ErrVoucherUpdateFailed = errors.New("voucher update failed")
	ErrVoucherDeleteFailed = errors.New("voucher delete failed")
)
