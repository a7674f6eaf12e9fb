package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	variantRepo    repository.ProductVariantRepository
	voucherRepo    repository.VoucherRepository
	voucherService *VoucherService
	shippingFee    models.Money
	currency       string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, variantRepo repository.ProductVariantRepository, voucherRepo repository.VoucherRepository, voucherService *VoucherService, shippingFee models.Money, currency string) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		variantRepo:    variantRepo,
		voucherRepo:    voucherRepo,
		voucherService: voucherService,
		shippingFee:    shippingFee,
		currency:       currency,
	}
}

// CreateOrderInput 创建订单输入（UserID 为 0 表示游客下单）
type CreateOrderInput struct {
	UserID          uint
	Items           []CreateOrderItem
	VoucherCode     string
	FullName        string
	Email           string
	Phone           string
	ShippingAddress string
	PaymentMethod   string
	Note            string
	ClientIP        string
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	VariantID uint
	Quantity  int
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	Currency       string             `json:"currency"`
	Subtotal       models.Money       `json:"subtotal"`
	ShippingFee    models.Money       `json:"shipping_fee"`
	DiscountAmount models.Money       `json:"discount_amount"`
	TotalAmount    models.Money       `json:"total_amount"`
	VoucherCode    string             `json:"voucher_code,omitempty"`
	Items          []OrderPreviewItem `json:"items"`
}

// OrderPreviewItem 订单项金额预览
type OrderPreviewItem struct {
	ProductID       uint         `json:"product_id"`
	VariantID       uint         `json:"variant_id"`
	ProductName     string       `json:"product_name"`
	VariantName     string       `json:"variant_name"`
	SKU             string       `json:"sku"`
	OriginalPrice   models.Money `json:"original_price"`
	DiscountPercent int          `json:"discount_percent"`
	UnitPrice       models.Money `json:"unit_price"`
	Quantity        int          `json:"quantity"`
	TotalPrice      models.Money `json:"total_price"`
}

type orderBuildResult struct {
	OrderItems     []models.OrderItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	AppliedVoucher *models.Voucher
}

// 管理端状态机：仅允许向前推进；取消只对待处理订单开放
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

var registeredStatuses = map[string]bool{
	constants.OrderStatusPending:    true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCancelled:  true,
}

// PreviewOrder 订单金额预览：只读目录与优惠码，不触碰库存与使用次数
func (s *OrderService) PreviewOrder(input CreateOrderInput) (*OrderPreview, error) {
	result, err := s.buildOrderResult(input)
	if err != nil {
		return nil, err
	}
	items := make([]OrderPreviewItem, 0, len(result.OrderItems))
	for _, item := range result.OrderItems {
		items = append(items, OrderPreviewItem{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			ProductName:     item.ProductName,
			VariantName:     item.VariantName,
			SKU:             item.SKU,
			OriginalPrice:   item.OriginalPrice,
			DiscountPercent: item.DiscountPercent,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			TotalPrice:      item.TotalPrice,
		})
	}
	preview := &OrderPreview{
		Currency:       s.currency,
		Subtotal:       models.NewMoneyFromDecimal(result.Subtotal),
		ShippingFee:    s.shippingFee,
		DiscountAmount: models.NewMoneyFromDecimal(result.DiscountAmount),
		TotalAmount:    models.NewMoneyFromDecimal(result.TotalAmount),
		Items:          items,
	}
	if result.AppliedVoucher != nil {
		preview.VoucherCode = result.AppliedVoucher.Code
	}
	return preview, nil
}

// CreateOrder 创建订单：库存扣减、优惠码消耗与订单落库在同一事务内完成
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if err := validateBuyerContact(&input); err != nil {
		return nil, err
	}

	result, err := s.buildOrderResult(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:         generateOrderNo(),
		UserID:          input.UserID,
		FullName:        strings.TrimSpace(input.FullName),
		Email:           input.Email,
		Phone:           strings.TrimSpace(input.Phone),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		PaymentMethod:   input.PaymentMethod,
		Note:            strings.TrimSpace(input.Note),
		Status:          constants.OrderStatusPending,
		Currency:        s.currency,
		Subtotal:        models.NewMoneyFromDecimal(result.Subtotal),
		ShippingFee:     s.shippingFee,
		DiscountAmount:  models.NewMoneyFromDecimal(result.DiscountAmount),
		TotalAmount:     models.NewMoneyFromDecimal(result.TotalAmount),
		ClientIP:        strings.TrimSpace(input.ClientIP),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if result.AppliedVoucher != nil {
		order.VoucherID = &result.AppliedVoucher.ID
		order.VoucherCode = result.AppliedVoucher.Code
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		if err := orderRepo.Create(order, result.OrderItems); err != nil {
			return err
		}

		for _, item := range result.OrderItems {
			affected, err := variantRepo.DecrementStock(item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				// 校验时库存尚足，提交时已被并发订单抢占
				return fmt.Errorf("%w: variant %d", ErrStockConflict, item.VariantID)
			}
		}

		if result.AppliedVoucher != nil {
			voucherRepo := s.voucherRepo.WithTx(tx)
			affected, err := voucherRepo.ConsumeUsage(result.AppliedVoucher.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrVoucherConflict
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStockConflict) {
			return nil, err
		}
		if errors.Is(err, ErrVoucherConflict) {
			return nil, ErrVoucherConflict
		}
		return nil, ErrOrderCreateFailed
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// buildOrderResult 读取目录快照并完成定价与优惠码计算（无任何写入）
func (s *OrderService) buildOrderResult(input CreateOrderInput) (*orderBuildResult, error) {
	mergedItems, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(mergedItems) == 0 {
		return nil, ErrInvalidOrderItem
	}

	ids := make([]uint, 0, len(mergedItems))
	for _, item := range mergedItems {
		ids = append(ids, item.VariantID)
	}
	variants, err := s.variantRepo.ListByIDsWithProduct(ids)
	if err != nil {
		return nil, err
	}
	variantByID := make(map[uint]*models.ProductVariant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	now := time.Now()
	var orderItems []models.OrderItem
	subtotal := decimal.Zero
	for _, item := range mergedItems {
		variant, ok := variantByID[item.VariantID]
		if !ok {
			return nil, fmt.Errorf("%w: variant %d", ErrVariantNotFound, item.VariantID)
		}
		// 孤儿规格视为数据完整性问题，明确报错而非静默跳过
		if variant.Product == nil {
			return nil, fmt.Errorf("%w: variant %d has no parent product", ErrProductNotAvailable, item.VariantID)
		}
		if variant.Product.Status != constants.ProductStatusPublished {
			return nil, fmt.Errorf("%w: variant %d", ErrProductNotAvailable, item.VariantID)
		}
		if variant.DiscountPercent < 0 || variant.DiscountPercent > 100 {
			return nil, ErrProductPriceInvalid
		}
		if variant.StockQuantity < item.Quantity {
			return nil, fmt.Errorf("%w: variant %d", ErrStockInsufficient, item.VariantID)
		}

		unitPrice := variant.UnitPrice()
		total := unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		subtotal = subtotal.Add(total).Round(2)

		orderItems = append(orderItems, models.OrderItem{
			ProductID:       variant.ProductID,
			VariantID:       variant.ID,
			ProductName:     variant.Product.Name,
			VariantName:     variant.Name,
			SKU:             variant.SKU,
			OriginalPrice:   variant.OriginalPrice,
			DiscountPercent: variant.DiscountPercent,
			UnitPrice:       unitPrice,
			Quantity:        item.Quantity,
			TotalPrice:      models.NewMoneyFromDecimal(total),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	discountAmount := decimal.Zero
	var appliedVoucher *models.Voucher
	voucherCode := strings.TrimSpace(input.VoucherCode)
	if voucherCode != "" {
		discount, voucher, err := s.voucherService.Resolve(models.NewMoneyFromDecimal(subtotal), voucherCode)
		if err != nil {
			return nil, err
		}
		discountAmount = discount.Decimal.Round(2)
		appliedVoucher = voucher
	}

	totalAmount := normalizeOrderAmount(subtotal.Add(s.shippingFee.Decimal).Sub(discountAmount))

	return &orderBuildResult{
		OrderItems:     orderItems,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TotalAmount:    totalAmount,
		AppliedVoucher: appliedVoucher,
	}, nil
}

// CancelOrder 用户取消订单：仅限本人的待处理订单，取消不回补库存
func (s *OrderService) CancelOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderCancelNotAllowed
	}

	now := time.Now()
	updates := map[string]interface{}{
		"canceled_at": now,
		"updated_at":  now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusCancelled
	order.CanceledAt = &now
	order.UpdatedAt = now
	return order, nil
}

// UpdateOrderStatus 管理端更新订单状态
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	target := strings.ToLower(strings.TrimSpace(targetStatus))
	if target == "" || !registeredStatuses[target] {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status == target {
		return nil, ErrOrderStatusUnchanged
	}
	if !isTransitionAllowed(order.Status, target) {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if target == constants.OrderStatusCancelled {
		updates["canceled_at"] = now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = target
	order.UpdatedAt = now
	if target == constants.OrderStatusCancelled {
		order.CanceledAt = &now
	}
	return order, nil
}

func validateBuyerContact(input *CreateOrderInput) error {
	if strings.TrimSpace(input.FullName) == "" {
		return ErrBuyerContactRequired
	}
	email, err := normalizeEmailAddress(input.Email)
	if err != nil {
		return err
	}
	input.Email = email
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return ErrShippingAddressMissing
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if method != constants.PaymentMethodCOD && method != constants.PaymentMethodBankTransfer {
		return ErrPaymentMethodInvalid
	}
	input.PaymentMethod = method
	return nil
}

func normalizeEmailAddress(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrBuyerContactRequired
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("SF%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// mergeCreateOrderItems 合并重复规格的下单项
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.VariantID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if idx, ok := indexMap[item.VariantID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.VariantID] = len(merged)
		merged = append(merged, CreateOrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return merged, nil
}

// normalizeOrderAmount 归一化金额精度与下限
func normalizeOrderAmount(amount decimal.Decimal) decimal.Decimal {
	normalized := amount.Round(2)
	if normalized.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return normalized
}
