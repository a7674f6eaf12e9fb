package service

import (
	"strings"
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/shopspring/decimal"
)

// VoucherService 优惠码服务：只校验与计算，不消耗使用次数。
// 使用次数的累加发生在下单事务内（见 OrderService.createOrder）。
type VoucherService struct {
	voucherRepo repository.VoucherRepository
}

// NewVoucherService 创建优惠码服务
func NewVoucherService(voucherRepo repository.VoucherRepository) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo}
}

// Resolve 校验优惠码并计算折扣金额
func (s *VoucherService) Resolve(subtotal models.Money, code string) (models.Money, *models.Voucher, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.Money{}, nil, ErrVoucherInvalid
	}

	voucher, err := s.voucherRepo.GetByCode(trimmed)
	if err != nil {
		return models.Money{}, nil, err
	}
	if voucher == nil || !voucher.IsActive {
		return models.Money{}, nil, ErrVoucherInvalid
	}

	if voucher.StartDate != nil && voucher.EndDate != nil {
		now := time.Now()
		if now.Before(*voucher.StartDate) || now.After(*voucher.EndDate) {
			return models.Money{}, voucher, ErrVoucherNotValidNow
		}
	}

	if voucher.UsageLimit > 0 && voucher.UsedCount >= voucher.UsageLimit {
		return models.Money{}, voucher, ErrVoucherUsageLimit
	}

	discount, err := s.calculateDiscount(voucher, subtotal)
	if err != nil {
		return models.Money{}, voucher, err
	}

	// 折扣不超过商品小计，优惠码本身不会把订单扣成负数
	if discount.Decimal.GreaterThan(subtotal.Decimal) {
		discount = models.NewMoneyFromDecimal(subtotal.Decimal)
	}

	return discount, voucher, nil
}

func (s *VoucherService) calculateDiscount(voucher *models.Voucher, subtotal models.Money) (models.Money, error) {
	switch strings.ToLower(strings.TrimSpace(voucher.Type)) {
	case constants.VoucherTypeFixed:
		if voucher.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrVoucherInvalid
		}
		return models.NewMoneyFromDecimal(voucher.Value.Decimal), nil
	case constants.VoucherTypePercentage:
		if voucher.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrVoucherInvalid
		}
		percent := voucher.Value.Decimal.Div(decimal.NewFromInt(100))
		discount := subtotal.Decimal.Mul(percent)
		return models.NewMoneyFromDecimal(discount), nil
	default:
		return models.Money{}, ErrVoucherInvalid
	}
}
