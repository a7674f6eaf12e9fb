package service

import (
	"strings"
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/shopspring/decimal"
)

// VoucherAdminService 优惠码管理服务
type VoucherAdminService struct {
	repo repository.VoucherRepository
}

// NewVoucherAdminService 创建优惠码管理服务
func NewVoucherAdminService(repo repository.VoucherRepository) *VoucherAdminService {
	return &VoucherAdminService{repo: repo}
}

// VoucherInput 创建/更新优惠码输入
type VoucherInput struct {
	Code       string
	Type       string
	Value      models.Money
	UsageLimit int
	StartDate  *time.Time
	EndDate    *time.Time
	IsActive   *bool
}

func validateVoucherInput(input *VoucherInput) error {
	input.Code = strings.TrimSpace(input.Code)
	if input.Code == "" {
		return ErrVoucherInvalid
	}
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	if input.Type != constants.VoucherTypeFixed && input.Type != constants.VoucherTypePercentage {
		return ErrVoucherInvalid
	}
	if input.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrVoucherValueInvalid
	}
	if input.Type == constants.VoucherTypePercentage && input.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return ErrVoucherValueInvalid
	}
	if input.UsageLimit < 0 {
		return ErrVoucherValueInvalid
	}
	// 有效期窗口要么都填要么都不填
	if (input.StartDate == nil) != (input.EndDate == nil) {
		return ErrVoucherWindow
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return ErrVoucherWindow
	}
	return nil
}

// Create 创建优惠码
func (s *VoucherAdminService) Create(input VoucherInput) (*models.Voucher, error) {
	if err := validateVoucherInput(&input); err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(input.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrVoucherCodeExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	voucher := &models.Voucher{
		Code:       input.Code,
		Type:       input.Type,
		Value:      input.Value,
		UsageLimit: input.UsageLimit,
		UsedCount:  0,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		IsActive:   isActive,
	}

	if err := s.repo.Create(voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Update 更新优惠码
func (s *VoucherAdminService) Update(id uint, input VoucherInput) (*models.Voucher, error) {
	if id == 0 {
		return nil, ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if err := validateVoucherInput(&input); err != nil {
		return nil, err
	}

	if input.Code != existing.Code {
		dup, err := s.repo.GetByCode(input.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrVoucherCodeExists
		}
	}

	isActive := existing.IsActive
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	existing.Code = input.Code
	existing.Type = input.Type
	existing.Value = input.Value
	existing.UsageLimit = input.UsageLimit
	existing.StartDate = input.StartDate
	existing.EndDate = input.EndDate
	existing.IsActive = isActive

	if err := s.repo.Update(existing); err != nil {
		return nil, ErrVoucherUpdateFailed
	}
	return existing, nil
}

// Delete 删除优惠码
func (s *VoucherAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return ErrVoucherDeleteFailed
	}
	return nil
}

// Get 获取优惠码
func (s *VoucherAdminService) Get(id uint) (*models.Voucher, error) {
	voucher, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrNotFound
	}
	return voucher, nil
}

// List 获取优惠码列表
func (s *VoucherAdminService) List(filter repository.VoucherListFilter) ([]models.Voucher, int64, error) {
	return s.repo.List(filter)
}
