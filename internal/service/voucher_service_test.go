package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupVoucherTestService(t *testing.T, name string) (*gorm.DB, *VoucherService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db, NewVoucherService(repository.NewVoucherRepository(db))
}

func money(amount int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(amount))
}

func TestResolveRejectsMissingOrInactiveCode(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_resolve_invalid")

	if _, _, err := svc.Resolve(money(100000), ""); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for empty code, got %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "NOPE"); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for unknown code, got %v", err)
	}

	inactive := models.Voucher{
		Code:     "PAUSED",
		Type:     constants.VoucherTypeFixed,
		Value:    money(10000),
		IsActive: false,
	}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "PAUSED"); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for inactive code, got %v", err)
	}
}

func TestCreateDeactivatedVoucherPersistsInactive(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_create_inactive")
	admin := NewVoucherAdminService(repository.NewVoucherRepository(db))

	inactive := false
	created, err := admin.Create(VoucherInput{
		Code:     "PAUSED50",
		Type:     constants.VoucherTypeFixed,
		Value:    money(50000),
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	// 重新读库校验停用状态落盘，而非仅存在于内存对象
	var stored models.Voucher
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if stored.IsActive {
		t.Fatal("expected deactivated voucher to be stored inactive")
	}

	if _, _, err := svc.Resolve(money(100000), "PAUSED50"); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for deactivated code, got %v", err)
	}
}

func TestResolveEnforcesValidityWindow(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_resolve_window")

	past := time.Now().Add(-48 * time.Hour)
	pastEnd := time.Now().Add(-24 * time.Hour)
	expired := models.Voucher{
		Code:      "EXPIRED",
		Type:      constants.VoucherTypeFixed,
		Value:     money(10000),
		StartDate: &past,
		EndDate:   &pastEnd,
		IsActive:  true,
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "EXPIRED"); !errors.Is(err, ErrVoucherNotValidNow) {
		t.Fatalf("expected ErrVoucherNotValidNow for expired code, got %v", err)
	}

	futureStart := time.Now().Add(24 * time.Hour)
	futureEnd := time.Now().Add(48 * time.Hour)
	upcoming := models.Voucher{
		Code:      "SOON",
		Type:      constants.VoucherTypeFixed,
		Value:     money(10000),
		StartDate: &futureStart,
		EndDate:   &futureEnd,
		IsActive:  true,
	}
	if err := db.Create(&upcoming).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "SOON"); !errors.Is(err, ErrVoucherNotValidNow) {
		t.Fatalf("expected ErrVoucherNotValidNow for upcoming code, got %v", err)
	}

	// 只有一端的区间不参与时间校验
	open := models.Voucher{
		Code:      "OPENEND",
		Type:      constants.VoucherTypeFixed,
		Value:     money(10000),
		StartDate: &futureStart,
		IsActive:  true,
	}
	if err := db.Create(&open).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "OPENEND"); err != nil {
		t.Fatalf("expected open-ended window to pass, got %v", err)
	}
}

func TestResolveEnforcesUsageLimit(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_resolve_limit")

	spent := models.Voucher{
		Code:       "SPENT",
		Type:       constants.VoucherTypeFixed,
		Value:      money(10000),
		UsageLimit: 3,
		UsedCount:  3,
		IsActive:   true,
	}
	if err := db.Create(&spent).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "SPENT"); !errors.Is(err, ErrVoucherUsageLimit) {
		t.Fatalf("expected ErrVoucherUsageLimit, got %v", err)
	}

	unlimited := models.Voucher{
		Code:      "FOREVER",
		Type:      constants.VoucherTypeFixed,
		Value:     money(10000),
		UsedCount: 9000,
		IsActive:  true,
	}
	if err := db.Create(&unlimited).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "FOREVER"); err != nil {
		t.Fatalf("expected unlimited voucher to pass, got %v", err)
	}
}

func TestResolveCalculatesDiscount(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_resolve_discount")

	fixed := models.Voucher{
		Code:     "OFF25K",
		Type:     constants.VoucherTypeFixed,
		Value:    money(25000),
		IsActive: true,
	}
	percentage := models.Voucher{
		Code:     "SALE10",
		Type:     constants.VoucherTypePercentage,
		Value:    money(10),
		IsActive: true,
	}
	for _, v := range []*models.Voucher{&fixed, &percentage} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed voucher failed: %v", err)
		}
	}

	discount, voucher, err := svc.Resolve(money(400000), "SALE10")
	if err != nil {
		t.Fatalf("resolve percentage failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("expected percentage discount 40000, got %s", discount.Decimal)
	}
	if voucher == nil || voucher.Code != "SALE10" {
		t.Fatalf("expected resolved voucher SALE10, got %+v", voucher)
	}

	discount, _, err = svc.Resolve(money(100000), "OFF25K")
	if err != nil {
		t.Fatalf("resolve fixed failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("expected fixed discount 25000, got %s", discount.Decimal)
	}

	// 固定面额超过小计时钳制到小计
	discount, _, err = svc.Resolve(money(20000), "OFF25K")
	if err != nil {
		t.Fatalf("resolve clamped fixed failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected discount clamped to 20000, got %s", discount.Decimal)
	}
}

func TestResolveRejectsMalformedVoucher(t *testing.T) {
	db, svc := setupVoucherTestService(t, "voucher_resolve_malformed")

	zeroValue := models.Voucher{
		Code:     "ZERO",
		Type:     constants.VoucherTypeFixed,
		Value:    money(0),
		IsActive: true,
	}
	badType := models.Voucher{
		Code:     "WEIRD",
		Type:     "bogo",
		Value:    money(10),
		IsActive: true,
	}
	for _, v := range []*models.Voucher{&zeroValue, &badType} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed voucher failed: %v", err)
		}
	}

	if _, _, err := svc.Resolve(money(100000), "ZERO"); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for zero value, got %v", err)
	}
	if _, _, err := svc.Resolve(money(100000), "WEIRD"); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for unknown type, got %v", err)
	}
}
