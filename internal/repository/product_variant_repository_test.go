package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stagefront/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupVariantTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}, &models.Voucher{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestDecrementStockGuardsAgainstOversell(t *testing.T) {
	db := setupVariantTestDB(t, "variant_decrement")

	variant := models.ProductVariant{
		ProductID:     1,
		SKU:           "TEE-BLK-M",
		Name:          "Black / M",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		StockQuantity: 5,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant failed: %v", err)
	}

	repo := NewProductVariantRepository(db)

	affected, err := repo.DecrementStock(variant.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	// 剩余 2，扣 3 必须失败且库存不变
	affected, err = repo.DecrementStock(variant.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows, got %d", affected)
	}

	var got models.ProductVariant
	if err := db.First(&got, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if got.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", got.StockQuantity)
	}

	affected, err = repo.DecrementStock(variant.ID, 2)
	if err != nil || affected != 1 {
		t.Fatalf("expected final decrement to succeed, affected=%d err=%v", affected, err)
	}
	if err := db.First(&got, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if got.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", got.StockQuantity)
	}
}

func TestDecrementStockRejectsInvalidParams(t *testing.T) {
	db := setupVariantTestDB(t, "variant_decrement_invalid")
	repo := NewProductVariantRepository(db)

	if _, err := repo.DecrementStock(0, 1); err == nil {
		t.Fatal("expected error for zero variant id")
	}
	if _, err := repo.DecrementStock(1, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := repo.DecrementStock(1, -2); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	db := setupVariantTestDB(t, "variant_adjust")

	variant := models.ProductVariant{
		ProductID:     1,
		SKU:           "TEE-BLK-L",
		Name:          "Black / L",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		StockQuantity: 4,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant failed: %v", err)
	}

	repo := NewProductVariantRepository(db)

	affected, err := repo.AdjustStock(variant.ID, -6)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected negative adjust past zero to be rejected, affected=%d", affected)
	}

	affected, err = repo.AdjustStock(variant.ID, 10)
	if err != nil || affected != 1 {
		t.Fatalf("expected positive adjust to succeed, affected=%d err=%v", affected, err)
	}

	var got models.ProductVariant
	if err := db.First(&got, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if got.StockQuantity != 14 {
		t.Fatalf("expected stock 14, got %d", got.StockQuantity)
	}
}

func TestConsumeUsageRespectsLimit(t *testing.T) {
	db := setupVariantTestDB(t, "voucher_consume")

	voucher := models.Voucher{
		Code:       "LIMITED2",
		Type:       "fixed",
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10000)),
		UsageLimit: 2,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	repo := NewVoucherRepository(db)

	for i := 0; i < 2; i++ {
		affected, err := repo.ConsumeUsage(voucher.ID)
		if err != nil {
			t.Fatalf("consume %d failed: %v", i, err)
		}
		if affected != 1 {
			t.Fatalf("consume %d: expected 1 affected row, got %d", i, affected)
		}
	}

	affected, err := repo.ConsumeUsage(voucher.ID)
	if err != nil {
		t.Fatalf("consume past limit failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected consume past limit to be rejected, affected=%d", affected)
	}

	var got models.Voucher
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if got.UsedCount != 2 {
		t.Fatalf("expected used_count 2, got %d", got.UsedCount)
	}
}

func TestConsumeUsageUnlimitedWhenNoCap(t *testing.T) {
	db := setupVariantTestDB(t, "voucher_consume_uncapped")

	voucher := models.Voucher{
		Code:     "FOREVER",
		Type:     "percentage",
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive: true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	repo := NewVoucherRepository(db)
	for i := 0; i < 5; i++ {
		affected, err := repo.ConsumeUsage(voucher.ID)
		if err != nil || affected != 1 {
			t.Fatalf("consume %d: affected=%d err=%v", i, affected, err)
		}
	}

	var got models.Voucher
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if got.UsedCount != 5 {
		t.Fatalf("expected used_count 5, got %d", got.UsedCount)
	}
}
