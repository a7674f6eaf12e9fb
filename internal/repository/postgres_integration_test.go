//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stagefront/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.ProductVariant{},
		&models.Product{},
		&models.Voucher{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Voucher{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// TestPostgresConcurrentStockDecrement 并发扣减下数据库层必须保证不超卖。
func TestPostgresConcurrentStockDecrement(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	variant := models.ProductVariant{
		ProductID:     1,
		SKU:           "PG-CONC-1",
		Name:          "Concurrent",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(50000)),
		StockQuantity: 10,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant failed: %v", err)
	}

	repo := NewProductVariantRepository(db)

	const workers = 8
	const quantity = 3

	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.DecrementStock(variant.ID, quantity)
			if err != nil {
				t.Errorf("decrement failed: %v", err)
				return
			}
			results <- affected
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int64
	for affected := range results {
		succeeded += affected
	}
	// 库存 10、每次扣 3，最多成功 3 次
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 successful decrements, got %d", succeeded)
	}

	var got models.ProductVariant
	if err := db.First(&got, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if got.StockQuantity != 1 {
		t.Fatalf("expected stock 1, got %d", got.StockQuantity)
	}
}

// TestPostgresConcurrentVoucherConsume 并发消费下使用次数不得超过上限。
func TestPostgresConcurrentVoucherConsume(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	voucher := models.Voucher{
		Code:       "PG-CAP-1",
		Type:       "fixed",
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(20000)),
		UsageLimit: 5,
		UsedCount:  4,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	repo := NewVoucherRepository(db)

	const workers = 6
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.ConsumeUsage(voucher.ID)
			if err != nil {
				t.Errorf("consume failed: %v", err)
				return
			}
			results <- affected
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int64
	for affected := range results {
		succeeded += affected
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful consume, got %d", succeeded)
	}

	var got models.Voucher
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if got.UsedCount != 5 {
		t.Fatalf("expected used_count 5, got %d", got.UsedCount)
	}
}
