package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Voucher{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	prev := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = prev
	})
	return db
}

func newOrderTestService(db *gorm.DB) *OrderService {
	voucherRepo := repository.NewVoucherRepository(db)
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductVariantRepository(db),
		voucherRepo,
		NewVoucherService(voucherRepo),
		models.NewMoneyFromDecimal(decimal.NewFromInt(30000)),
		"VND",
	)
}

func seedPublishedProduct(t *testing.T, db *gorm.DB, variants ...models.ProductVariant) []models.ProductVariant {
	t.Helper()
	product := models.Product{
		Slug:   fmt.Sprintf("tour-tee-%d", time.Now().UnixNano()),
		Name:   "Tour Tee",
		Status: constants.ProductStatusPublished,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	for i := range variants {
		variants[i].ProductID = product.ID
		if err := db.Create(&variants[i]).Error; err != nil {
			t.Fatalf("seed variant failed: %v", err)
		}
	}
	return variants
}

func buyerInput(items ...CreateOrderItem) CreateOrderInput {
	return CreateOrderInput{
		Items:           items,
		FullName:        "Linh Tran",
		Email:           "linh@example.com",
		Phone:           "0901234567",
		ShippingAddress: "12 Ly Thuong Kiet, Hanoi",
		PaymentMethod:   constants.PaymentMethodCOD,
	}
}

func TestPreviewOrderAppliesVariantDiscount(t *testing.T) {
	db := setupOrderTestDB(t, "order_preview_pricing")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:             "TEE-BLK-M",
		Name:            "Black / M",
		OriginalPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		DiscountPercent: 10,
		StockQuantity:   10,
	})
	svc := newOrderTestService(db)

	preview, err := svc.PreviewOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 3}))
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	if len(preview.Items) != 1 {
		t.Fatalf("expected 1 preview item, got %d", len(preview.Items))
	}
	item := preview.Items[0]
	if !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(90000)) {
		t.Fatalf("expected unit price 90000, got %s", item.UnitPrice.Decimal)
	}
	if !item.TotalPrice.Decimal.Equal(decimal.NewFromInt(270000)) {
		t.Fatalf("expected line total 270000, got %s", item.TotalPrice.Decimal)
	}
	if !preview.Subtotal.Decimal.Equal(decimal.NewFromInt(270000)) {
		t.Fatalf("expected subtotal 270000, got %s", preview.Subtotal.Decimal)
	}
	if !preview.TotalAmount.Decimal.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("expected total 300000, got %s", preview.TotalAmount.Decimal)
	}
}

func TestPreviewOrderDoesNotTouchStockOrVoucher(t *testing.T) {
	db := setupOrderTestDB(t, "order_preview_readonly")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "TEE-WHT-L",
		Name:          "White / L",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(200000)),
		StockQuantity: 5,
	})
	voucher := models.Voucher{
		Code:       "SALE10",
		Type:       constants.VoucherTypePercentage,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		UsageLimit: 3,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	svc := newOrderTestService(db)

	input := buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 2})
	input.VoucherCode = "SALE10"
	if _, err := svc.PreviewOrder(input); err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	var variant models.ProductVariant
	if err := db.First(&variant, variants[0].ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if variant.StockQuantity != 5 {
		t.Fatalf("preview must not change stock, got %d", variant.StockQuantity)
	}
	var reloaded models.Voucher
	if err := db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("preview must not consume voucher usage, got %d", reloaded.UsedCount)
	}
}

func TestCreateOrderWithVoucherCommitsAtomically(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_voucher")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "HOODIE-BLK-M",
		Name:          "Black / M",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(200000)),
		StockQuantity: 4,
	})
	voucher := models.Voucher{
		Code:       "SALE10",
		Type:       constants.VoucherTypePercentage,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		UsageLimit: 3,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	svc := newOrderTestService(db)

	input := buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 2})
	input.VoucherCode = "SALE10"
	order, err := svc.CreateOrder(input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if !strings.HasPrefix(order.OrderNo, "SF") {
		t.Fatalf("unexpected order no %q", order.OrderNo)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
	if !order.Subtotal.Decimal.Equal(decimal.NewFromInt(400000)) {
		t.Fatalf("expected subtotal 400000, got %s", order.Subtotal.Decimal)
	}
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("expected discount 40000, got %s", order.DiscountAmount.Decimal)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(390000)) {
		t.Fatalf("expected total 390000, got %s", order.TotalAmount.Decimal)
	}
	if order.VoucherID == nil || *order.VoucherID != voucher.ID || order.VoucherCode != "SALE10" {
		t.Fatalf("expected voucher snapshot on order, got id=%v code=%q", order.VoucherID, order.VoucherCode)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	var variant models.ProductVariant
	if err := db.First(&variant, variants[0].ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if variant.StockQuantity != 2 {
		t.Fatalf("expected stock 2 after commit, got %d", variant.StockQuantity)
	}
	var reloaded models.Voucher
	if err := db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}
}

func TestCreateOrderFixedVoucherNeverGoesNegative(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_floor")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "STICKER-01",
		Name:          "Sticker Pack",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20000)),
		StockQuantity: 10,
	})
	voucher := models.Voucher{
		Code:     "MEGA",
		Type:     constants.VoucherTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(500000)),
		IsActive: true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	svc := newOrderTestService(db)

	input := buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1})
	input.VoucherCode = "MEGA"
	order, err := svc.CreateOrder(input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 折扣被钳制到小计，应付只剩运费
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected discount clamped to 20000, got %s", order.DiscountAmount.Decimal)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected total 30000, got %s", order.TotalAmount.Decimal)
	}
}

func TestCreateOrderMergesDuplicateVariantLines(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_merge")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "CAP-ONE",
		Name:          "One Size",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(150000)),
		StockQuantity: 5,
	})
	svc := newOrderTestService(db)

	order, err := svc.CreateOrder(buyerInput(
		CreateOrderItem{VariantID: variants[0].ID, Quantity: 1},
		CreateOrderItem{VariantID: variants[0].ID, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", order.Items[0].Quantity)
	}

	var variant models.ProductVariant
	if err := db.First(&variant, variants[0].ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if variant.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", variant.StockQuantity)
	}
}

func TestCreateOrderRejectsUnpublishedProduct(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_draft")
	product := models.Product{Slug: "draft-item", Name: "Draft Item", Status: constants.ProductStatusDraft}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	variant := models.ProductVariant{
		ProductID:     product.ID,
		SKU:           "DRAFT-01",
		Name:          "Default",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		StockQuantity: 5,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant failed: %v", err)
	}
	svc := newOrderTestService(db)

	_, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variant.ID, Quantity: 1}))
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable, got %v", err)
	}
}

func TestCreateOrderRejectsInsufficientStockBeforeWriting(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_stock_short")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "POSTER-A2",
		Name:          "A2",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(80000)),
		StockQuantity: 1,
	})
	svc := newOrderTestService(db)

	_, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 2}))
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no order rows, got %d", count)
	}
}

// stockConflictVariantRepo 模拟并发场景：校验通过后条件扣减失败。
type stockConflictVariantRepo struct {
	repository.ProductVariantRepository
}

func (r *stockConflictVariantRepo) DecrementStock(variantID uint, quantity int) (int64, error) {
	return 0, nil
}

func (r *stockConflictVariantRepo) WithTx(tx *gorm.DB) repository.ProductVariantRepository {
	return &stockConflictVariantRepo{ProductVariantRepository: r.ProductVariantRepository.WithTx(tx)}
}

func TestCreateOrderStockConflictRollsBack(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_stock_conflict")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "VINYL-LP",
		Name:          "Vinyl LP",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(350000)),
		StockQuantity: 3,
	})
	voucherRepo := repository.NewVoucherRepository(db)
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		&stockConflictVariantRepo{ProductVariantRepository: repository.NewProductVariantRepository(db)},
		voucherRepo,
		NewVoucherService(voucherRepo),
		models.NewMoneyFromDecimal(decimal.NewFromInt(30000)),
		"VND",
	)

	_, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1}))
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected order rollback, got %d rows", count)
	}
}

// usageConflictVoucherRepo 模拟优惠码并发耗尽：条件累加失败。
type usageConflictVoucherRepo struct {
	repository.VoucherRepository
}

func (r *usageConflictVoucherRepo) ConsumeUsage(id uint) (int64, error) {
	return 0, nil
}

func (r *usageConflictVoucherRepo) WithTx(tx *gorm.DB) repository.VoucherRepository {
	return &usageConflictVoucherRepo{VoucherRepository: r.VoucherRepository.WithTx(tx)}
}

func TestCreateOrderVoucherConflictRollsBack(t *testing.T) {
	db := setupOrderTestDB(t, "order_create_voucher_conflict")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "TOTE-01",
		Name:          "Tote Bag",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(120000)),
		StockQuantity: 5,
	})
	voucher := models.Voucher{
		Code:       "LAST1",
		Type:       constants.VoucherTypeFixed,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10000)),
		UsageLimit: 1,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
	conflictRepo := &usageConflictVoucherRepo{VoucherRepository: repository.NewVoucherRepository(db)}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductVariantRepository(db),
		conflictRepo,
		NewVoucherService(conflictRepo),
		models.NewMoneyFromDecimal(decimal.NewFromInt(30000)),
		"VND",
	)

	input := buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1})
	input.VoucherCode = "LAST1"
	_, err := svc.CreateOrder(input)
	if !errors.Is(err, ErrVoucherConflict) {
		t.Fatalf("expected ErrVoucherConflict, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected order rollback, got %d rows", count)
	}
	var variant models.ProductVariant
	if err := db.First(&variant, variants[0].ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if variant.StockQuantity != 5 {
		t.Fatalf("expected stock restored to 5, got %d", variant.StockQuantity)
	}
}

func TestCreateOrderSnapshotSurvivesCatalogEdits(t *testing.T) {
	db := setupOrderTestDB(t, "order_snapshot")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:             "TEE-RED-S",
		Name:            "Red / S",
		OriginalPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		DiscountPercent: 20,
		StockQuantity:   5,
	})
	svc := newOrderTestService(db)

	order, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 事后改价改名不应影响历史订单快照
	if err := db.Model(&models.ProductVariant{}).Where("id = ?", variants[0].ID).Updates(map[string]interface{}{
		"name":             "Crimson / S",
		"original_price":   "999999",
		"discount_percent": 0,
	}).Error; err != nil {
		t.Fatalf("update variant failed: %v", err)
	}

	reloaded, err := svc.GetOrderForAdmin(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(reloaded.Items))
	}
	item := reloaded.Items[0]
	if item.VariantName != "Red / S" {
		t.Fatalf("expected snapshotted name, got %q", item.VariantName)
	}
	if !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected snapshotted unit price 80000, got %s", item.UnitPrice.Decimal)
	}
}

func TestCancelOrderOnlyPendingAndOwner(t *testing.T) {
	db := setupOrderTestDB(t, "order_cancel")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "TEE-GRN-M",
		Name:          "Green / M",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		StockQuantity: 5,
	})
	svc := newOrderTestService(db)

	input := buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 2})
	input.UserID = 7
	order, err := svc.CreateOrder(input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.CancelOrder(order.ID, 8); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign user, got %v", err)
	}

	cancelled, err := svc.CancelOrder(order.ID, 7)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", cancelled.Status)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("expected canceled_at to be set")
	}

	if _, err := svc.CancelOrder(order.ID, 7); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected ErrOrderCancelNotAllowed on second cancel, got %v", err)
	}

	// 取消不回补库存
	var variant models.ProductVariant
	if err := db.First(&variant, variants[0].ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if variant.StockQuantity != 3 {
		t.Fatalf("expected stock to stay at 3 after cancel, got %d", variant.StockQuantity)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	db := setupOrderTestDB(t, "order_status")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "TEE-NVY-L",
		Name:          "Navy / L",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100000)),
		StockQuantity: 5,
	})
	svc := newOrderTestService(db)

	order, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusPending); !errors.Is(err, ErrOrderStatusUnchanged) {
		t.Fatalf("expected ErrOrderStatusUnchanged, got %v", err)
	}
	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for pending->delivered, got %v", err)
	}
	if _, err := svc.UpdateOrderStatus(order.ID, "refunded"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for unknown status, got %v", err)
	}

	updated, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("pending->processing failed: %v", err)
	}
	if updated.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected processing, got %q", updated.Status)
	}

	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusPending); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for processing->pending, got %v", err)
	}
	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for processing->cancelled, got %v", err)
	}

	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); err != nil {
		t.Fatalf("processing->shipped failed: %v", err)
	}
	final, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("shipped->delivered failed: %v", err)
	}
	if final.Status != constants.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %q", final.Status)
	}
	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for delivered->processing, got %v", err)
	}
}

func TestAdminCanCancelPendingOrder(t *testing.T) {
	db := setupOrderTestDB(t, "order_admin_cancel")
	variants := seedPublishedProduct(t, db, models.ProductVariant{
		SKU:           "PIN-SET",
		Name:          "Pin Set",
		OriginalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(60000)),
		StockQuantity: 5,
	})
	svc := newOrderTestService(db)

	order, err := svc.CreateOrder(buyerInput(CreateOrderItem{VariantID: variants[0].ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cancelled, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("pending->cancelled failed: %v", err)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("expected canceled_at to be set")
	}
}

func TestMergeCreateOrderItems(t *testing.T) {
	merged, err := mergeCreateOrderItems([]CreateOrderItem{
		{VariantID: 1, Quantity: 1},
		{VariantID: 2, Quantity: 2},
		{VariantID: 1, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].VariantID != 1 || merged[0].Quantity != 4 {
		t.Fatalf("expected variant 1 quantity 4, got %+v", merged[0])
	}

	if _, err := mergeCreateOrderItems([]CreateOrderItem{{VariantID: 0, Quantity: 1}}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for zero variant, got %v", err)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{VariantID: 1, Quantity: 0}}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for zero quantity, got %v", err)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{VariantID: 1, Quantity: -2}}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for negative quantity, got %v", err)
	}
}

func TestValidateBuyerContact(t *testing.T) {
	base := buyerInput(CreateOrderItem{VariantID: 1, Quantity: 1})

	input := base
	input.FullName = "  "
	if err := validateBuyerContact(&input); !errors.Is(err, ErrBuyerContactRequired) {
		t.Fatalf("expected ErrBuyerContactRequired, got %v", err)
	}

	input = base
	input.Email = "not-an-email"
	if err := validateBuyerContact(&input); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	input = base
	input.ShippingAddress = ""
	if err := validateBuyerContact(&input); !errors.Is(err, ErrShippingAddressMissing) {
		t.Fatalf("expected ErrShippingAddressMissing, got %v", err)
	}

	input = base
	input.PaymentMethod = "crypto"
	if err := validateBuyerContact(&input); !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("expected ErrPaymentMethodInvalid, got %v", err)
	}

	input = base
	input.Email = " Linh@Example.COM "
	input.PaymentMethod = "Bank_Transfer"
	if err := validateBuyerContact(&input); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}
	if input.Email != "linh@example.com" {
		t.Fatalf("expected normalized email, got %q", input.Email)
	}
	if input.PaymentMethod != constants.PaymentMethodBankTransfer {
		t.Fatalf("expected normalized payment method, got %q", input.PaymentMethod)
	}
}
