package main

import (
	"fmt"
	"time"

	"github.com/stagefront/internal/config"
	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/logger"
	"github.com/stagefront/internal/models"

	"github.com/shopspring/decimal"
)

type variantSeed struct {
	SKU             string
	Name            string
	OriginalPrice   int64
	DiscountPercent int
	StockQuantity   int
	IsPreorder      bool
	SortOrder       int
}

type productSeed struct {
	Slug        string
	Name        string
	Description string
	Status      string
	SortOrder   int
	Variants    []variantSeed
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	products := []productSeed{
		{
			Slug:        "tour-tee-2026",
			Name:        "2026 Tour T-Shirt",
			Description: "Official 2026 tour t-shirt, screen printed front and back.",
			Status:      constants.ProductStatusPublished,
			SortOrder:   300,
			Variants: []variantSeed{
				{SKU: "TEE-2026-S", Name: "Size S", OriginalPrice: 250000, DiscountPercent: 0, StockQuantity: 40, SortOrder: 30},
				{SKU: "TEE-2026-M", Name: "Size M", OriginalPrice: 250000, DiscountPercent: 0, StockQuantity: 60, SortOrder: 20},
				{SKU: "TEE-2026-L", Name: "Size L", OriginalPrice: 250000, DiscountPercent: 10, StockQuantity: 25, SortOrder: 10},
			},
		},
		{
			Slug:        "signed-poster",
			Name:        "Signed Poster",
			Description: "A2 poster signed by the full band, limited run.",
			Status:      constants.ProductStatusPublished,
			SortOrder:   280,
			Variants: []variantSeed{
				{SKU: "POSTER-A2-STD", Name: "Standard", OriginalPrice: 400000, DiscountPercent: 0, StockQuantity: 12, SortOrder: 10},
			},
		},
		{
			Slug:        "vinyl-deluxe",
			Name:        "Deluxe Vinyl LP",
			Description: "180g double vinyl with gatefold sleeve and lyric booklet.",
			Status:      constants.ProductStatusPublished,
			SortOrder:   260,
			Variants: []variantSeed{
				{SKU: "VINYL-DLX-BLK", Name: "Black", OriginalPrice: 850000, DiscountPercent: 0, StockQuantity: 30, SortOrder: 20},
				{SKU: "VINYL-DLX-RED", Name: "Translucent Red", OriginalPrice: 950000, DiscountPercent: 5, StockQuantity: 0, IsPreorder: true, SortOrder: 10},
			},
		},
		{
			Slug:        "enamel-pin-set",
			Name:        "Enamel Pin Set",
			Description: "Set of four enamel pins, one per album era.",
			Status:      constants.ProductStatusPublished,
			SortOrder:   240,
			Variants: []variantSeed{
				{SKU: "PIN-SET-4", Name: "Four Pack", OriginalPrice: 180000, DiscountPercent: 15, StockQuantity: 80, SortOrder: 10},
			},
		},
		{
			Slug:        "hoodie-prototype",
			Name:        "Hoodie (Prototype)",
			Description: "Heavyweight hoodie, pending final artwork approval.",
			Status:      constants.ProductStatusDraft,
			SortOrder:   100,
			Variants: []variantSeed{
				{SKU: "HOODIE-PROTO-M", Name: "Size M", OriginalPrice: 650000, DiscountPercent: 0, StockQuantity: 0, SortOrder: 10},
			},
		},
	}

	for _, seed := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", seed.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", seed.Slug)
			continue
		}

		product := models.Product{
			Slug:        seed.Slug,
			Name:        seed.Name,
			Description: seed.Description,
			Status:      seed.Status,
			SortOrder:   seed.SortOrder,
		}
		minPrice := decimal.Zero
		for _, v := range seed.Variants {
			variant := models.ProductVariant{
				SKU:             v.SKU,
				Name:            v.Name,
				OriginalPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(v.OriginalPrice)),
				DiscountPercent: v.DiscountPercent,
				StockQuantity:   v.StockQuantity,
				IsPreorder:      v.IsPreorder,
				SortOrder:       v.SortOrder,
			}
			unit := variant.UnitPrice().Decimal
			if minPrice.IsZero() || unit.LessThan(minPrice) {
				minPrice = unit
			}
			product.Variants = append(product.Variants, variant)
		}
		product.MinPrice = models.NewMoneyFromDecimal(minPrice)

		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", seed.Slug, err)
		} else {
			stdLog.Printf("Created product: %s (%d variants)", seed.Slug, len(product.Variants))
		}
	}

	// 添加演示优惠码
	now := time.Now()
	saleStart := now.Add(-24 * time.Hour)
	saleEnd := now.AddDate(0, 3, 0)
	vouchers := []models.Voucher{
		{
			Code:       "SALE10",
			Type:       constants.VoucherTypePercentage,
			Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			UsageLimit: 500,
			StartDate:  &saleStart,
			EndDate:    &saleEnd,
			IsActive:   true,
		},
		{
			Code:       "WELCOME50K",
			Type:       constants.VoucherTypeFixed,
			Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(50000)),
			UsageLimit: 0,
			IsActive:   true,
		},
	}

	for _, voucher := range vouchers {
		var existing models.Voucher
		if err := models.DB.Where("code = ?", voucher.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Voucher already exists: %s", voucher.Code)
			continue
		}
		if err := models.DB.Create(&voucher).Error; err != nil {
			stdLog.Printf("Failed to create voucher %s: %v", voucher.Code, err)
		} else {
			stdLog.Printf("Created voucher: %s", voucher.Code)
		}
	}

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 5 Products (4 published + 1 draft)")
	fmt.Println("- 8 Variants (incl. one preorder)")
	fmt.Println("- 2 Vouchers (SALE10 / WELCOME50K)")
}
