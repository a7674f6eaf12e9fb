package service

import (
	"strings"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService 商品业务服务
type ProductService struct {
	repo        repository.ProductRepository
	variantRepo repository.ProductVariantRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, variantRepo repository.ProductVariantRepository) *ProductService {
	return &ProductService{repo: repo, variantRepo: variantRepo}
}

// ProductVariantInput 创建/更新规格输入
type ProductVariantInput struct {
	SKU             string
	Name            string
	OriginalPrice   models.Money
	DiscountPercent int
	StockQuantity   int
	IsPreorder      bool
	SortOrder       int
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	Slug        string
	Name        string
	Description string
	Status      string
	SortOrder   int
	Variants    []ProductVariantInput
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        search,
		OnlyPublished: true,
		WithVariants:  true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(search, status string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       search,
		Status:       normalizeProductStatus(status),
		WithVariants: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品及规格
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrProductInvalid
	}
	status := normalizeProductStatus(input.Status)
	if status == "" {
		status = constants.ProductStatusDraft
	}
	variants, err := buildVariantRows(input.Variants)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product := models.Product{
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		MinPrice:    minVariantPrice(variants),
		SortOrder:   input.SortOrder,
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.repo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		if err := productRepo.Create(&product); err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		return variantRepo.CreateBatch(variants)
	})
	if err != nil {
		return nil, err
	}
	product.Variants = variants
	return &product, nil
}

// Update 更新商品及规格（规格整组替换）
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrProductInvalid
	}
	status := normalizeProductStatus(input.Status)
	if status == "" {
		status = product.Status
	}
	variants, err := buildVariantRows(input.Variants)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product.Slug = slug
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.Status = status
	product.MinPrice = minVariantPrice(variants)
	product.SortOrder = input.SortOrder
	product.Variants = nil

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.repo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		if err := productRepo.Update(product); err != nil {
			return err
		}
		if err := variantRepo.DeleteByProduct(product.ID); err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		return variantRepo.CreateBatch(variants)
	})
	if err != nil {
		return nil, err
	}
	product.Variants = variants
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.repo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		if err := variantRepo.DeleteByProduct(id); err != nil {
			return err
		}
		return productRepo.Delete(id)
	})
}

// AdjustVariantStock 管理端库存调整
func (s *ProductService) AdjustVariantStock(variantID uint, delta int) (*models.ProductVariant, error) {
	if variantID == 0 || delta == 0 {
		return nil, ErrProductInvalid
	}
	affected, err := s.variantRepo.AdjustStock(variantID, delta)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStockInsufficient
	}
	return s.variantRepo.GetByID(variantID)
}

func buildVariantRows(inputs []ProductVariantInput) ([]models.ProductVariant, error) {
	if len(inputs) == 0 {
		return nil, ErrProductInvalid
	}
	seen := make(map[string]bool, len(inputs))
	rows := make([]models.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		sku := strings.TrimSpace(in.SKU)
		name := strings.TrimSpace(in.Name)
		if sku == "" || name == "" {
			return nil, ErrProductInvalid
		}
		if seen[sku] {
			return nil, ErrSKUExists
		}
		seen[sku] = true
		if in.OriginalPrice.Decimal.LessThan(decimal.Zero) {
			return nil, ErrProductPriceInvalid
		}
		if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
			return nil, ErrProductPriceInvalid
		}
		if in.StockQuantity < 0 {
			return nil, ErrProductInvalid
		}
		rows = append(rows, models.ProductVariant{
			SKU:             sku,
			Name:            name,
			OriginalPrice:   in.OriginalPrice,
			DiscountPercent: in.DiscountPercent,
			StockQuantity:   in.StockQuantity,
			IsPreorder:      in.IsPreorder,
			SortOrder:       in.SortOrder,
		})
	}
	return rows, nil
}

func minVariantPrice(variants []models.ProductVariant) models.Money {
	min := decimal.Zero
	for i, v := range variants {
		price := v.UnitPrice().Decimal
		if i == 0 || price.LessThan(min) {
			min = price
		}
	}
	return models.NewMoneyFromDecimal(min)
}

func normalizeProductStatus(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case constants.ProductStatusDraft, constants.ProductStatusPublished, constants.ProductStatusDeleted:
		return value
	default:
		return ""
	}
}
