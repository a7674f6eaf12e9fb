package service

import (
	"time"

	"github.com/stagefront/internal/constants"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	VariantID     uint         `json:"variant_id"`
	ProductID     uint         `json:"product_id"`
	ProductName   string       `json:"product_name"`
	VariantName   string       `json:"variant_name"`
	SKU           string       `json:"sku"`
	Quantity      int          `json:"quantity"`
	UnitPrice     models.Money `json:"unit_price"`
	OriginalPrice models.Money `json:"original_price"`
	StockQuantity int          `json:"stock_quantity"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID    uint
	VariantID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	variantRepo repository.ProductVariantRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, variantRepo repository.ProductVariantRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		variantRepo: variantRepo,
	}
}

// ListByUser 获取用户购物车
func (s *CartService) ListByUser(userID uint) ([]CartItemDetail, error) {
	if userID == 0 {
		return nil, ErrInvalidOrderItem
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		variant := item.Variant
		if variant == nil || variant.ID == 0 {
			v, err := s.variantRepo.GetByID(item.VariantID)
			if err != nil {
				return nil, err
			}
			variant = v
		}
		// 规格或商品已下架时静默清理购物车项
		if variant == nil || variant.Product == nil || variant.Product.Status != constants.ProductStatusPublished {
			_ = s.cartRepo.DeleteByUserAndVariant(userID, item.VariantID)
			continue
		}

		details = append(details, CartItemDetail{
			VariantID:     variant.ID,
			ProductID:     variant.ProductID,
			ProductName:   variant.Product.Name,
			VariantName:   variant.Name,
			SKU:           variant.SKU,
			Quantity:      item.Quantity,
			UnitPrice:     variant.UnitPrice(),
			OriginalPrice: variant.OriginalPrice,
			StockQuantity: variant.StockQuantity,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.UserID == 0 || input.VariantID == 0 || input.Quantity <= 0 {
		return ErrInvalidOrderItem
	}
	variants, err := s.variantRepo.ListByIDsWithProduct([]uint{input.VariantID})
	if err != nil {
		return err
	}
	if len(variants) == 0 {
		return ErrVariantNotFound
	}
	variant := variants[0]
	if variant.Product == nil || variant.Product.Status != constants.ProductStatusPublished {
		return ErrProductNotAvailable
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, variantID uint) error {
	if userID == 0 || variantID == 0 {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.DeleteByUserAndVariant(userID, variantID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.ClearByUser(userID)
}
