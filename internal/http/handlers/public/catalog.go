package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/stagefront/internal/http/response"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicVariantView 前台规格视图：只暴露下单需要的字段
type PublicVariantView struct {
	ID              uint         `json:"id"`
	SKU             string       `json:"sku"`
	Name            string       `json:"name"`
	OriginalPrice   models.Money `json:"original_price"`
	DiscountPercent int          `json:"discount_percent"`
	UnitPrice       models.Money `json:"unit_price"`
	InStock         bool         `json:"in_stock"`
	IsPreorder      bool         `json:"is_preorder"`
}

// PublicProductView 前台商品视图
type PublicProductView struct {
	ID          uint                `json:"id"`
	Slug        string              `json:"slug"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	MinPrice    models.Money        `json:"min_price"`
	Variants    []PublicVariantView `json:"variants"`
}

func buildPublicProductView(product *models.Product) PublicProductView {
	view := PublicProductView{
		ID:          product.ID,
		Slug:        product.Slug,
		Name:        product.Name,
		Description: product.Description,
		MinPrice:    product.MinPrice,
		Variants:    make([]PublicVariantView, 0, len(product.Variants)),
	}
	for i := range product.Variants {
		variant := &product.Variants[i]
		view.Variants = append(view.Variants, PublicVariantView{
			ID:              variant.ID,
			SKU:             variant.SKU,
			Name:            variant.Name,
			OriginalPrice:   variant.OriginalPrice,
			DiscountPercent: variant.DiscountPercent,
			UnitPrice:       variant.UnitPrice(),
			InStock:         variant.StockQuantity > 0,
			IsPreorder:      variant.IsPreorder,
		})
	}
	return view
}

// GetProducts 前台商品列表（仅已上架）
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	views := make([]PublicProductView, 0, len(products))
	for i := range products {
		views = append(views, buildPublicProductView(&products[i]))
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, views, pagination)
}

// GetProductBySlug 前台商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "invalid product slug", nil)
		return
	}

	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	view := buildPublicProductView(product)
	response.Success(c, view)
}
