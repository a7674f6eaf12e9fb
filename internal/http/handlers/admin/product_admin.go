package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/stagefront/internal/http/response"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductVariantRequest 商品规格请求
type ProductVariantRequest struct {
	SKU             string  `json:"sku" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent int     `json:"discount_percent"`
	StockQuantity   int     `json:"stock_quantity"`
	IsPreorder      bool    `json:"is_preorder"`
	SortOrder       int     `json:"sort_order"`
}

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Slug        string                  `json:"slug" binding:"required"`
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Status      string                  `json:"status"`
	SortOrder   int                     `json:"sort_order"`
	Variants    []ProductVariantRequest `json:"variants" binding:"required"`
}

func (req *ProductRequest) toServiceInput() service.CreateProductInput {
	variants := make([]service.ProductVariantInput, 0, len(req.Variants))
	for _, v := range req.Variants {
		variants = append(variants, service.ProductVariantInput{
			SKU:             v.SKU,
			Name:            v.Name,
			OriginalPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(v.OriginalPrice)),
			DiscountPercent: v.DiscountPercent,
			StockQuantity:   v.StockQuantity,
			IsPreorder:      v.IsPreorder,
			SortOrder:       v.SortOrder,
		})
	}
	return service.CreateProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		SortOrder:   req.SortOrder,
		Variants:    variants,
	}
}

func respondProductError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeConflict, "slug already exists", nil)
	case errors.Is(err, service.ErrSKUExists):
		respondError(c, response.CodeConflict, "sku already exists", nil)
	case errors.Is(err, service.ErrProductPriceInvalid):
		respondError(c, response.CodeBadRequest, "product price invalid", nil)
	case errors.Is(err, service.ErrProductInvalid):
		respondError(c, response.CodeBadRequest, "product invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	search := strings.TrimSpace(c.Query("search"))
	status := strings.TrimSpace(c.Query("status"))

	products, total, err := h.ProductService.ListAdmin(search, status, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	product, err := h.ProductService.GetAdminByID(uint(productID))
	if err != nil {
		respondProductError(c, err, "product fetch failed")
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, err := h.ProductService.Create(req.toServiceInput())
	if err != nil {
		respondProductError(c, err, "product create failed")
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品（整体替换规格集合）
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, err := h.ProductService.Update(uint(productID), req.toServiceInput())
	if err != nil {
		respondProductError(c, err, "product update failed")
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.ProductService.Delete(uint(productID)); err != nil {
		respondProductError(c, err, "product delete failed")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustVariantStock 管理端库存调整（下单之外的库存变更入口）
func (h *Handler) AdjustVariantStock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "invalid variant id", nil)
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	variant, err := h.ProductService.AdjustVariantStock(uint(variantID), req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStockInsufficient):
			respondError(c, response.CodeConflict, "stock adjustment would go negative", nil)
		case errors.Is(err, service.ErrProductInvalid):
			respondError(c, response.CodeBadRequest, "invalid stock adjustment", nil)
		default:
			respondError(c, response.CodeInternal, "stock adjustment failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_stock_adjusted",
		"variant_id", variant.ID,
		"sku", variant.SKU,
		"delta", req.Delta,
		"stock_quantity", variant.StockQuantity,
	)
	response.Success(c, variant)
}
