package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/stagefront/internal/http/response"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"
	"github.com/stagefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// VoucherRequest 创建/更新优惠码请求
type VoucherRequest struct {
	Code       string  `json:"code" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Value      float64 `json:"value" binding:"required"`
	UsageLimit int     `json:"usage_limit"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	IsActive   *bool   `json:"is_active"`
}

func (req *VoucherRequest) toServiceInput(c *gin.Context) (service.VoucherInput, bool) {
	startDate, err := parseTimeNullable(req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return service.VoucherInput{}, false
	}
	endDate, err := parseTimeNullable(req.EndDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return service.VoucherInput{}, false
	}
	return service.VoucherInput{
		Code:       req.Code,
		Type:       req.Type,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Value)),
		UsageLimit: req.UsageLimit,
		StartDate:  startDate,
		EndDate:    endDate,
		IsActive:   req.IsActive,
	}, true
}

func respondVoucherError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "voucher not found", nil)
	case errors.Is(err, service.ErrVoucherCodeExists):
		respondError(c, response.CodeConflict, "voucher code already exists", nil)
	case errors.Is(err, service.ErrVoucherWindow):
		respondError(c, response.CodeBadRequest, "voucher window requires both start and end", nil)
	case errors.Is(err, service.ErrVoucherValueInvalid):
		respondError(c, response.CodeBadRequest, "voucher value invalid", nil)
	case errors.Is(err, service.ErrVoucherInvalid):
		respondError(c, response.CodeBadRequest, "voucher invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// CreateVoucher 创建优惠码
func (h *Handler) CreateVoucher(c *gin.Context) {
	var req VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input, ok := req.toServiceInput(c)
	if !ok {
		return
	}

	voucher, err := h.VoucherAdminService.Create(input)
	if err != nil {
		respondVoucherError(c, err, "voucher create failed")
		return
	}

	response.Success(c, voucher)
}

// UpdateVoucher 更新优惠码
func (h *Handler) UpdateVoucher(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "invalid voucher id", nil)
		return
	}

	var req VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input, ok := req.toServiceInput(c)
	if !ok {
		return
	}

	voucher, err := h.VoucherAdminService.Update(uint(voucherID), input)
	if err != nil {
		respondVoucherError(c, err, "voucher update failed")
		return
	}

	response.Success(c, voucher)
}

// DeleteVoucher 删除优惠码
func (h *Handler) DeleteVoucher(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "invalid voucher id", nil)
		return
	}

	if err := h.VoucherAdminService.Delete(uint(voucherID)); err != nil {
		respondVoucherError(c, err, "voucher delete failed")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// GetVoucher 获取优惠码详情
func (h *Handler) GetVoucher(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "invalid voucher id", nil)
		return
	}

	voucher, err := h.VoucherAdminService.Get(uint(voucherID))
	if err != nil {
		respondVoucherError(c, err, "voucher fetch failed")
		return
	}

	response.Success(c, voucher)
}

// ListVouchers 获取优惠码列表
func (h *Handler) ListVouchers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	search := strings.TrimSpace(c.Query("search"))

	var isActive *bool
	switch strings.ToLower(strings.TrimSpace(c.Query("is_active"))) {
	case "true", "1":
		v := true
		isActive = &v
	case "false", "0":
		v := false
		isActive = &v
	}

	vouchers, total, err := h.VoucherAdminService.List(repository.VoucherListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		IsActive: isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "voucher fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, vouchers, pagination)
}
