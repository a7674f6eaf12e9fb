package public

import (
	"errors"

	"github.com/stagefront/internal/http/response"
	"github.com/stagefront/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "invalid order item"},
	{target: service.ErrVariantNotFound, code: response.CodeBadRequest, msg: "variant not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, msg: "product price invalid"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrVoucherInvalid, code: response.CodeBadRequest, msg: "invalid voucher code"},
	{target: service.ErrVoucherNotValidNow, code: response.CodeBadRequest, msg: "voucher not valid at this time"},
	{target: service.ErrVoucherUsageLimit, code: response.CodeBadRequest, msg: "voucher usage limit reached"},
}

// 提交阶段特有：并发抢占返回 409，提示重试
var orderCreateExtraErrorRules = []mappedHandlerError{
	{target: service.ErrBuyerContactRequired, code: response.CodeBadRequest, msg: "buyer name and email are required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "invalid email"},
	{target: service.ErrShippingAddressMissing, code: response.CodeBadRequest, msg: "shipping address required"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrStockConflict, code: response.CodeConflict, msg: "stock changed, please retry"},
	{target: service.ErrVoucherConflict, code: response.CodeConflict, msg: "voucher exhausted, please retry"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCommonErrorRules, response.CodeInternal, "order preview failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	rules := make([]mappedHandlerError, 0, len(orderCommonErrorRules)+len(orderCreateExtraErrorRules))
	rules = append(rules, orderCommonErrorRules...)
	rules = append(rules, orderCreateExtraErrorRules...)
	respondWithMappedError(c, err, rules, response.CodeInternal, "order create failed")
}
