package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/application/payment/usecases"
	"github.com/orris-inc/paypoint/internal/shared/config"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/services/markdown"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

// Customer-facing pages shown when a gateway hand-off cannot start.
const (
	initiationFailedMessage = "Your payment could not be started. Please try again later."
	orderNotPayableMessage  = "This order is not awaiting payment."
	repostTooEarlyMessage   = "Please wait a minute before retrying the payment."
)

type PaymentHandler struct {
	handleCallbackUC  handlePaymentCallbackUseCase
	initiatePaymentUC initiatePaymentUseCase
	renderer          markdown.Renderer
	messages          config.PayPointMessagesConfig
	fee               config.PayPointFeeConfig
	logger            logger.Interface
}

func NewPaymentHandler(
	handleCallbackUC handlePaymentCallbackUseCase,
	initiatePaymentUC initiatePaymentUseCase,
	renderer markdown.Renderer,
	cfg config.PayPointConfig,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		handleCallbackUC:  handleCallbackUC,
		initiatePaymentUC: initiatePaymentUC,
		renderer:          renderer,
		messages:          cfg.Messages,
		fee:               cfg.Fee,
		logger:            logger,
	}
}

// Return handles GET /Plugins/PaymentPayPoint/Return.
// The legacy gateway shows the response body to the customer, so every
// outcome is a 200 HTML document.
func (h *PaymentHandler) Return(c *gin.Context) {
	result := h.runCallback(c)
	h.writeDocument(c, http.StatusOK, h.returnMessage(result.Stage))
}

// RecoveredReturn answers a Return request whose processing panicked. The
// customer sees the order-not-found page, as for any other failure.
func (h *PaymentHandler) RecoveredReturn(c *gin.Context) {
	h.writeDocument(c, http.StatusOK, h.messages.OrderNotFound)
}

// Callback handles POST /Plugins/PaymentPayPoint/Callback.
// Every outcome is acknowledged with an empty 200 to stop gateway retries.
func (h *PaymentHandler) Callback(c *gin.Context) {
	h.runCallback(c)
	utils.EmptyResponse(c, http.StatusOK)
}

func (h *PaymentHandler) runCallback(c *gin.Context) *usecases.CallbackResult {
	cb, err := paymentgateway.NewCallback(c.Request, c.ClientIP())
	if err != nil {
		// The truncated callback still runs; it will fail verification or parsing.
		h.logger.Warnw("failed to read payment callback", "error", err, "remote_ip", c.ClientIP())
	}

	// Failures are logged and recorded by the use case.
	result, _ := h.handleCallbackUC.Execute(c.Request.Context(), cb)
	if result == nil {
		return &usecases.CallbackResult{Stage: usecases.StageFailed}
	}
	return result
}

func (h *PaymentHandler) returnMessage(stage usecases.Stage) string {
	switch stage {
	case usecases.StageApplied, usecases.StageSkippedAlreadyTerminal:
		return h.messages.Paid
	case usecases.StageRejectedUnverified:
		return h.messages.Unverified
	case usecases.StageRejectedMalformed, usecases.StageIgnoredOutcome:
		return h.messages.NotValid
	default:
		return h.messages.OrderNotFound
	}
}

// Redirect handles GET /Plugins/PaymentPayPoint/Redirect/:orderGuid.
// The REST variant answers with a 302 to the hosted page, the legacy
// variant with an auto-submitting form.
func (h *PaymentHandler) Redirect(c *gin.Context) {
	orderGUID, err := uuid.Parse(c.Param("orderGuid"))
	if err != nil {
		h.writeDocument(c, http.StatusNotFound, h.messages.OrderNotFound)
		return
	}

	repost, _ := strconv.ParseBool(c.Query("repost"))

	result, err := h.initiatePaymentUC.Execute(c.Request.Context(), usecases.InitiatePaymentCommand{
		OrderGUID: orderGUID,
		Repost:    repost,
	})
	if err != nil {
		h.writeInitiationError(c, orderGUID, err)
		return
	}

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}
	utils.HTMLResponse(c, http.StatusOK, result.FormHTML)
}

func (h *PaymentHandler) writeInitiationError(c *gin.Context, orderGUID uuid.UUID, err error) {
	switch {
	case apperrors.IsNotFoundError(err):
		h.writeDocument(c, http.StatusNotFound, h.messages.OrderNotFound)
	case apperrors.IsType(err, apperrors.ErrorTypeConflict):
		h.writeDocument(c, http.StatusConflict, orderNotPayableMessage)
	case apperrors.IsValidationError(err):
		h.writeDocument(c, http.StatusBadRequest, repostTooEarlyMessage)
	default:
		h.logger.Errorw("failed to start payment", "error", err, "order_guid", orderGUID)
		h.writeDocument(c, http.StatusBadGateway, initiationFailedMessage)
	}
}

// AdditionalFeeResponse is returned by the checkout fee lookup.
type AdditionalFeeResponse struct {
	CartTotal  string `json:"cart_total"`
	Fee        string `json:"fee"`
	Percentage bool   `json:"percentage"`
}

// AdditionalFee handles GET /Plugins/PaymentPayPoint/AdditionalFee?cart_total=
func (h *PaymentHandler) AdditionalFee(c *gin.Context) {
	cartTotal, err := decimal.NewFromString(c.Query("cart_total"))
	if err != nil || cartTotal.IsNegative() {
		utils.ErrorResponse(c, http.StatusBadRequest, "cart_total must be a non-negative decimal")
		return
	}

	fee := usecases.CalculateAdditionalFee(cartTotal, h.fee)

	utils.SuccessResponse(c, http.StatusOK, "", AdditionalFeeResponse{
		CartTotal:  cartTotal.StringFixed(2),
		Fee:        fee.StringFixed(2),
		Percentage: h.fee.Percentage,
	})
}

func (h *PaymentHandler) writeDocument(c *gin.Context, status int, message string) {
	doc, err := h.renderer.Document(message)
	if err != nil {
		h.logger.Warnw("failed to render payment page", "error", err)
		doc = "<html><body></body></html>"
	}
	utils.HTMLResponse(c, status, doc)
}
