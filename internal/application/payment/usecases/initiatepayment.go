package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/domain/order"
	"github.com/orris-inc/paypoint/internal/shared/biztime"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

// Store routes the gateway and the customer come back to.
const (
	ReturnRoute   = "Plugins/PaymentPayPoint/Return"
	CallbackRoute = "Plugins/PaymentPayPoint/Callback"
)

type InitiatePaymentCommand struct {
	OrderGUID uuid.UUID
	// Repost is set when the customer retries from the order details page.
	Repost bool
}

// InitiatePaymentResult carries either a redirect or a form to render.
type InitiatePaymentResult struct {
	OrderID     uint
	SessionID   string
	RedirectURL string
	FormHTML    string
}

type PaymentConfig struct {
	// StoreLocation is the public base URL with a trailing slash.
	StoreLocation string
}

// InitiationMetrics counts gateway hand-offs.
type InitiationMetrics interface {
	ObserveInitiation(variant string, result string)
}

type InitiatePaymentUseCase struct {
	orderRepo order.OrderRepository
	gateway   paymentgateway.PaymentGateway
	metrics   InitiationMetrics // Optional
	logger    logger.Interface
	config    PaymentConfig
}

func NewInitiatePaymentUseCase(
	orderRepo order.OrderRepository,
	gateway paymentgateway.PaymentGateway,
	logger logger.Interface,
	config PaymentConfig,
) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		logger:    logger,
		config:    config,
	}
}

// SetMetrics sets the hand-off counters (optional dependency injection)
func (uc *InitiatePaymentUseCase) SetMetrics(metrics InitiationMetrics) {
	uc.metrics = metrics
}

func (uc *InitiatePaymentUseCase) Execute(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	o, err := uc.orderRepo.GetByGUID(ctx, cmd.OrderGUID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to get order", "error", err, "order_guid", cmd.OrderGUID)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !o.CanMarkPaid() {
		return nil, apperrors.NewConflictError("order is not awaiting payment", o.PaymentStatus().String())
	}
	if cmd.Repost && !o.CanRePostProcessPayment(biztime.NowUTC()) {
		return nil, apperrors.NewValidationError("order cannot be re-posted yet")
	}

	notifyRoute := CallbackRoute
	if uc.gateway.Variant() == confirmation.VariantLegacy {
		notifyRoute = ReturnRoute
	}

	resp, err := uc.gateway.CreatePayment(ctx, paymentgateway.CreatePaymentRequest{
		OrderID:         o.ID(),
		OrderGUID:       o.OrderGUID(),
		Amount:          o.Total(),
		Currency:        o.Currency(),
		Description:     fmt.Sprintf("Order #%d", o.ID()),
		ReturnURL:       fmt.Sprintf("%scheckout/completed/%d", uc.config.StoreLocation, o.ID()),
		CancelURL:       fmt.Sprintf("%sorderdetails/%d", uc.config.StoreLocation, o.ID()),
		NotificationURL: uc.config.StoreLocation + notifyRoute,
	})
	if err != nil {
		uc.logger.Warnw("payment initiation failed", "order_id", o.ID(), "error", err)
		uc.observe("failed")
		return nil, err
	}

	if resp.RedirectURL != "" {
		uc.observe("redirected")
	} else {
		uc.observe("form")
	}

	uc.logger.Infow("payment initiated",
		"order_id", o.ID(),
		"variant", uc.gateway.Variant(),
		"session_id", resp.SessionID,
		"repost", cmd.Repost,
	)

	return &InitiatePaymentResult{
		OrderID:     o.ID(),
		SessionID:   resp.SessionID,
		RedirectURL: resp.RedirectURL,
		FormHTML:    resp.FormHTML,
	}, nil
}

func (uc *InitiatePaymentUseCase) observe(result string) {
	if uc.metrics != nil {
		uc.metrics.ObserveInitiation(uc.gateway.Variant().String(), result)
	}
}
