package handlers

import (
	"context"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/application/payment/usecases"
)

// Use case interfaces for PaymentHandler

type handlePaymentCallbackUseCase interface {
	Execute(ctx context.Context, cb *paymentgateway.Callback) (*usecases.CallbackResult, error)
}

type initiatePaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.InitiatePaymentCommand) (*usecases.InitiatePaymentResult, error)
}
