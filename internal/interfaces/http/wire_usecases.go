package http

import (
	paymentUsecases "github.com/orris-inc/paypoint/internal/application/payment/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	handleCallbackUC  *paymentUsecases.HandlePaymentCallbackUseCase
	initiatePaymentUC *paymentUsecases.InitiatePaymentUseCase
}
