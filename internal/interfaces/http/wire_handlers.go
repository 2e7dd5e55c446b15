package http

import (
	"github.com/orris-inc/paypoint/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	paymentHandler *handlers.PaymentHandler
	healthHandler  *handlers.HealthHandler
}
