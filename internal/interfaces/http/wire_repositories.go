package http

import (
	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/domain/order"
	sharedDB "github.com/orris-inc/paypoint/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	orderRepo    order.OrderRepository
	callbackRepo confirmation.CallbackRecordRepository
	txManager    *sharedDB.TransactionManager
}
