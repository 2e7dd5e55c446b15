package order

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (*Order, error)
	// MarkPaidIfPending persists the paid state of order only if the stored
	// row is still pending. It reports false when another writer got there
	// first; the stored transaction id is then left untouched.
	MarkPaidIfPending(ctx context.Context, order *Order) (bool, error)
}
