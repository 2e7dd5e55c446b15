// Package order holds the host order as seen by the payment plugin: its
// total, its payment status and the gateway transaction that paid it.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	"github.com/orris-inc/paypoint/internal/shared/biztime"
)

// RePostDelay is how long an order must exist before the customer may be
// sent to the gateway again.
const RePostDelay = time.Minute

type Order struct {
	id            uint
	orderGUID     uuid.UUID
	customerEmail string
	total         decimal.Decimal
	currency      string
	paymentStatus vo.PaymentStatus

	captureTransactionID *string
	paidAt               *time.Time

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewOrder(customerEmail string, total decimal.Decimal, currency string) (*Order, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("order total must be positive")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid currency code %q", currency)
	}

	now := biztime.NowUTC()
	return &Order{
		orderGUID:     uuid.New(),
		customerEmail: customerEmail,
		total:         total.Round(2),
		currency:      currency,
		paymentStatus: vo.PaymentStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// CanMarkPaid is true only while the order awaits payment.
func (o *Order) CanMarkPaid() bool {
	return o.paymentStatus.IsPending()
}

// MarkAsPaid records the capture transaction and moves the order to paid.
// It fails when CanMarkPaid is false; a paid order keeps its original
// transaction id.
func (o *Order) MarkAsPaid(transactionID string) error {
	if !o.CanMarkPaid() {
		return fmt.Errorf("cannot mark order %d as paid with status %s", o.id, o.paymentStatus)
	}
	if strings.TrimSpace(transactionID) == "" {
		return fmt.Errorf("transaction id is required to mark order %d as paid", o.id)
	}

	now := biztime.NowUTC()
	o.paymentStatus = vo.PaymentStatusPaid
	o.captureTransactionID = &transactionID
	o.paidAt = &now
	o.updatedAt = now
	o.version++

	return nil
}

// CanRePostProcessPayment reports whether the customer may be redirected to
// the gateway again: the order is still pending and was placed at least
// RePostDelay ago.
func (o *Order) CanRePostProcessPayment(now time.Time) bool {
	if !o.paymentStatus.IsPending() {
		return false
	}
	return now.Sub(o.createdAt) >= RePostDelay
}

func (o *Order) ID() uint {
	return o.id
}

func (o *Order) OrderGUID() uuid.UUID {
	return o.orderGUID
}

func (o *Order) CustomerEmail() string {
	return o.customerEmail
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) Currency() string {
	return o.currency
}

func (o *Order) PaymentStatus() vo.PaymentStatus {
	return o.paymentStatus
}

func (o *Order) CaptureTransactionID() *string {
	return o.captureTransactionID
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

func (o *Order) Version() int {
	return o.version
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// SetID sets the order ID after persistence (used by repository after Create)
func (o *Order) SetID(id uint) {
	o.id = id
}

func ReconstructOrder(
	id uint,
	orderGUID uuid.UUID,
	customerEmail string,
	total decimal.Decimal,
	currency string,
	paymentStatus vo.PaymentStatus,
	captureTransactionID *string,
	paidAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*Order, error) {
	if !paymentStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", paymentStatus)
	}
	return &Order{
		id:                   id,
		orderGUID:            orderGUID,
		customerEmail:        customerEmail,
		total:                total,
		currency:             currency,
		paymentStatus:        paymentStatus,
		captureTransactionID: captureTransactionID,
		paidAt:               paidAt,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}
