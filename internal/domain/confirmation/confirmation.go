// Package confirmation models an inbound gateway notification after it has
// been parsed: which order it is about, which transaction paid it and what
// the gateway says happened.
package confirmation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// OrderReference points at exactly one order, by numeric id (legacy
// callbacks) or by order GUID (REST merchant reference).
type OrderReference struct {
	id   uint
	guid uuid.UUID
}

func OrderReferenceByID(id uint) OrderReference {
	return OrderReference{id: id}
}

func OrderReferenceByGUID(guid uuid.UUID) OrderReference {
	return OrderReference{guid: guid}
}

// ParseOrderReference reads an order GUID or a positive numeric order id,
// the two forms String produces.
func ParseOrderReference(s string) (OrderReference, error) {
	s = strings.TrimSpace(s)
	if guid, err := uuid.Parse(s); err == nil && guid != uuid.Nil {
		return OrderReferenceByGUID(guid), nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return OrderReference{}, fmt.Errorf("order reference %q is neither an order GUID nor an order id", s)
	}
	return OrderReferenceByID(uint(id)), nil
}

func (r OrderReference) ID() uint {
	return r.id
}

func (r OrderReference) GUID() uuid.UUID {
	return r.guid
}

func (r OrderReference) IsGUID() bool {
	return r.guid != uuid.Nil
}

func (r OrderReference) IsZero() bool {
	return r.id == 0 && r.guid == uuid.Nil
}

func (r OrderReference) String() string {
	if r.IsGUID() {
		return r.guid.String()
	}
	return strconv.FormatUint(uint64(r.id), 10)
}

type PaymentConfirmation struct {
	variant       Variant
	orderRef      OrderReference
	transactionID string
	outcome       Outcome
	sessionID     string
}

// NewPaymentConfirmation returns a complete confirmation or an error; a
// successful outcome must carry the transaction id that captured it.
func NewPaymentConfirmation(variant Variant, ref OrderReference, transactionID string, outcome Outcome) (*PaymentConfirmation, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("order reference is required")
	}
	if outcome == "" {
		return nil, fmt.Errorf("outcome is required")
	}
	if outcome.IsSuccess() && strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("transaction id is required for a %s outcome", outcome)
	}
	return &PaymentConfirmation{
		variant:       variant,
		orderRef:      ref,
		transactionID: transactionID,
		outcome:       outcome,
	}, nil
}

// WithSessionID attaches the gateway session id for logging.
func (c *PaymentConfirmation) WithSessionID(id string) *PaymentConfirmation {
	c.sessionID = id
	return c
}

func (c *PaymentConfirmation) Variant() Variant {
	return c.variant
}

func (c *PaymentConfirmation) OrderRef() OrderReference {
	return c.orderRef
}

func (c *PaymentConfirmation) TransactionID() string {
	return c.transactionID
}

func (c *PaymentConfirmation) Outcome() Outcome {
	return c.outcome
}

func (c *PaymentConfirmation) SessionID() string {
	return c.sessionID
}
