package valueobjects

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusVoided    PaymentStatus = "voided"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled, PaymentStatusVoided, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

// IsFinal reports whether no further payment transition is possible from s.
func (s PaymentStatus) IsFinal() bool {
	return s != PaymentStatusPending
}

func (s PaymentStatus) String() string {
	return string(s)
}
