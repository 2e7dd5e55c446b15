package confirmation

import (
	"fmt"
	"strings"
)

// Outcome is the transaction status reported by the gateway.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeFailed    Outcome = "FAILED"
	OutcomePending   Outcome = "PENDING"
	OutcomeExpired   Outcome = "EXPIRED"
	OutcomeCancelled Outcome = "CANCELLED"
	OutcomeVoided    Outcome = "VOIDED"
)

// ParseOutcome accepts exactly the six gateway status strings.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomePending, OutcomeExpired, OutcomeCancelled, OutcomeVoided:
		return o, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

func (o Outcome) String() string {
	return string(o)
}

// Variant identifies which gateway API generation produced a confirmation.
type Variant string

const (
	VariantLegacy Variant = "legacy"
	VariantREST   Variant = "rest"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(s)); v {
	case VariantLegacy, VariantREST:
		return v, nil
	}
	return "", fmt.Errorf("unknown gateway variant %q", s)
}

func (v Variant) String() string {
	return string(v)
}
