package paymentgateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

// MaxCallbackBodyBytes caps how much of a notification body is read.
const MaxCallbackBodyBytes = 64 << 10

// CallbackVerifier authenticates and parses one inbound gateway callback.
// Implementations return an AppError of type VerificationFailure or
// ParseFailure; they never return a partially filled confirmation.
type CallbackVerifier interface {
	Variant() confirmation.Variant
	VerifyCallback(cb *Callback) (*confirmation.PaymentConfirmation, error)
}

// PaymentInitiator hands a pending order over to the gateway.
type PaymentInitiator interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
}

// PaymentGateway is one PayPoint API generation.
type PaymentGateway interface {
	CallbackVerifier
	PaymentInitiator
	Capabilities() Capabilities
	Capture(ctx context.Context, orderID uint) error
	Refund(ctx context.Context, orderID uint, amount decimal.Decimal) error
	Void(ctx context.Context, orderID uint) error
}

// Callback is the raw material of an inbound notification, captured once
// by the transport so verifiers never touch the request.
type Callback struct {
	// RequestURI is the path and query exactly as sent by the gateway.
	RequestURI string
	Query      map[string][]string
	Body       []byte
	RemoteIP   string
}

// NewCallback reads r into a Callback. The body is capped at MaxCallbackBodyBytes.
func NewCallback(r *http.Request, remoteIP string) (*Callback, error) {
	cb := &Callback{
		RequestURI: requestURI(r),
		Query:      r.URL.Query(),
		RemoteIP:   remoteIP,
	}
	if r.Body == nil {
		return cb, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxCallbackBodyBytes+1))
	if err != nil {
		return cb, fmt.Errorf("failed to read callback body: %w", err)
	}
	if len(body) > MaxCallbackBodyBytes {
		return cb, fmt.Errorf("callback body exceeds %d bytes", MaxCallbackBodyBytes)
	}
	cb.Body = body
	return cb, nil
}

// QueryValue returns the first value for key.
func (cb *Callback) QueryValue(key string) (string, bool) {
	vs, ok := cb.Query[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Redacted returns a copy of cb with the notification token and the legacy
// hash masked in both the query and the request URI. The body is shared.
func (cb *Callback) Redacted() *Callback {
	out := *cb
	if len(cb.Query) > 0 {
		out.Query = make(map[string][]string, len(cb.Query))
		for k, vs := range cb.Query {
			if !isSecretParam(k) {
				out.Query[k] = vs
				continue
			}
			masked := make([]string, len(vs))
			for i, v := range vs {
				masked[i] = utils.MaskSecret(v)
			}
			out.Query[k] = masked
		}
	}

	path, rawQuery, ok := strings.Cut(cb.RequestURI, "?")
	if !ok {
		return &out
	}
	pairs := strings.Split(rawQuery, "&")
	for i, pair := range pairs {
		key, value, hasValue := strings.Cut(pair, "=")
		if hasValue && isSecretParam(key) {
			pairs[i] = key + "=" + utils.MaskSecret(value)
		}
	}
	out.RequestURI = path + "?" + strings.Join(pairs, "&")
	return &out
}

func isSecretParam(key string) bool {
	return key == notificationTokenKey || key == legacyParamHash
}

func requestURI(r *http.Request) string {
	if strings.HasPrefix(r.RequestURI, "/") {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// CreatePaymentRequest contains the data needed to hand an order to the gateway
type CreatePaymentRequest struct {
	OrderID     uint
	OrderGUID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Description string
	// ReturnURL receives the customer after the hosted page.
	ReturnURL string
	// CancelURL receives the customer when they abandon the hosted page.
	CancelURL string
	// NotificationURL receives the server-to-server confirmation.
	NotificationURL string
}

// CreatePaymentResponse carries exactly one of RedirectURL (REST session) or
// FormHTML (legacy auto-submitting form).
type CreatePaymentResponse struct {
	SessionID   string
	RedirectURL string
	FormHTML    string
}

// Capabilities lists the post-payment operations a gateway can perform.
type Capabilities struct {
	SupportsCapture       bool
	SupportsPartialRefund bool
	SupportsRefund        bool
	SupportsVoid          bool
	SupportsRecurring     bool
}

// unsupportedOperations reports capture, refund and void as unsupported;
// both generations only confirm payments taken on the hosted page.
type unsupportedOperations struct{}

func (unsupportedOperations) Capabilities() Capabilities {
	return Capabilities{}
}

func (unsupportedOperations) Capture(ctx context.Context, orderID uint) error {
	return apperrors.NewNotSupportedError("capture method not supported")
}

func (unsupportedOperations) Refund(ctx context.Context, orderID uint, amount decimal.Decimal) error {
	return apperrors.NewNotSupportedError("refund method not supported")
}

func (unsupportedOperations) Void(ctx context.Context, orderID uint) error {
	return apperrors.NewNotSupportedError("void method not supported")
}
