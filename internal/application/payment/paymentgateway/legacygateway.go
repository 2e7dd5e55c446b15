package paymentgateway

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"strings"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/shared/config"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

// Legacy callback query parameters.
const (
	legacyParamValid    = "valid"
	legacyParamTransID  = "trans_id"
	legacyParamAuthCode = "auth_code"
	legacyParamHash     = "hash"
)

var legacyFormTemplate = template.Must(template.New("paypoint").Parse(`<html><body onload="document.forms['PayPoint'].submit()">
<form name="PayPoint" method="post" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}"/>
{{- end}}
</form>
</body></html>`))

type formField struct {
	Name  string
	Value string
}

// LegacyGateway speaks the form-post/digest generation: the customer's
// browser posts a signed form to the gateway, and the gateway fetches the
// callback URL with a trailing MD5 hash.
type LegacyGateway struct {
	unsupportedOperations
	cfg    config.PayPointLegacyConfig
	logger logger.Interface
}

func NewLegacyGateway(cfg config.PayPointLegacyConfig, logger logger.Interface) *LegacyGateway {
	return &LegacyGateway{cfg: cfg, logger: logger.Named("paypoint.legacy")}
}

func (g *LegacyGateway) Variant() confirmation.Variant {
	return confirmation.VariantLegacy
}

// CreatePayment renders the auto-submitting form that carries the customer to the gateway.
func (g *LegacyGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	transID := strconv.FormatUint(uint64(req.OrderID), 10)
	amount := req.Amount.StringFixed(2)

	fields := []formField{
		{"merchant", g.cfg.MerchantID},
		{"trans_id", transID},
		{"currency", req.Currency},
		{"amount", amount},
		{"callback", req.NotificationURL},
		{"digest", SignLegacyRequest(transID, amount, g.cfg.RemotePassword)},
	}
	if g.cfg.TestMode {
		fields = append(fields, formField{"test_status", "true"})
	}

	var buf bytes.Buffer
	if err := legacyFormTemplate.Execute(&buf, struct {
		Action string
		Fields []formField
	}{g.cfg.GatewayURL, fields}); err != nil {
		return nil, apperrors.NewInternalError("failed to render payment form", err.Error())
	}

	g.logger.Infow("legacy payment form built", "order_id", req.OrderID, "amount", amount, "currency", req.Currency)

	return &CreatePaymentResponse{FormHTML: buf.String()}, nil
}

// VerifyCallback checks the trailing hash before looking at any parameter.
func (g *LegacyGateway) VerifyCallback(cb *Callback) (*confirmation.PaymentConfirmation, error) {
	if !VerifyLegacyResponse(cb.RequestURI, g.cfg.DigestKey) {
		return nil, apperrors.NewVerificationFailure("cannot validate response sign")
	}
	return ParseLegacyCallback(cb)
}

// ParseLegacyCallback reads valid and trans_id from the query string. The
// capture reference is auth_code when the gateway sends one, trans_id otherwise.
func ParseLegacyCallback(cb *Callback) (*confirmation.PaymentConfirmation, error) {
	rawValid, ok := cb.QueryValue(legacyParamValid)
	if !ok {
		return nil, apperrors.NewParseFailure("valid parameter is missing")
	}
	valid, err := strconv.ParseBool(rawValid)
	if err != nil {
		return nil, apperrors.NewParseFailure("valid parameter is not a boolean", rawValid)
	}

	rawTransID, ok := cb.QueryValue(legacyParamTransID)
	if !ok {
		return nil, apperrors.NewParseFailure("trans_id parameter is missing")
	}
	orderID, err := strconv.ParseUint(rawTransID, 10, 32)
	if err != nil || orderID == 0 {
		return nil, apperrors.NewParseFailure("trans_id parameter is not an order id", rawTransID)
	}

	outcome := confirmation.OutcomeFailed
	if valid {
		outcome = confirmation.OutcomeSuccess
	}

	transactionID := rawTransID
	if authCode, ok := cb.QueryValue(legacyParamAuthCode); ok && strings.TrimSpace(authCode) != "" {
		transactionID = authCode
	}

	c, err := confirmation.NewPaymentConfirmation(
		confirmation.VariantLegacy,
		confirmation.OrderReferenceByID(uint(orderID)),
		transactionID,
		outcome,
	)
	if err != nil {
		return nil, apperrors.NewParseFailure("incomplete legacy callback", err.Error())
	}
	return c, nil
}
