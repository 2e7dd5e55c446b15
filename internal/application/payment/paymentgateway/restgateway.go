package paymentgateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/shared/config"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

const (
	sessionPath          = "/hosted/rest/sessions/{installationId}/payments"
	notificationTokenKey = "token"
)

// RESTGateway speaks the hosted session generation: a server-to-server
// session call returns a redirect URL, and the gateway later posts a JSON
// transaction notification.
type RESTGateway struct {
	unsupportedOperations
	cfg    config.PayPointRESTConfig
	client *resty.Client
	logger logger.Interface
}

func NewRESTGateway(cfg config.PayPointRESTConfig, logger logger.Interface) *RESTGateway {
	client := resty.New().
		SetBaseURL(cfg.Host()).
		SetBasicAuth(cfg.APIUsername, cfg.APIPassword).
		SetTimeout(cfg.Timeout()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RESTGateway{cfg: cfg, client: client, logger: logger.Named("paypoint.rest")}
}

func (g *RESTGateway) Variant() confirmation.Variant {
	return confirmation.VariantREST
}

// CreatePayment opens a hosted payment session. Anything other than a
// SUCCESS session with a redirect URL is UpstreamUnavailable, including
// transport errors and timeouts.
func (g *RESTGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	body := SessionRequest{
		Transaction: SessionTransaction{
			MerchantReference: req.OrderGUID.String(),
			Money: SessionMoney{
				Currency: req.Currency,
				Amount:   SessionAmount{Fixed: json.Number(req.Amount.StringFixed(2))},
			},
			Description: req.Description,
		},
		Customer: SessionCustomer{Registered: false},
		Locale:   g.cfg.Locale,
		Session: SessionCallbacks{
			TransactionNotification: SessionNotification{URL: g.notificationURL(req.NotificationURL), Format: RESTFormatJSON},
			ReturnURL:               SessionURL{URL: req.ReturnURL},
			CancelURL:               SessionURL{URL: req.CancelURL},
		},
	}

	var result SessionResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("installationId", g.cfg.InstallationID).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post(sessionPath)
	if err != nil {
		reason := "request failed"
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			reason = "request timed out"
		}
		g.logger.Errorw("payment session request failed",
			"order_id", req.OrderID,
			"reason", reason,
			"error", err,
		)
		return nil, apperrors.NewUpstreamUnavailable("payment gateway is unavailable", reason)
	}

	if resp.IsError() || result.Status != RESTStatusSuccess || result.RedirectURL == "" {
		g.logger.Errorw("payment session rejected",
			"order_id", req.OrderID,
			"http_status", resp.StatusCode(),
			"status", result.Status,
			"reason_code", result.ReasonCode,
			"reason_message", result.ReasonMessage,
		)
		return nil, apperrors.NewUpstreamUnavailable("payment session was not created", result.ReasonCode+" "+result.ReasonMessage)
	}

	g.logger.Infow("payment session created",
		"order_id", req.OrderID,
		"session_id", result.SessionID,
	)

	return &CreatePaymentResponse{SessionID: result.SessionID, RedirectURL: result.RedirectURL}, nil
}

// VerifyCallback parses the notification body and authenticates it. The
// notification carries no signature: when a notification token is
// configured it must match the one embedded in the callback URL.
func (g *RESTGateway) VerifyCallback(cb *Callback) (*confirmation.PaymentConfirmation, error) {
	if g.cfg.NotificationToken != "" {
		token, _ := cb.QueryValue(notificationTokenKey)
		if subtle.ConstantTimeCompare([]byte(token), []byte(g.cfg.NotificationToken)) != 1 {
			return nil, apperrors.NewVerificationFailure("notification token mismatch")
		}
	}
	return ParseRESTNotification(cb.Body)
}

// ParseRESTNotification turns a transaction notification body into a
// confirmation. merchantRef must be an order GUID and status one of the six
// gateway outcomes.
func ParseRESTNotification(body []byte) (*confirmation.PaymentConfirmation, error) {
	if len(body) == 0 {
		return nil, apperrors.NewParseFailure("empty notification body")
	}

	var n TransactionNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, apperrors.NewParseFailure("notification body is not valid JSON", err.Error())
	}

	guid, err := uuid.Parse(n.Transaction.MerchantRef)
	if err != nil || guid == uuid.Nil {
		return nil, apperrors.NewParseFailure("merchantRef is not an order GUID", n.Transaction.MerchantRef)
	}

	outcome, err := confirmation.ParseOutcome(n.Transaction.Status)
	if err != nil {
		return nil, apperrors.NewParseFailure("unknown transaction status", n.Transaction.Status)
	}

	c, err := confirmation.NewPaymentConfirmation(
		confirmation.VariantREST,
		confirmation.OrderReferenceByGUID(guid),
		n.Transaction.TransactionID,
		outcome,
	)
	if err != nil {
		return nil, apperrors.NewParseFailure("incomplete notification", err.Error())
	}
	return c.WithSessionID(n.SessionID), nil
}

func (g *RESTGateway) notificationURL(base string) string {
	if g.cfg.NotificationToken == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + notificationTokenKey + "=" + url.QueryEscape(g.cfg.NotificationToken)
}
