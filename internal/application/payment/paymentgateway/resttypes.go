package paymentgateway

import "encoding/json"

// Wire types of the hosted session API.

const (
	RESTStatusSuccess = "SUCCESS"
	RESTFormatJSON    = "REST_JSON"
)

type SessionRequest struct {
	Transaction SessionTransaction `json:"transaction"`
	Customer    SessionCustomer    `json:"customer"`
	Locale      string             `json:"locale,omitempty"`
	Session     SessionCallbacks   `json:"session"`
}

type SessionTransaction struct {
	MerchantReference string       `json:"merchantReference"`
	Money             SessionMoney `json:"money"`
	Description       string       `json:"description,omitempty"`
}

type SessionMoney struct {
	Currency string        `json:"currency"`
	Amount   SessionAmount `json:"amount"`
}

// SessionAmount.Fixed is a JSON number with two decimal places.
type SessionAmount struct {
	Fixed json.Number `json:"fixed"`
}

type SessionCustomer struct {
	Registered bool `json:"registered"`
}

type SessionCallbacks struct {
	PreAuthCallback         *SessionNotification `json:"preAuthCallback,omitempty"`
	PostAuthCallback        *SessionNotification `json:"postAuthCallback,omitempty"`
	TransactionNotification SessionNotification  `json:"transactionNotification"`
	ReturnURL               SessionURL           `json:"returnUrl"`
	CancelURL               SessionURL           `json:"cancelUrl"`
}

type SessionNotification struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type SessionURL struct {
	URL string `json:"url"`
}

type SessionResponse struct {
	SessionID     string `json:"sessionId"`
	RedirectURL   string `json:"redirectUrl"`
	Status        string `json:"status"`
	ReasonCode    string `json:"reasonCode"`
	ReasonMessage string `json:"reasonMessage"`
}

// TransactionNotification is the body the gateway posts to the Callback route.
type TransactionNotification struct {
	SessionID   string                  `json:"sessionId"`
	Transaction NotificationTransaction `json:"transaction"`
}

type NotificationTransaction struct {
	TransactionID string `json:"transactionId"`
	MerchantRef   string `json:"merchantRef"`
	Status        string `json:"status"`
}
