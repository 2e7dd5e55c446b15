package confirmation

import (
	"context"
	"time"
)

// CallbackRecord is one row of the reconciliation log: every inbound
// callback, its raw material and the stage the pipeline stopped at.
type CallbackRecord struct {
	Variant       Variant
	Stage         string
	OrderRef      string
	Outcome       string
	TransactionID string
	RequestURI    string
	RawPayload    []byte
	RemoteIP      string
	Reason        string
	ReceivedAt    time.Time
}

type CallbackRecordRepository interface {
	Record(ctx context.Context, record *CallbackRecord) error
	ListByOrderRef(ctx context.Context, orderRef string) ([]*CallbackRecord, error)
}
