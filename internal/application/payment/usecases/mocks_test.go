package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/domain/order"
	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
)

// memOrderRepository stores snapshots so callers never share an aggregate,
// and applies MarkPaidIfPending as a compare-and-set.
type memOrderRepository struct {
	mu     sync.Mutex
	orders map[uint]orderRow
	// GetByIDErr, when set, is returned by GetByID and GetByGUID.
	GetByIDErr error
	markCalls  int
}

type orderRow struct {
	guid      uuid.UUID
	email     string
	total     decimal.Decimal
	currency  string
	status    vo.PaymentStatus
	txID      *string
	paidAt    *time.Time
	version   int
	createdAt time.Time
}

func newMemOrderRepository() *memOrderRepository {
	return &memOrderRepository{orders: make(map[uint]orderRow)}
}

func (m *memOrderRepository) add(id uint, guid uuid.UUID, status vo.PaymentStatus, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[id] = orderRow{
		guid:      guid,
		email:     "buyer@example.com",
		total:     decimal.RequireFromString("10.00"),
		currency:  "GBP",
		status:    status,
		version:   1,
		createdAt: createdAt,
	}
}

func (m *memOrderRepository) snapshot(id uint) (*order.Order, error) {
	row, ok := m.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	var txID *string
	if row.txID != nil {
		v := *row.txID
		txID = &v
	}
	return order.ReconstructOrder(id, row.guid, row.email, row.total, row.currency, row.status, txID, row.paidAt, row.version, row.createdAt, row.createdAt)
}

func (m *memOrderRepository) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uint(len(m.orders) + 1)
	o.SetID(id)
	m.orders[id] = orderRow{guid: o.OrderGUID(), email: o.CustomerEmail(), total: o.Total(), currency: o.Currency(), status: o.PaymentStatus(), version: o.Version(), createdAt: o.CreatedAt()}
	return nil
}

func (m *memOrderRepository) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	return m.snapshot(id)
}

func (m *memOrderRepository) GetByGUID(ctx context.Context, guid uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	for id, row := range m.orders {
		if row.guid == guid {
			return m.snapshot(id)
		}
	}
	return nil, apperrors.NewNotFoundError("order not found")
}

func (m *memOrderRepository) MarkPaidIfPending(ctx context.Context, o *order.Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	row, ok := m.orders[o.ID()]
	if !ok || row.status != vo.PaymentStatusPending {
		return false, nil
	}
	txID := *o.CaptureTransactionID()
	row.status = vo.PaymentStatusPaid
	row.txID = &txID
	row.paidAt = o.PaidAt()
	row.version++
	m.orders[o.ID()] = row
	return true, nil
}

func (m *memOrderRepository) status(id uint) vo.PaymentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].status
}

func (m *memOrderRepository) transactionID(id uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx := m.orders[id].txID; tx != nil {
		return *tx
	}
	return ""
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLocker struct {
	TryLockFunc func(ctx context.Context, orderID uint) (func(), bool, error)
}

func (m *mockLocker) TryLock(ctx context.Context, orderID uint) (func(), bool, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, orderID)
	}
	return func() {}, true, nil
}

// mutexLocker serializes every order behind one mutex.
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) TryLock(ctx context.Context, orderID uint) (func(), bool, error) {
	l.mu.Lock()
	return l.mu.Unlock, true, nil
}

type mockGateway struct {
	VariantValue       confirmation.Variant
	VerifyCallbackFunc func(cb *paymentgateway.Callback) (*confirmation.PaymentConfirmation, error)
	CreatePaymentFunc  func(ctx context.Context, req paymentgateway.CreatePaymentRequest) (*paymentgateway.CreatePaymentResponse, error)
}

func (m *mockGateway) Variant() confirmation.Variant {
	if m.VariantValue == "" {
		return confirmation.VariantREST
	}
	return m.VariantValue
}

func (m *mockGateway) VerifyCallback(cb *paymentgateway.Callback) (*confirmation.PaymentConfirmation, error) {
	if m.VerifyCallbackFunc != nil {
		return m.VerifyCallbackFunc(cb)
	}
	return nil, apperrors.NewVerificationFailure("not configured")
}

func (m *mockGateway) CreatePayment(ctx context.Context, req paymentgateway.CreatePaymentRequest) (*paymentgateway.CreatePaymentResponse, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, req)
	}
	return &paymentgateway.CreatePaymentResponse{}, nil
}

func (m *mockGateway) Capabilities() paymentgateway.Capabilities {
	return paymentgateway.Capabilities{}
}

func (m *mockGateway) Capture(ctx context.Context, orderID uint) error {
	return apperrors.NewNotSupportedError("capture method not supported")
}

func (m *mockGateway) Refund(ctx context.Context, orderID uint, amount decimal.Decimal) error {
	return apperrors.NewNotSupportedError("refund method not supported")
}

func (m *mockGateway) Void(ctx context.Context, orderID uint) error {
	return apperrors.NewNotSupportedError("void method not supported")
}

type mockCallbackLog struct {
	mu      sync.Mutex
	records []*confirmation.CallbackRecord
}

func (m *mockCallbackLog) Record(ctx context.Context, record *confirmation.CallbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockCallbackLog) ListByOrderRef(ctx context.Context, orderRef string) ([]*confirmation.CallbackRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*confirmation.CallbackRecord
	for _, r := range m.records {
		if r.OrderRef == orderRef {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockMetrics struct {
	mu     sync.Mutex
	stages []string
}

func (m *mockMetrics) ObserveCallback(variant string, stage string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

type mockNotifier struct {
	calls chan OrderPaidCommand
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{calls: make(chan OrderPaidCommand, 4)}
}

func (m *mockNotifier) NotifyOrderPaid(ctx context.Context, cmd OrderPaidCommand) error {
	m.calls <- cmd
	return nil
}
