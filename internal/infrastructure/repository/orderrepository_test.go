package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/domain/order"
	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	"github.com/orris-inc/paypoint/internal/shared/db"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
)

func createTestOrder(t *testing.T, repo *OrderRepository) *order.Order {
	t.Helper()
	o, err := order.NewOrder("buyer@example.com", decimal.RequireFromString("42.50"), "gbp")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), o))
	require.NotZero(t, o.ID())
	return o
}

func TestOrderRepository_Get(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()
	created := createTestOrder(t, repo)

	t.Run("by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, created.OrderGUID(), found.OrderGUID())
		assert.True(t, decimal.RequireFromString("42.5").Equal(found.Total()))
		assert.Equal(t, "GBP", found.Currency())
		assert.Equal(t, vo.PaymentStatusPending, found.PaymentStatus())
		assert.Nil(t, found.CaptureTransactionID())
	})

	t.Run("by guid", func(t *testing.T) {
		found, err := repo.GetByGUID(ctx, created.OrderGUID())
		require.NoError(t, err)
		assert.Equal(t, created.ID(), found.ID())
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("unknown guid", func(t *testing.T) {
		_, err := repo.GetByGUID(ctx, uuid.New())
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestOrderRepository_MarkPaidIfPending(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()
	created := createTestOrder(t, repo)

	first, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)

	require.NoError(t, first.MarkAsPaid("T1"))
	require.NoError(t, second.MarkAsPaid("T2"))

	updated, err := repo.MarkPaidIfPending(ctx, first)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.MarkPaidIfPending(ctx, second)
	require.NoError(t, err)
	assert.False(t, updated, "stale aggregate must lose")

	stored, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPaid, stored.PaymentStatus())
	require.NotNil(t, stored.CaptureTransactionID())
	assert.Equal(t, "T1", *stored.CaptureTransactionID())
	assert.NotNil(t, stored.PaidAt())
	assert.Equal(t, created.Version()+1, stored.Version())
}

func TestOrderRepository_MarkPaidIfPending_RequiresPaidAggregate(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	created := createTestOrder(t, repo)

	_, err := repo.MarkPaidIfPending(context.Background(), created)

	assert.Error(t, err)
}

func TestOrderRepository_RollbackLeavesOrderPending(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewOrderRepository(gdb)
	txManager := db.NewTransactionManager(gdb)
	ctx := context.Background()
	created := createTestOrder(t, repo)

	boom := errors.New("boom")
	err := txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		o, err := repo.GetByID(txCtx, created.ID())
		if err != nil {
			return err
		}
		if err := o.MarkAsPaid("T1"); err != nil {
			return err
		}
		if _, err := repo.MarkPaidIfPending(txCtx, o); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPending, stored.PaymentStatus())
	assert.Nil(t, stored.CaptureTransactionID())
}

func TestPaymentCallbackRepository(t *testing.T) {
	repo := NewPaymentCallbackRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	records := []*confirmation.CallbackRecord{
		{
			Variant:    confirmation.VariantREST,
			Stage:      "applied",
			OrderRef:   "ref-1",
			Outcome:    "SUCCESS",
			RawPayload: []byte(`{"body":{"transaction":{"status":"SUCCESS"}}}`),
			RemoteIP:   "203.0.113.1",
			ReceivedAt: now,
		},
		{
			Variant:    confirmation.VariantREST,
			Stage:      "skipped_already_terminal",
			OrderRef:   "ref-1",
			ReceivedAt: now.Add(time.Second),
		},
		{
			Variant:    confirmation.VariantLegacy,
			Stage:      "rejected_unverified",
			RequestURI: "/Plugins/PaymentPayPoint/Return?trans_id=1",
			ReceivedAt: now,
		},
	}
	for _, r := range records {
		require.NoError(t, repo.Record(ctx, r))
	}

	found, err := repo.ListByOrderRef(ctx, "ref-1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "applied", found[0].Stage)
	assert.Equal(t, "skipped_already_terminal", found[1].Stage)
	assert.JSONEq(t, `{"body":{"transaction":{"status":"SUCCESS"}}}`, string(found[0].RawPayload))
	assert.Equal(t, "203.0.113.1", found[0].RemoteIP)

	none, err := repo.ListByOrderRef(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
