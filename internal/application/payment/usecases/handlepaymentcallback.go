package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/domain/order"
	"github.com/orris-inc/paypoint/internal/shared/biztime"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
	"github.com/orris-inc/paypoint/internal/shared/goroutine"
	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

// Stage is where a callback left the confirmation pipeline.
type Stage string

const (
	StageReceived Stage = "received"
	StageVerified Stage = "verified"
	StageResolved Stage = "resolved"
	StageApplied  Stage = "applied"

	StageRejectedUnverified     Stage = "rejected_unverified"
	StageRejectedMalformed      Stage = "rejected_malformed"
	StageRejectedOrderNotFound  Stage = "rejected_order_not_found"
	StageSkippedAlreadyTerminal Stage = "skipped_already_terminal"
	StageIgnoredOutcome         Stage = "ignored_outcome"
	StageFailed                 Stage = "failed"
)

func (s Stage) String() string {
	return string(s)
}

// CallbackResult describes one pipeline run. The transport acknowledges
// every result with 200; Stage only selects the body and the log level.
type CallbackResult struct {
	Stage        Stage
	Variant      confirmation.Variant
	Confirmation *confirmation.PaymentConfirmation
	OrderID      uint
	Reason       string
}

// TransactionRunner runs fn in a database transaction carried by ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderLocker serializes confirmation of one order across requests.
type OrderLocker interface {
	// TryLock waits up to the locker's wait window. ok is false when another
	// holder kept the lock for the whole wait.
	TryLock(ctx context.Context, orderID uint) (release func(), ok bool, err error)
}

// CallbackMetrics counts pipeline exits.
type CallbackMetrics interface {
	ObserveCallback(variant string, stage string, elapsed time.Duration)
}

// PaidOrderNotifier is told about every order the pipeline marks paid
type PaidOrderNotifier interface {
	NotifyOrderPaid(ctx context.Context, cmd OrderPaidCommand) error
}

// OrderPaidCommand contains data for the paid order notification
type OrderPaidCommand struct {
	OrderID       uint
	OrderGUID     string
	CustomerEmail string
	Total         decimal.Decimal
	Currency      string
	Variant       string
	TransactionID string
	PaidAt        time.Time
}

const (
	notifyTimeout = 30 * time.Second
	// maxLoggedBody caps rejected payloads in log lines.
	maxLoggedBody = 512
)

type HandlePaymentCallbackUseCase struct {
	orderRepo   order.OrderRepository
	gateway     paymentgateway.CallbackVerifier
	txManager   TransactionRunner
	locker      OrderLocker
	callbackLog confirmation.CallbackRecordRepository // Optional
	notifier    PaidOrderNotifier                     // Optional
	metrics     CallbackMetrics                       // Optional
	logger      logger.Interface
}

func NewHandlePaymentCallbackUseCase(
	orderRepo order.OrderRepository,
	gateway paymentgateway.CallbackVerifier,
	txManager TransactionRunner,
	locker OrderLocker,
	logger logger.Interface,
) *HandlePaymentCallbackUseCase {
	return &HandlePaymentCallbackUseCase{
		orderRepo: orderRepo,
		gateway:   gateway,
		txManager: txManager,
		locker:    locker,
		logger:    logger,
	}
}

// SetCallbackLog sets the reconciliation log (optional dependency injection)
func (uc *HandlePaymentCallbackUseCase) SetCallbackLog(repo confirmation.CallbackRecordRepository) {
	uc.callbackLog = repo
}

// SetNotifier sets the paid order notifier (optional dependency injection)
func (uc *HandlePaymentCallbackUseCase) SetNotifier(notifier PaidOrderNotifier) {
	uc.notifier = notifier
}

// SetMetrics sets the stage counters (optional dependency injection)
func (uc *HandlePaymentCallbackUseCase) SetMetrics(metrics CallbackMetrics) {
	uc.metrics = metrics
}

// Execute runs one callback through verify, resolve and apply. It always
// returns a result; the error is non-nil only for StageFailed.
func (uc *HandlePaymentCallbackUseCase) Execute(ctx context.Context, cb *paymentgateway.Callback) (*CallbackResult, error) {
	started := time.Now()
	result := &CallbackResult{Stage: StageReceived, Variant: uc.gateway.Variant()}

	err := uc.process(ctx, cb, result)
	if err != nil {
		result.Stage = StageFailed
		result.Reason = err.Error()
	}

	uc.logResult(result, cb)
	uc.record(ctx, cb, result)
	if uc.metrics != nil {
		uc.metrics.ObserveCallback(result.Variant.String(), result.Stage.String(), time.Since(started))
	}

	return result, err
}

func (uc *HandlePaymentCallbackUseCase) process(ctx context.Context, cb *paymentgateway.Callback, result *CallbackResult) error {
	c, err := uc.gateway.VerifyCallback(cb)
	if err != nil {
		switch {
		case apperrors.IsVerificationFailure(err):
			result.Stage = StageRejectedUnverified
		case apperrors.IsParseFailure(err):
			result.Stage = StageRejectedMalformed
		default:
			return fmt.Errorf("failed to verify callback: %w", err)
		}
		result.Reason = err.Error()
		return nil
	}
	result.Stage = StageVerified
	result.Confirmation = c

	if !c.Outcome().IsSuccess() {
		result.Stage = StageIgnoredOutcome
		result.Reason = "gateway reported " + c.Outcome().String()
		return nil
	}

	o, err := uc.resolve(ctx, c.OrderRef())
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			result.Stage = StageRejectedOrderNotFound
			result.Reason = err.Error()
			return nil
		}
		return fmt.Errorf("failed to load order %s: %w", c.OrderRef(), err)
	}
	result.Stage = StageResolved
	result.OrderID = o.ID()

	if !o.CanMarkPaid() {
		result.Stage = StageSkippedAlreadyTerminal
		result.Reason = "order is " + o.PaymentStatus().String()
		return nil
	}

	return uc.apply(ctx, c, o, result)
}

func (uc *HandlePaymentCallbackUseCase) resolve(ctx context.Context, ref confirmation.OrderReference) (*order.Order, error) {
	if ref.IsGUID() {
		return uc.orderRepo.GetByGUID(ctx, ref.GUID())
	}
	return uc.orderRepo.GetByID(ctx, ref.ID())
}

// apply marks the order paid under the per-order lock. The conditional
// update is the source of truth; the lock only keeps duplicates from
// queueing on the row.
func (uc *HandlePaymentCallbackUseCase) apply(ctx context.Context, c *confirmation.PaymentConfirmation, o *order.Order, result *CallbackResult) error {
	release, ok, err := uc.locker.TryLock(ctx, o.ID())
	if err != nil {
		return fmt.Errorf("failed to lock order %d: %w", o.ID(), err)
	}
	if !ok {
		current, err := uc.orderRepo.GetByID(ctx, o.ID())
		if err == nil && !current.CanMarkPaid() {
			result.Stage = StageSkippedAlreadyTerminal
			result.Reason = "order confirmed by a concurrent callback"
			return nil
		}
		return apperrors.NewConflictError("order is locked by a concurrent callback")
	}
	defer release()

	var paid *order.Order
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		current, err := uc.orderRepo.GetByID(txCtx, o.ID())
		if err != nil {
			return err
		}
		if !current.CanMarkPaid() {
			return apperrors.NewAlreadyTerminal("order is no longer pending", current.PaymentStatus().String())
		}
		if err := current.MarkAsPaid(c.TransactionID()); err != nil {
			return err
		}
		updated, err := uc.orderRepo.MarkPaidIfPending(txCtx, current)
		if err != nil {
			return err
		}
		if !updated {
			return apperrors.NewAlreadyTerminal("order was marked paid concurrently")
		}
		paid = current
		return nil
	})
	if err != nil {
		if apperrors.IsAlreadyTerminal(err) {
			result.Stage = StageSkippedAlreadyTerminal
			result.Reason = err.Error()
			return nil
		}
		return fmt.Errorf("failed to mark order %d as paid: %w", o.ID(), err)
	}

	result.Stage = StageApplied
	uc.notifyPaid(paid, result.Variant)
	return nil
}

func (uc *HandlePaymentCallbackUseCase) notifyPaid(o *order.Order, variant confirmation.Variant) {
	if uc.notifier == nil {
		return
	}

	cmd := OrderPaidCommand{
		OrderID:       o.ID(),
		OrderGUID:     o.OrderGUID().String(),
		CustomerEmail: o.CustomerEmail(),
		Total:         o.Total(),
		Currency:      o.Currency(),
		Variant:       variant.String(),
		PaidAt:        biztime.NowUTC(),
	}
	if id := o.CaptureTransactionID(); id != nil {
		cmd.TransactionID = *id
	}
	if at := o.PaidAt(); at != nil {
		cmd.PaidAt = *at
	}

	goroutine.SafeGoWithTimeout(uc.logger, "payment-callback-notify-operators", notifyTimeout, func(ctx context.Context) {
		if err := uc.notifier.NotifyOrderPaid(ctx, cmd); err != nil {
			uc.logger.Warnw("failed to notify operators about paid order", "order_id", cmd.OrderID, "error", err)
		}
	})
}

func (uc *HandlePaymentCallbackUseCase) logResult(result *CallbackResult, cb *paymentgateway.Callback) {
	fields := []any{
		"variant", result.Variant,
		"stage", result.Stage,
		"remote_ip", cb.RemoteIP,
	}
	if c := result.Confirmation; c != nil {
		fields = append(fields,
			"order_ref", c.OrderRef().String(),
			"outcome", c.Outcome(),
			"transaction_id", c.TransactionID(),
		)
		if c.SessionID() != "" {
			fields = append(fields, "session_id", c.SessionID())
		}
	}
	if result.Reason != "" {
		fields = append(fields, "reason", result.Reason)
	}

	switch result.Stage {
	case StageApplied:
		uc.logger.Infow("order marked as paid", fields...)
	case StageSkippedAlreadyTerminal, StageIgnoredOutcome:
		uc.logger.Infow("payment callback acknowledged without change", fields...)
	case StageFailed:
		uc.logger.Errorw("payment callback failed", fields...)
	default:
		if hash := cb.Query["hash"]; len(hash) > 0 {
			fields = append(fields, "hash", utils.MaskSecret(hash[0]))
		}
		if len(cb.Body) > 0 {
			fields = append(fields, "body", utils.TruncateForLog(string(cb.Body), maxLoggedBody))
		}
		uc.logger.Warnw("payment callback rejected", fields...)
	}
}

func (uc *HandlePaymentCallbackUseCase) record(ctx context.Context, cb *paymentgateway.Callback, result *CallbackResult) {
	if uc.callbackLog == nil {
		return
	}

	redacted := cb.Redacted()
	rec := &confirmation.CallbackRecord{
		Variant:    result.Variant,
		Stage:      result.Stage.String(),
		RequestURI: redacted.RequestURI,
		RawPayload: rawPayload(redacted),
		RemoteIP:   cb.RemoteIP,
		Reason:     result.Reason,
		ReceivedAt: biztime.NowUTC(),
	}
	if c := result.Confirmation; c != nil {
		rec.OrderRef = c.OrderRef().String()
		rec.Outcome = c.Outcome().String()
		rec.TransactionID = c.TransactionID()
	}

	// The request may already be cancelled; the log row must still land.
	if err := uc.callbackLog.Record(context.WithoutCancel(ctx), rec); err != nil {
		uc.logger.Warnw("failed to record payment callback", "stage", result.Stage, "error", err)
	}
}

// rawPayload keeps the query and the body as one JSON document.
func rawPayload(cb *paymentgateway.Callback) []byte {
	payload := make(map[string]any, 2)
	if len(cb.Query) > 0 {
		payload["query"] = cb.Query
	}
	if len(cb.Body) > 0 {
		if json.Valid(cb.Body) {
			payload["body"] = json.RawMessage(cb.Body)
		} else {
			payload["body"] = string(cb.Body)
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return []byte("{}")
	}
	return b
}
