package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orris-inc/paypoint/internal/domain/order"
	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
	"github.com/orris-inc/paypoint/internal/shared/db"
	apperrors "github.com/orris-inc/paypoint/internal/shared/errors"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	o.SetID(model.ID)

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found", fmt.Sprintf("id=%d", id))
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) GetByGUID(ctx context.Context, guid uuid.UUID) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_guid = ?", guid.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order not found", "guid="+guid.String())
		}
		return nil, fmt.Errorf("failed to get order by guid: %w", err)
	}

	return mappers.OrderToDomain(&model)
}

// MarkPaidIfPending writes the paid state with a single conditional UPDATE.
// RowsAffected is the arbiter between concurrent confirmations.
func (r *OrderRepository) MarkPaidIfPending(ctx context.Context, o *order.Order) (bool, error) {
	if !o.PaymentStatus().IsPaid() || o.CaptureTransactionID() == nil {
		return false, fmt.Errorf("order %d has not been marked paid", o.ID())
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ? AND payment_status = ?", o.ID(), vo.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status":         o.PaymentStatus().String(),
			"capture_transaction_id": *o.CaptureTransactionID(),
			"paid_at":                o.PaidAt(),
			"version":                gorm.Expr("version + 1"),
			"updated_at":             o.UpdatedAt(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
