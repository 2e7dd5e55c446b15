package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
	"github.com/orris-inc/paypoint/internal/shared/db"
)

// PaymentCallbackRepository appends to the payment_callbacks log.
type PaymentCallbackRepository struct {
	db *gorm.DB
}

func NewPaymentCallbackRepository(db *gorm.DB) *PaymentCallbackRepository {
	return &PaymentCallbackRepository{db: db}
}

func (r *PaymentCallbackRepository) Record(ctx context.Context, record *confirmation.CallbackRecord) error {
	model := mappers.CallbackRecordToModel(record)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record payment callback: %w", err)
	}

	return nil
}

func (r *PaymentCallbackRepository) ListByOrderRef(ctx context.Context, orderRef string) ([]*confirmation.CallbackRecord, error) {
	var callbackModels []models.PaymentCallbackModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_ref = ?", orderRef).
		Order("received_at ASC, id ASC").
		Find(&callbackModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment callbacks: %w", err)
	}

	records := make([]*confirmation.CallbackRecord, len(callbackModels))
	for i := range callbackModels {
		records[i] = mappers.CallbackRecordToDomain(&callbackModels[i])
	}

	return records, nil
}
