package mappers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/orris-inc/paypoint/internal/domain/order"
	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                   o.ID(),
		OrderGUID:            o.OrderGUID().String(),
		CustomerEmail:        o.CustomerEmail(),
		OrderTotal:           o.Total(),
		CurrencyCode:         o.Currency(),
		PaymentStatus:        o.PaymentStatus().String(),
		CaptureTransactionID: o.CaptureTransactionID(),
		PaidAt:               o.PaidAt(),
		Version:              o.Version(),
		CreatedAt:            o.CreatedAt(),
		UpdatedAt:            o.UpdatedAt(),
	}
}

func OrderToDomain(model *models.OrderModel) (*order.Order, error) {
	guid, err := uuid.Parse(model.OrderGUID)
	if err != nil {
		return nil, fmt.Errorf("invalid order guid %q: %w", model.OrderGUID, err)
	}

	return order.ReconstructOrder(
		model.ID,
		guid,
		model.CustomerEmail,
		model.OrderTotal,
		model.CurrencyCode,
		vo.PaymentStatus(model.PaymentStatus),
		model.CaptureTransactionID,
		model.PaidAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
