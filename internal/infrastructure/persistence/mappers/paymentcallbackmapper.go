package mappers

import (
	"gorm.io/datatypes"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
)

func CallbackRecordToModel(r *confirmation.CallbackRecord) *models.PaymentCallbackModel {
	model := &models.PaymentCallbackModel{
		Variant:       r.Variant.String(),
		Stage:         r.Stage,
		OrderRef:      r.OrderRef,
		Outcome:       r.Outcome,
		TransactionID: r.TransactionID,
		RequestURI:    r.RequestURI,
		RemoteIP:      r.RemoteIP,
		Reason:        truncate(r.Reason, 512),
		ReceivedAt:    r.ReceivedAt,
	}
	if len(r.RawPayload) > 0 {
		model.RawPayload = datatypes.JSON(r.RawPayload)
	}
	return model
}

func CallbackRecordToDomain(model *models.PaymentCallbackModel) *confirmation.CallbackRecord {
	return &confirmation.CallbackRecord{
		Variant:       confirmation.Variant(model.Variant),
		Stage:         model.Stage,
		OrderRef:      model.OrderRef,
		Outcome:       model.Outcome,
		TransactionID: model.TransactionID,
		RequestURI:    model.RequestURI,
		RawPayload:    []byte(model.RawPayload),
		RemoteIP:      model.RemoteIP,
		Reason:        model.Reason,
		ReceivedAt:    model.ReceivedAt,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
