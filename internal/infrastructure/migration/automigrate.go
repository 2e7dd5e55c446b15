package migration

import (
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.OrderModel{},
		&models.PaymentCallbackModel{},
	}
}
