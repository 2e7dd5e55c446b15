package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderModel is the slice of the host order row the payment plugin reads and writes.
type OrderModel struct {
	ID                   uint            `gorm:"primaryKey"`
	OrderGUID            string          `gorm:"column:order_guid;uniqueIndex;size:36;not null"`
	CustomerEmail        string          `gorm:"size:255;not null"`
	OrderTotal           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrencyCode         string          `gorm:"size:3;not null"`
	PaymentStatus        string          `gorm:"size:20;not null;index"`
	CaptureTransactionID *string         `gorm:"size:128"`
	PaidAt               *time.Time
	Version              int `gorm:"default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
