package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentCallbackModel is one row of the callback reconciliation log.
type PaymentCallbackModel struct {
	ID            uint           `gorm:"primaryKey"`
	Variant       string         `gorm:"size:16;not null"`
	Stage         string         `gorm:"size:32;not null;index"`
	OrderRef      string         `gorm:"size:64;index"`
	Outcome       string         `gorm:"size:16"`
	TransactionID string         `gorm:"size:128"`
	RequestURI    string         `gorm:"type:text"`
	RawPayload    datatypes.JSON `gorm:"type:json"`
	RemoteIP      string         `gorm:"size:64"`
	Reason        string         `gorm:"size:512"`
	ReceivedAt    time.Time      `gorm:"not null;index"`
	CreatedAt     time.Time
}

func (PaymentCallbackModel) TableName() string {
	return "payment_callbacks"
}
