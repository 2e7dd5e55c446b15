package usecases

import (
	"github.com/shopspring/decimal"

	"github.com/orris-inc/paypoint/internal/shared/config"
)

var hundred = decimal.NewFromInt(100)

// CalculateAdditionalFee returns the handling fee for a cart subtotal: the
// configured amount, or that percentage of subtotal, rounded to 2 places.
func CalculateAdditionalFee(subtotal decimal.Decimal, cfg config.PayPointFeeConfig) decimal.Decimal {
	if !cfg.AdditionalFee.IsPositive() {
		return decimal.Zero
	}
	fee := cfg.AdditionalFee
	if cfg.Percentage {
		if !subtotal.IsPositive() {
			return decimal.Zero
		}
		fee = subtotal.Mul(cfg.AdditionalFee).Div(hundred)
	}
	return fee.Round(2)
}
