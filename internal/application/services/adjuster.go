package services

import (
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ChargeAdjuster computes refund amounts in exact decimal arithmetic.
type ChargeAdjuster struct{}

// Adjust deducts the original transaction's fees and taxes from the
// requested refund amount.
func (ChargeAdjuster) Adjust(original *domain.Transaction, requested decimal.Decimal) decimal.Decimal {
	return requested.Sub(original.Fees).Sub(original.Taxes)
}

// Remaining returns how much of the original amount is still refundable,
// clamped at zero.
func (ChargeAdjuster) Remaining(originalAmount, totalRefunded decimal.Decimal) decimal.Decimal {
	remaining := originalAmount.Sub(totalRefunded)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
