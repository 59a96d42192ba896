package services_test

import (
	"testing"

	"github.com/ledgerpay/refund-service/internal/application/services"
	"github.com/ledgerpay/refund-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestChargeAdjuster_Adjust(t *testing.T) {
	adjuster := services.ChargeAdjuster{}

	tests := []struct {
		name      string
		fees      string
		taxes     string
		requested string
		want      string
	}{
		{"whole amounts", "2", "1", "50", "47"},
		{"zero charges", "0", "0", "50", "50"},
		{"fractional cents stay exact", "0.10", "0.05", "0.30", "0.15"},
		{"charges exceed request", "5", "5", "3", "-7"},
		{"repeating-unfriendly decimals", "0.1", "0.2", "0.3", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := &domain.Transaction{
				TransactionID: "TXN1",
				Fees:          dec(t, tt.fees),
				Taxes:         dec(t, tt.taxes),
			}

			got := adjuster.Adjust(original, dec(t, tt.requested))
			assert.True(t, got.Equal(dec(t, tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestChargeAdjuster_Remaining(t *testing.T) {
	adjuster := services.ChargeAdjuster{}

	tests := []struct {
		name          string
		original      string
		totalRefunded string
		want          string
	}{
		{"partial refund leaves balance", "100", "30", "70"},
		{"over-refund clamps to zero", "100", "120", "0"},
		{"fully refunded", "100", "100", "0"},
		{"nothing refunded", "100", "0", "100"},
		{"exact decimals", "99.99", "33.33", "66.66"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adjuster.Remaining(dec(t, tt.original), dec(t, tt.totalRefunded))
			assert.True(t, got.Equal(dec(t, tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}
