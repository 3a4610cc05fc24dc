package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"dollar sign", "Special offer $120 only", "USD"},
		{"usd code", "Price: 120 USD", "USD"},
		{"rupee sign", "₹4,999 inclusive of taxes", "INR"},
		{"rs prefix", "Rs 15,000 delivered", "PKR"},
		{"rs dot prefix", "Rs. 15,000 delivered", "PKR"},
		{"pkr code", "Total 15000 PKR", "PKR"},
		{"pound sign", "£89.99 with free shipping", "GBP"},
		{"euro sign", "Nur €59,00", "EUR"},
		{"dollar beats pound when both present", "Was £99, now $79", "USD"},
		{"no symbol defaults to usd", "Contact us for pricing", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectCurrency(tt.text))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *float64
	}{
		{"plain number", "120", floatPtr(120)},
		{"decimal", "249.99", floatPtr(249.99)},
		{"thousands separator", "1,299.50", floatPtr(1299.50)},
		{"dollar prefix", "$120", floatPtr(120)},
		{"rs prefix", "Rs. 15,000", floatPtr(15000)},
		{"usd suffix", "120 USD", floatPtr(120)},
		{"empty", "", nil},
		{"not a number", "call for price", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 0.001)
		})
	}
}

func TestPriceFromText(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		expectedPrice    *float64
		expectedCurrency string
	}{
		{
			name:             "price keyword with nearby number",
			text:             "Best price: $1,299.00 while stocks last",
			expectedPrice:    floatPtr(1299),
			expectedCurrency: "USD",
		},
		{
			name:             "cost keyword",
			text:             "Total cost is 450 including delivery, pay on arrival",
			expectedPrice:    floatPtr(450),
			expectedCurrency: "USD",
		},
		{
			name:             "keyword order beats position",
			text:             "buy for 300 ... price 200",
			expectedPrice:    floatPtr(200),
			expectedCurrency: "USD",
		},
		{
			name:             "keyword too far from number",
			text:             "price is listed somewhere else entirely on 90 this page",
			expectedPrice:    nil,
			expectedCurrency: "",
		},
		{
			name:             "generic fallback prefix form",
			text:             "limited stock €89.99 remaining",
			expectedPrice:    floatPtr(89.99),
			expectedCurrency: "EUR",
		},
		{
			name:             "rupee context",
			text:             "Price ₹4,999 only today",
			expectedPrice:    floatPtr(4999),
			expectedCurrency: "INR",
		},
		{
			name:             "no price at all",
			text:             "a lovely product description with no numbers attached",
			expectedPrice:    nil,
			expectedCurrency: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag := PriceFromText(tt.text)
			if tt.expectedPrice == nil {
				assert.Nil(t, frag.Price)
				return
			}
			require.NotNil(t, frag.Price)
			assert.InDelta(t, *tt.expectedPrice, *frag.Price, 0.001)
			assert.Equal(t, tt.expectedCurrency, frag.Currency)
		})
	}
}

func TestRescanAboveThreshold(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		min      float64
		expected *float64
	}{
		{
			name:     "skips low amounts, takes first plausible",
			text:     "Shipping $4.99, was $200.00, now $150.00",
			min:      50,
			expected: floatPtr(200),
		},
		{
			name:     "rs prefixed amount",
			text:     "Delivery Rs. 300 ... Item Rs. 12,500",
			min:      50,
			expected: floatPtr(300),
		},
		{
			name:     "nothing above threshold",
			text:     "fee $4.99 and tax $2.50",
			min:      50,
			expected: nil,
		},
		{
			name:     "no prefixed amounts",
			text:     "the item costs 500 with no symbol",
			min:      50,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RescanAboveThreshold(tt.text, tt.min)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 0.001)
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
