package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	t.Run("USD is the identity", func(t *testing.T) {
		for _, raw := range []string{"0", "0.01", "19.98", "123456.78"} {
			x := decimal.RequireFromString(raw)
			assert.True(t, Convert(x, USD).Equal(x), raw)
		}
	})

	t.Run("LKR multiplies by the fixed rate", func(t *testing.T) {
		for _, raw := range []string{"0", "0.01", "9.99", "30", "1000.5"} {
			x := decimal.RequireFromString(raw)
			want := x.Mul(decimal.NewFromInt(320))
			assert.True(t, Convert(x, LKR).Equal(want), raw)
		}
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		want     string
	}{
		{"USD two decimals", "19.98", USD, "$19.98"},
		{"USD pads zeros", "30", USD, "$30.00"},
		{"USD zero", "0", USD, "$0.00"},
		{"LKR grouped", "30", LKR, "Rs 9,600"},
		{"LKR rounds to rupees", "9.99", LKR, "Rs 3,197"},
		{"LKR small", "1", LKR, "Rs 320"},
		{"LKR millions", "10000", LKR, "Rs 3,200,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestFormat_LKRHasNoDecimalPoint(t *testing.T) {
	for _, raw := range []string{"0.01", "0.5", "9.99", "8.49", "1234.567", "0.0031"} {
		got := Format(decimal.RequireFromString(raw), LKR)
		assert.False(t, strings.Contains(got, "."), "%s formatted as %s", raw, got)
		assert.True(t, strings.HasPrefix(got, "Rs "), got)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$9.99", "9.99"},
		{"9.99", "9.99"},
		{" $ 8.49 ", "8.49"},
		{"$1,299.00", "1299"},
		{"$10.", "10"},
		{"$.5", "0.5"},
		{"12.5abc", "12.5"},
		{"", "0"},
		{"$", "0"},
		{"free", "0"},
		{"$abc", "0"},
		{"-5", "0"},
		{"$-12.50", "0"},
		{"+5", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParsePrice(tt.raw)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParsePriceStrict(t *testing.T) {
	d, err := ParsePriceStrict("$9.99")
	require.NoError(t, err)
	assert.Equal(t, "9.99", d.String())

	_, err = ParsePriceStrict("12.5abc")
	assert.ErrorIs(t, err, ErrMalformedPrice)

	_, err = ParsePriceStrict("$")
	assert.ErrorIs(t, err, ErrMalformedPrice)

	_, err = ParsePriceStrict("-3")
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("lkr")
	require.NoError(t, err)
	assert.Equal(t, LKR, c)

	c, err = ParseCurrency(" USD ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("EUR")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestCurrency_ToggleAndSymbol(t *testing.T) {
	assert.Equal(t, LKR, USD.Toggle())
	assert.Equal(t, USD, LKR.Toggle())
	assert.Equal(t, "$", USD.Symbol())
	assert.Equal(t, "Rs", LKR.Symbol())
}
