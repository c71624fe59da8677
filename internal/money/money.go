// Package money converts and formats USD-denominated amounts for display.
//
// Every stored amount is USD. Other currencies are derived on the fly from a
// fixed exchange rate and are never persisted as the canonical value.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Currency string

const (
	USD Currency = "USD"
	LKR Currency = "LKR"
)

// ExchangeRate is the number of LKR per USD.
const ExchangeRate = 320

var ErrUnknownCurrency = errors.New("unknown currency")

var (
	ErrMalformedPrice = errors.New("malformed price")
	ErrNegativePrice  = errors.New("price must not be negative")
)

var (
	rate         = decimal.NewFromInt(ExchangeRate)
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
	grouping     = message.NewPrinter(language.English)
)

func ParseCurrency(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case USD:
		return USD, nil
	case LKR:
		return LKR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
}

// Toggle flips between the two supported currencies.
func (c Currency) Toggle() Currency {
	if c == LKR {
		return USD
	}
	return LKR
}

func (c Currency) Symbol() string {
	if c == LKR {
		return "Rs"
	}
	return "$"
}

// Convert derives the amount in target from a USD amount.
func Convert(amountUSD decimal.Decimal, target Currency) decimal.Decimal {
	if target == LKR {
		return amountUSD.Mul(rate)
	}
	return amountUSD
}

// Format renders a USD amount in target. USD keeps two decimals, LKR is
// rounded to whole rupees and grouped by thousands.
func Format(amountUSD decimal.Decimal, target Currency) string {
	if target == LKR {
		rupees := Convert(amountUSD, LKR).Round(0).IntPart()
		return "Rs " + grouping.Sprintf("%d", rupees)
	}
	return "$" + amountUSD.StringFixed(2)
}

// FormatPrice is the serialized form of a catalog price, e.g. "$9.99".
func FormatPrice(amountUSD decimal.Decimal) string {
	return Format(amountUSD, USD)
}

// ParsePrice reads the numeric magnitude of a currency-prefixed price such as
// "$9.99". Anything without a leading number, or a negative one, yields zero.
func ParsePrice(raw string) decimal.Decimal {
	d, ok := parseLeadingNumber(raw)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParsePriceStrict is the catalog-write counterpart of ParsePrice: the whole
// input must be a non-negative number, optionally prefixed with "$".
func ParsePriceStrict(raw string) (decimal.Decimal, error) {
	cleaned := normalize(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedPrice, raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedPrice, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	return d, nil
}

func parseLeadingNumber(raw string) (decimal.Decimal, bool) {
	match := numberPrefix.FindString(normalize(raw))
	if match == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(match, "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
