package pricing

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest quantity a cart line may hold.
const MinQuantity = 1

// DefaultTaxBps is the storefront tax rate (5%) expressed in basis points.
const DefaultTaxBps = 500

// DefaultCurrencySymbol prefixes formatted preview prices.
const DefaultCurrencySymbol = "₹"

// ErrInvalidAmount is returned when a price field does not start with a number
// or the number is outside the range a storefront price can take.
var ErrInvalidAmount = errors.New("pricing: invalid amount")

// Bounds on parsed amounts. Formatting expands the exponent into digits, so an
// unbounded exponent turns a 9-byte input into megabytes of output.
const (
	maxAmountExponent = 18
	maxAmountDigits   = 30
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ParseQuantity reads the integer prefix of raw, ignoring leading whitespace.
// "3.7" yields 3 and "2abc" yields 2. ok is false when raw has no leading digits.
func ParseQuantity(raw string) (qty int, ok bool) {
	token := leadingInt.FindString(strings.TrimLeft(raw, " \t\r\n"))
	if token == "" {
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClampQuantity parses raw and maps unparseable or below-minimum input to MinQuantity.
func ClampQuantity(raw string) int {
	qty, ok := ParseQuantity(raw)
	if !ok || qty < MinQuantity {
		return MinQuantity
	}
	return qty
}

// LeadingNumber parses the longest numeric prefix of s after leading whitespace.
// Prefixes whose exponent or digit count exceed the amount bounds are rejected.
func LeadingNumber(s string) (decimal.Decimal, bool) {
	token := leadingFloat.FindString(strings.TrimLeft(s, " \t\r\n"))
	if token == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount converts a rendered price or multiplier field into a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, ok := LeadingNumber(raw)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// UnitPrice picks the offer price while an offer is running.
func UnitPrice(base, discount decimal.Decimal, offerActive bool) decimal.Decimal {
	if offerActive {
		return discount
	}
	return base
}

// LinePrice is unit price × weight multiplier × quantity.
func LinePrice(unit, mult decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(mult).Mul(decimal.NewFromInt(int64(qty)))
}

// Summarize totals the provided line prices and applies tax.
func Summarize(lines []decimal.Decimal, taxBps int) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line)
	}
	tax := subtotal.Mul(TaxRate(taxBps))
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// TaxRate converts basis points into a fractional rate. Negative values fall back to the default.
func TaxRate(taxBps int) decimal.Decimal {
	if taxBps < 0 {
		taxBps = DefaultTaxBps
	}
	return decimal.New(int64(taxBps), -4)
}

// Format renders d with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatCurrency renders d with two decimals prefixed by symbol.
func FormatCurrency(symbol string, d decimal.Decimal) string {
	return symbol + Format(d)
}
