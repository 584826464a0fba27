package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClampQuantity(t *testing.T) {
	cases := map[string]int{
		"3":     3,
		" 4":    4,
		"3.7":   3,
		"2abc":  2,
		"0":     1,
		"-5":    1,
		"":      1,
		"abc":   1,
		"1":     1,
		"+12":   12,
		"99999": 99999,
	}
	for raw, want := range cases {
		require.Equal(t, want, ClampQuantity(raw), "raw %q", raw)
	}
}

func TestParseQuantityReportsFailure(t *testing.T) {
	_, ok := ParseQuantity("x1")
	require.False(t, ok)

	qty, ok := ParseQuantity("-2")
	require.True(t, ok)
	require.Equal(t, -2, qty)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.50")
	require.NoError(t, err)
	require.Equal(t, "12.50", Format(d))

	d, err = ParseAmount(" 0.5kg")
	require.NoError(t, err)
	require.Equal(t, "0.50", Format(d))

	_, err = ParseAmount("")
	require.ErrorIs(t, err, ErrInvalidAmount)

	d, err = ParseAmount("2.5e2")
	require.NoError(t, err)
	require.Equal(t, "250.00", Format(d))
}

func TestParseAmountRejectsOutOfRangeExponents(t *testing.T) {
	for _, raw := range []string{"1e9999999", "1e-9999999", "5e19", "1E+400kg", "1234567890123456789012345678901"} {
		_, err := ParseAmount(raw)
		require.ErrorIs(t, err, ErrInvalidAmount, "raw %q", raw)
	}
	_, ok := LeadingNumber("1e9999999KG")
	require.False(t, ok)
}

func TestLinePrice(t *testing.T) {
	unit := decimal.RequireFromString("120")
	mult := decimal.RequireFromString("0.5")
	require.Equal(t, "180.00", Format(LinePrice(unit, mult, 3)))

	require.Equal(t, "1.01", Format(LinePrice(decimal.RequireFromString("1.005"), decimal.NewFromInt(1), 1)))
}

func TestSummarize(t *testing.T) {
	lines := []decimal.Decimal{
		decimal.RequireFromString("100.00"),
		decimal.RequireFromString("45.50"),
	}
	summary := Summarize(lines, DefaultTaxBps)
	require.Equal(t, "145.50", Format(summary.Subtotal))
	require.Equal(t, "7.28", Format(summary.Tax))
	require.Equal(t, "152.78", Format(summary.Total))

	empty := Summarize(nil, DefaultTaxBps)
	require.Equal(t, "0.00", Format(empty.Total))
}

func TestUnitPriceOffer(t *testing.T) {
	base := decimal.NewFromInt(100)
	discount := decimal.NewFromInt(80)
	require.True(t, UnitPrice(base, discount, true).Equal(discount))
	require.True(t, UnitPrice(base, discount, false).Equal(base))
}

func TestFormatCurrency(t *testing.T) {
	require.Equal(t, "₹160.00", FormatCurrency(DefaultCurrencySymbol, decimal.NewFromInt(160)))
}
