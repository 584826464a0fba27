// Package units converts weight-labels such as "500G" or "2KG" into a
// multiplier of the product's base selling unit.
package units

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Kind is the unit a product is priced in.
type Kind int

const (
	Unknown Kind = iota
	Mass
	Volume
	Count
	Pack
	Dozen
)

var (
	one      = decimal.NewFromInt(1)
	thousand = decimal.NewFromInt(1000)
	twelve   = decimal.NewFromInt(12)
)

func (k Kind) String() string {
	switch k {
	case Mass:
		return "kg"
	case Volume:
		return "litre"
	case Count:
		return "piece"
	case Pack:
		return "pack"
	case Dozen:
		return "dozen"
	default:
		return "unknown"
	}
}

// ParseKind maps a catalog unit name to a Kind. Matching is case-insensitive.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg", "g", "mass":
		return Mass
	case "litre", "liter", "l", "ml", "volume":
		return Volume
	case "piece", "pcs", "count":
		return Count
	case "pack":
		return Pack
	case "dozen":
		return Dozen
	default:
		return Unknown
	}
}

// Multiplier converts label into a multiple of the base unit of kind.
// Anything that cannot be matched or parsed converts to 1.
func Multiplier(kind Kind, label string) decimal.Decimal {
	w := strings.ToUpper(strings.TrimSpace(label))
	switch kind {
	case Mass:
		if strings.HasSuffix(w, "KG") {
			return scaled(w, one)
		}
		if strings.HasSuffix(w, "G") {
			return scaled(w, thousand)
		}
	case Volume:
		// ML also ends in L, so it is matched first.
		if strings.HasSuffix(w, "ML") {
			return scaled(w, thousand)
		}
		if strings.HasSuffix(w, "L") {
			return scaled(w, one)
		}
	case Count:
		return integer(w)
	case Pack:
		return one
	case Dozen:
		if n, ok := pricing.ParseQuantity(w); ok {
			return decimal.NewFromInt(int64(n)).Mul(twelve)
		}
	}
	return one
}

// scaled reads the numeric prefix of w and divides it by per.
func scaled(w string, per decimal.Decimal) decimal.Decimal {
	d, ok := pricing.LeadingNumber(w)
	if !ok {
		return one
	}
	return d.Div(per)
}

func integer(w string) decimal.Decimal {
	n, ok := pricing.ParseQuantity(w)
	if !ok {
		return one
	}
	return decimal.NewFromInt(int64(n))
}
