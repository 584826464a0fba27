package preview

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/units"
)

// Handler exposes the product price preview over HTTP.
type Handler struct {
	CurrencySymbol string
	Validate       *validator.Validate
}

type priceQuery struct {
	Unit     string `validate:"omitempty,max=32"`
	Label    string `validate:"max=32"`
	Base     string `validate:"required,max=32"`
	Discount string `validate:"max=32"`
	Offer    string `validate:"omitempty,oneof=true false True False 1 0"`
	Qty      string `validate:"max=16"`
}

// Price returns the preview for GET ?unit=&label=&base=&discount=&offer=&qty=.
// qty defaults to 1.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := priceQuery{
		Unit:     q.Get("unit"),
		Label:    q.Get("label"),
		Base:     q.Get("base"),
		Discount: q.Get("discount"),
		Offer:    q.Get("offer"),
		Qty:      q.Get("qty"),
	}
	if err := h.validator().Struct(query); err != nil {
		obs.ObserveQuote("price", "invalid")
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid preview query", common.ValidationDetails(err))
		return
	}
	offer := query.Offer
	if offer == "1" {
		offer = "true"
	}
	product, err := ParseProduct(Fields{
		BasePrice:     query.Base,
		DiscountPrice: query.Discount,
		Unit:          query.Unit,
		OfferActive:   offer,
	})
	if err != nil {
		obs.ObserveQuote("price", "invalid")
		common.WriteError(w, common.BadRequest("invalid product pricing", err))
		return
	}
	qty := 1
	if strings.TrimSpace(query.Qty) != "" {
		parsed, ok := pricing.ParseQuantity(query.Qty)
		if !ok {
			obs.ObserveQuote("price", "invalid")
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quantity", map[string]string{"qty": query.Qty})
			return
		}
		qty = parsed
	}

	label := strings.TrimSpace(query.Label)
	amount := product.Price(label, qty)
	obs.ObserveQuote("price", "ok")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"unit":       product.Unit.String(),
			"label":      label,
			"qty":        qty,
			"multiplier": units.Multiplier(product.Unit, label).String(),
			"unitPrice":  pricing.Format(pricing.UnitPrice(product.BasePrice, product.DiscountPrice, product.OfferActive)),
			"amount":     pricing.Format(amount),
			"price":      pricing.FormatCurrency(h.symbol(), amount),
		},
	})
}

func (h *Handler) symbol() string {
	if h.CurrencySymbol == "" {
		return pricing.DefaultCurrencySymbol
	}
	return h.CurrencySymbol
}

func (h *Handler) validator() *validator.Validate {
	if h.Validate == nil {
		h.Validate = validator.New()
	}
	return h.Validate
}
