package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Handler exposes cart recalculation over HTTP so rendered pages and the
// wasm controller agree on the same figures.
type Handler struct {
	TaxBps   int
	Validate *validator.Validate
}

type quoteRequest struct {
	Rows []quoteRow `json:"rows" validate:"required,min=1,max=200,dive"`
}

type quoteRow struct {
	ID         string          `json:"id" validate:"required,max=64"`
	UnitPrice  common.RawValue `json:"unitPrice" validate:"required,max=32"`
	WeightMult common.RawValue `json:"weightMult" validate:"required,max=32"`
	Qty        common.RawValue `json:"qty" validate:"max=16"`
}

// Quote computes clamped quantities, line prices and order totals for the posted rows.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		obs.ObserveQuote("cart", "invalid")
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if err := h.validator().Struct(req); err != nil {
		obs.ObserveQuote("cart", "invalid")
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid cart rows", common.ValidationDetails(err))
		return
	}

	rows := make([]map[string]any, 0, len(req.Rows))
	lines := make([]decimal.Decimal, 0, len(req.Rows))
	for _, row := range req.Rows {
		qty := pricing.ClampQuantity(string(row.Qty))
		line, err := LinePrice(string(row.UnitPrice), string(row.WeightMult), qty)
		if err != nil {
			h.writeError(w, row.ID, err)
			return
		}
		// totals are summed from the displayed, two-decimal line prices
		line = line.Round(2)
		lines = append(lines, line)
		rows = append(rows, map[string]any{
			"id":      row.ID,
			"qty":     qty,
			"price":   pricing.Format(line),
			"priceId": PriceElementID(row.ID),
		})
	}
	summary := pricing.Summarize(lines, h.taxBps())
	obs.ObserveQuote("cart", "ok")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"rows":     rows,
			"subtotal": pricing.Format(summary.Subtotal),
			"tax":      pricing.Format(summary.Tax),
			"total":    pricing.Format(summary.Total),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, rowID string, err error) {
	obs.ObserveQuote("cart", "invalid")
	if errors.Is(err, pricing.ErrInvalidAmount) {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_AMOUNT", err.Error(), map[string]string{"id": rowID})
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price cart row", nil)
}

func (h *Handler) taxBps() int {
	if h.TaxBps == 0 {
		return pricing.DefaultTaxBps
	}
	return h.TaxBps
}

func (h *Handler) validator() *validator.Validate {
	if h.Validate == nil {
		h.Validate = validator.New()
	}
	return h.Validate
}
