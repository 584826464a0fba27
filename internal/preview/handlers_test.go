package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceHandler(t *testing.T) {
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Price(rr, httptest.NewRequest(http.MethodGet, "/api/v1/preview/price?unit=kg&label=500g&base=200&discount=150&offer=true&qty=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "kg", resp.Data["unit"])
	require.Equal(t, "0.5", resp.Data["multiplier"])
	require.Equal(t, "150.00", resp.Data["unitPrice"])
	require.Equal(t, "150.00", resp.Data["amount"])
	require.Equal(t, "₹150.00", resp.Data["price"])
}

func TestPriceHandlerDefaultsQuantity(t *testing.T) {
	h := &Handler{CurrencySymbol: "$"}
	rr := httptest.NewRecorder()
	h.Price(rr, httptest.NewRequest(http.MethodGet, "/api/v1/preview/price?unit=dozen&label=2&base=3", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "$72.00", resp.Data["price"])
	require.EqualValues(t, 1, resp.Data["qty"])
}

func TestPriceHandlerValidation(t *testing.T) {
	h := &Handler{}
	for _, target := range []string{
		"/api/v1/preview/price?unit=kg&label=1KG",
		"/api/v1/preview/price?base=1&offer=maybe",
		"/api/v1/preview/price?base=abc",
		"/api/v1/preview/price?base=1&qty=lots",
		"/api/v1/preview/price?base=1&offer=true",
		"/api/v1/preview/price?base=1e9999999",
		"/api/v1/preview/price?base=1&offer=true&discount=1e-9999999",
		"/api/v1/preview/price?base=1" + strings.Repeat("0", 40),
		"/api/v1/preview/price?base=1&qty=" + strings.Repeat("9", 20),
	} {
		rr := httptest.NewRecorder()
		h.Price(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, rr.Code)
		}
	}
}

func TestPriceHandlerIgnoresHugeLabelExponent(t *testing.T) {
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Price(rr, httptest.NewRequest(http.MethodGet, "/api/v1/preview/price?unit=kg&label=1e9999999KG&base=1&qty=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Less(t, rr.Body.Len(), 512)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "1", resp.Data["multiplier"])
	require.Equal(t, "₹1.00", resp.Data["price"])
}
