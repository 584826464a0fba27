package cart

import (
	"fmt"

	"github.com/noah-isme/toko-storefront/internal/dom"
)

// Markup hooks of the cart listing.
const (
	quantityClass  = ".quantity"
	rowClass       = "cart-row"
	unitPriceClass = ".unit-price"
	weightClass    = ".weight-mult"
	containerClass = "col-lg-8"
	guestClass     = "guest-cart"
	linePriceSel   = ".cart-price span"
)

// NewDOMPage adapts an in-memory document to Page.
func NewDOMPage(doc *dom.Document) Page {
	return domPage{doc: doc}
}

type domPage struct {
	doc *dom.Document
}

func (p domPage) Rows() []Row {
	inputs := p.doc.QueryAll(quantityClass)
	rows := make([]Row, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, domRow{input: in})
	}
	return rows
}

func (p domPage) OnQuantityChange(row Row, fn func()) {
	r, ok := row.(domRow)
	if !ok {
		return
	}
	r.input.AddEventListener("change", func(*dom.Event) { fn() })
}

func (p domPage) SetText(id, text string) error {
	el, err := p.doc.Lookup(id)
	if err != nil {
		return err
	}
	el.SetText(text)
	return nil
}

func (p domPage) LinePrices() []string {
	spans := p.doc.QueryAll(linePriceSel)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, s.Text())
	}
	return out
}

type domRow struct {
	input *dom.Element
}

func (r domRow) ID() string               { return r.input.Data("id") }
func (r domRow) Quantity() string         { return r.input.Value }
func (r domRow) SetQuantity(value string) { r.input.Value = value }

func (r domRow) UnitPrice() (string, error)        { return r.field(unitPriceClass) }
func (r domRow) WeightMultiplier() (string, error) { return r.field(weightClass) }

func (r domRow) Guest() (bool, error) {
	card := r.input.Closest(rowClass)
	if card == nil {
		return false, fmt.Errorf("%w: .%s", ErrMissingField, rowClass)
	}
	container := card.Closest(containerClass)
	if container == nil {
		return false, fmt.Errorf("%w: .%s", ErrMissingField, containerClass)
	}
	return container.HasClass(guestClass), nil
}

func (r domRow) field(selector string) (string, error) {
	card := r.input.Closest(rowClass)
	if card == nil {
		return "", fmt.Errorf("%w: .%s", ErrMissingField, rowClass)
	}
	el := card.Query(selector)
	if el == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, selector)
	}
	return el.Value, nil
}
