//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/noah-isme/toko-storefront/internal/cart"
)

type cartPage struct {
	doc js.Value
}

func (p cartPage) Rows() []cart.Row {
	inputs := queryAll(p.doc, ".quantity")
	rows := make([]cart.Row, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, cartRow{input: in})
	}
	return rows
}

func (p cartPage) OnQuantityChange(row cart.Row, fn func()) {
	r, ok := row.(cartRow)
	if !ok {
		return
	}
	listen(r.input, "change", func(js.Value) { fn() })
}

func (p cartPage) SetText(id, text string) error {
	el, err := byID(p.doc, id)
	if err != nil {
		return err
	}
	el.Set("textContent", text)
	return nil
}

func (p cartPage) LinePrices() []string {
	spans := queryAll(p.doc, ".cart-price span")
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, str(s.Get("textContent")))
	}
	return out
}

type cartRow struct {
	input js.Value
}

func (r cartRow) ID() string               { return str(r.input.Get("dataset").Get("id")) }
func (r cartRow) Quantity() string         { return str(r.input.Get("value")) }
func (r cartRow) SetQuantity(value string) { r.input.Set("value", value) }

func (r cartRow) UnitPrice() (string, error)        { return r.field(".unit-price") }
func (r cartRow) WeightMultiplier() (string, error) { return r.field(".weight-mult") }

func (r cartRow) Guest() (bool, error) {
	card, err := r.card()
	if err != nil {
		return false, err
	}
	container := card.Call("closest", ".col-lg-8")
	if !present(container) {
		return false, fmt.Errorf("%w: .col-lg-8", cart.ErrMissingField)
	}
	return container.Get("classList").Call("contains", "guest-cart").Bool(), nil
}

func (r cartRow) card() (js.Value, error) {
	card := r.input.Call("closest", ".cart-row")
	if !present(card) {
		return js.Value{}, fmt.Errorf("%w: .cart-row", cart.ErrMissingField)
	}
	return card, nil
}

func (r cartRow) field(selector string) (string, error) {
	card, err := r.card()
	if err != nil {
		return "", err
	}
	el := card.Call("querySelector", selector)
	if !present(el) {
		return "", fmt.Errorf("%w: %s", cart.ErrMissingField, selector)
	}
	return str(el.Get("value")), nil
}
