//go:build js && wasm

package main

import (
	"strings"
	"syscall/js"

	"github.com/noah-isme/toko-storefront/internal/preview"
)

type previewPage struct {
	doc js.Value

	trigger, dropdown, value, text, qty, price js.Value
	base, discount, unit, offer                js.Value
}

func newPreviewPage(doc js.Value) (*previewPage, error) {
	p := &previewPage{doc: doc}
	for id, dst := range map[string]*js.Value{
		"weightSelector":     &p.trigger,
		"weightDropdown":     &p.dropdown,
		"selectedWeight":     &p.value,
		"selectedWeightText": &p.text,
		"quantityInput":      &p.qty,
		"livePrice":          &p.price,
		"basePrice":          &p.base,
		"discountPrice":      &p.discount,
		"productUnit":        &p.unit,
		"isOfferActive":      &p.offer,
	} {
		el, err := byID(doc, id)
		if err != nil {
			return nil, err
		}
		*dst = el
	}
	return p, nil
}

func (p *previewPage) Fields() (preview.Fields, error) {
	return preview.Fields{
		BasePrice:     str(p.base.Get("value")),
		DiscountPrice: str(p.discount.Get("value")),
		Unit:          str(p.unit.Get("value")),
		OfferActive:   str(p.offer.Get("value")),
	}, nil
}

func (p *previewPage) SelectedText() string {
	return strings.TrimSpace(str(p.text.Get("textContent")))
}

func (p *previewPage) SetSelected(value string) {
	p.text.Set("textContent", value)
	p.value.Set("value", value)
}

func (p *previewPage) Quantity() string         { return str(p.qty.Get("value")) }
func (p *previewPage) SetLivePrice(text string) { p.price.Set("textContent", text) }

func (p *previewPage) SetDropdownVisible(visible bool) {
	classes := p.dropdown.Get("classList")
	if visible {
		classes.Call("remove", "d-none")
		return
	}
	classes.Call("add", "d-none")
}

func (p *previewPage) Listen(h preview.Handlers) {
	listen(p.trigger, "click", func(evt js.Value) { h.TriggerClick(jsEvent{evt}) })
	for _, li := range queryAll(p.dropdown, "li") {
		listen(li, "click", func(evt js.Value) {
			h.OptionClick(jsEvent{evt}, str(li.Call("getAttribute", "data-value")))
		})
	}
	listen(p.doc, "click", func(evt js.Value) { h.OutsideClick(jsEvent{evt}) })
	listen(p.qty, "input", func(js.Value) { h.QuantityInput() })
}
