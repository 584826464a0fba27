package preview

import (
	"strings"

	"github.com/noah-isme/toko-storefront/internal/dom"
)

const hiddenClass = "d-none"

// NewDOMPage resolves the product detail elements of doc. Every element is
// required; a missing one fails here.
func NewDOMPage(doc *dom.Document) (Page, error) {
	p := &domPage{doc: doc}
	for id, dst := range map[string]**dom.Element{
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
		el, err := doc.Lookup(id)
		if err != nil {
			return nil, err
		}
		*dst = el
	}
	return p, nil
}

type domPage struct {
	doc *dom.Document

	trigger, dropdown, value, text, qty, price *dom.Element
	base, discount, unit, offer                *dom.Element
}

func (p *domPage) Fields() (Fields, error) {
	return Fields{
		BasePrice:     p.base.Value,
		DiscountPrice: p.discount.Value,
		Unit:          p.unit.Value,
		OfferActive:   p.offer.Value,
	}, nil
}

func (p *domPage) SelectedText() string { return strings.TrimSpace(p.text.Text()) }

func (p *domPage) SetSelected(value string) {
	p.text.SetText(value)
	p.value.Value = value
}

func (p *domPage) Quantity() string         { return p.qty.Value }
func (p *domPage) SetLivePrice(text string) { p.price.SetText(text) }

func (p *domPage) SetDropdownVisible(visible bool) {
	if visible {
		p.dropdown.RemoveClass(hiddenClass)
		return
	}
	p.dropdown.AddClass(hiddenClass)
}

func (p *domPage) Listen(h Handlers) {
	p.trigger.AddEventListener("click", func(e *dom.Event) { h.TriggerClick(e) })
	for _, li := range p.dropdown.QueryAll("li") {
		li := li
		li.AddEventListener("click", func(e *dom.Event) { h.OptionClick(e, li.Data("value")) })
	}
	p.doc.Root.AddEventListener("click", func(e *dom.Event) { h.OutsideClick(e) })
	p.qty.AddEventListener("input", func(*dom.Event) { h.QuantityInput() })
}
