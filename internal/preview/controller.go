// Package preview drives the live price shown on a product detail page while
// the shopper picks a weight option and a quantity.
package preview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/units"
)

// ErrInvalidProduct is returned when the rendered product fields cannot be read.
var ErrInvalidProduct = errors.New("preview: invalid product fields")

var nopLogger = zerolog.Nop()

// State of the weight dropdown.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Event is the part of a UI event the controller needs.
type Event interface {
	StopPropagation()
}

// Handlers are the callbacks a Page wires to its elements.
type Handlers struct {
	TriggerClick  func(Event)
	OptionClick   func(e Event, value string)
	OutsideClick  func(Event)
	QuantityInput func()
}

// Fields are the raw product attributes rendered into the page.
type Fields struct {
	BasePrice     string
	DiscountPrice string
	Unit          string
	OfferActive   string
}

// Page is the product detail view.
type Page interface {
	Fields() (Fields, error)
	SelectedText() string
	// SetSelected updates both the visible selection and the submitted value.
	SetSelected(value string)
	Quantity() string
	SetLivePrice(text string)
	SetDropdownVisible(visible bool)
	Listen(h Handlers)
}

// Product holds the parsed pricing attributes of the product on display.
type Product struct {
	BasePrice     decimal.Decimal
	DiscountPrice decimal.Decimal
	Unit          units.Kind
	OfferActive   bool
}

// ParseProduct converts rendered fields into a Product. The offer flag is
// active only for a "true" value, as rendered by the server templates.
func ParseProduct(f Fields) (Product, error) {
	base, err := pricing.ParseAmount(f.BasePrice)
	if err != nil {
		return Product{}, fmt.Errorf("%w: base price %q", ErrInvalidProduct, f.BasePrice)
	}
	offer := strings.EqualFold(strings.TrimSpace(f.OfferActive), "true")
	discount, err := pricing.ParseAmount(f.DiscountPrice)
	if err != nil {
		if offer {
			return Product{}, fmt.Errorf("%w: offer discount price %q", ErrInvalidProduct, f.DiscountPrice)
		}
		// a product without an offer may render an empty discount price
		discount = base
	}
	return Product{
		BasePrice:     base,
		DiscountPrice: discount,
		Unit:          units.ParseKind(f.Unit),
		OfferActive:   offer,
	}, nil
}

// Price is unit price × weight multiplier × qty for label.
func (p Product) Price(label string, qty int) decimal.Decimal {
	unit := pricing.UnitPrice(p.BasePrice, p.DiscountPrice, p.OfferActive)
	return pricing.LinePrice(unit, units.Multiplier(p.Unit, label), qty)
}

// Options configures a Controller.
type Options struct {
	// CurrencySymbol defaults to pricing.DefaultCurrencySymbol.
	CurrencySymbol string
	Logger         *zerolog.Logger
}

// Controller owns the dropdown state and the live price of one product page.
type Controller struct {
	page    Page
	product Product
	state   State
	symbol  string
	logger  *zerolog.Logger
}

// Bind reads the product, wires the page handlers and renders the initial price.
// It is called once by the hosting page.
func Bind(page Page, opts Options) (*Controller, error) {
	fields, err := page.Fields()
	if err != nil {
		return nil, err
	}
	product, err := ParseProduct(fields)
	if err != nil {
		return nil, err
	}
	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = pricing.DefaultCurrencySymbol
	}
	logger := opts.Logger
	if logger == nil {
		logger = &nopLogger
	}
	c := &Controller{page: page, product: product, state: Closed, symbol: symbol, logger: logger}
	page.Listen(Handlers{
		TriggerClick:  c.TriggerClick,
		OptionClick:   c.SelectOption,
		OutsideClick:  c.OutsideClick,
		QuantityInput: func() { c.Recompute() },
	})
	c.Recompute()
	return c, nil
}

// State returns the dropdown state.
func (c *Controller) State() State { return c.state }

// Product returns the parsed product.
func (c *Controller) Product() Product { return c.product }

// TriggerClick toggles the dropdown. The event must not reach the outside-click handler.
func (c *Controller) TriggerClick(e Event) {
	if e != nil {
		e.StopPropagation()
	}
	if c.state == Open {
		c.setState(Closed)
		return
	}
	c.setState(Open)
}

// SelectOption applies value as the selected weight, closes the dropdown and reprices.
func (c *Controller) SelectOption(e Event, value string) {
	if e != nil {
		e.StopPropagation()
	}
	c.page.SetSelected(value)
	c.setState(Closed)
	c.Recompute()
}

// OutsideClick closes the dropdown.
func (c *Controller) OutsideClick(Event) {
	c.setState(Closed)
}

// Recompute renders the live price for the current selection and quantity
// and returns the displayed text. The quantity is not clamped here; an
// unreadable quantity prices as zero.
func (c *Controller) Recompute() string {
	label := strings.TrimSpace(c.page.SelectedText())
	qty, ok := pricing.ParseQuantity(c.page.Quantity())
	if !ok {
		qty = 0
	}
	text := pricing.FormatCurrency(c.symbol, c.product.Price(label, qty))
	c.page.SetLivePrice(text)
	c.logger.Debug().Str("label", label).Int("qty", qty).Str("price", text).Msg("preview price")
	return text
}

func (c *Controller) setState(next State) {
	c.state = next
	c.page.SetDropdownVisible(next == Open)
}
