package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Element ids written by the recalculator.
const (
	SubtotalID = "subtotal"
	TaxID      = "tax"
	TotalID    = "total"
)

// ErrMissingField indicates a row lacks one of the hidden pricing fields.
var ErrMissingField = errors.New("cart: missing row field")

var nopLogger = zerolog.Nop()

// Row is one rendered cart line, seen from its quantity input.
type Row interface {
	// ID is the guest index or persisted cart item id.
	ID() string
	Quantity() string
	SetQuantity(value string)
	// UnitPrice and WeightMultiplier are read from the row's own container.
	UnitPrice() (string, error)
	WeightMultiplier() (string, error)
	// Guest reports whether the row belongs to a client-side guest cart.
	Guest() (bool, error)
}

// Page is the rendered cart listing.
type Page interface {
	Rows() []Row
	OnQuantityChange(row Row, fn func())
	SetText(id, text string) error
	// LinePrices returns the text of every visible line price.
	LinePrices() []string
}

// Syncer propagates a quantity change for a persisted cart item.
// Implementations must not block the caller.
type Syncer interface {
	SyncQuantity(ctx context.Context, rowID string, qty int)
}

// PriceElementID is the id of the element showing the line price of rowID.
func PriceElementID(rowID string) string {
	return "price-" + rowID
}

// Options configures a Recalculator.
type Options struct {
	// Syncer is optional; without it no quantity is sent to the server.
	Syncer Syncer
	// TaxBps defaults to pricing.DefaultTaxBps when zero.
	TaxBps int
	Logger *zerolog.Logger
	// Context is used for handler-initiated syncs. Defaults to context.Background.
	Context context.Context
}

// Recalculator keeps line prices and order totals consistent with quantity edits.
type Recalculator struct {
	page   Page
	syncer Syncer
	taxBps int
	logger *zerolog.Logger
	ctx    context.Context
}

// New constructs a Recalculator without registering any listener.
func New(page Page, opts Options) *Recalculator {
	taxBps := opts.TaxBps
	if taxBps == 0 {
		taxBps = pricing.DefaultTaxBps
	}
	logger := opts.Logger
	if logger == nil {
		logger = &nopLogger
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Recalculator{page: page, syncer: opts.Syncer, taxBps: taxBps, logger: logger, ctx: ctx}
}

// Bind constructs a Recalculator and attaches a change listener to every row of page.
// It is called once by the hosting page.
func Bind(page Page, opts Options) *Recalculator {
	rc := New(page, opts)
	for _, row := range page.Rows() {
		row := row
		page.OnQuantityChange(row, func() {
			if err := rc.QuantityChanged(rc.ctx, row); err != nil {
				rc.logger.Error().Err(err).Str("row_id", row.ID()).Msg("recalculate cart row")
			}
		})
	}
	return rc
}

// QuantityChanged clamps the row quantity, updates its line price and the order
// totals, then hands the quantity to the syncer unless the row is a guest row.
func (rc *Recalculator) QuantityChanged(ctx context.Context, row Row) error {
	qty := pricing.ClampQuantity(row.Quantity())
	row.SetQuantity(strconv.Itoa(qty))

	rowID := row.ID()
	unitRaw, err := row.UnitPrice()
	if err != nil {
		return fmt.Errorf("row %s unit price: %w", rowID, err)
	}
	multRaw, err := row.WeightMultiplier()
	if err != nil {
		return fmt.Errorf("row %s weight multiplier: %w", rowID, err)
	}
	line, err := LinePrice(unitRaw, multRaw, qty)
	if err != nil {
		return fmt.Errorf("row %s: %w", rowID, err)
	}
	if err := rc.page.SetText(PriceElementID(rowID), pricing.Format(line)); err != nil {
		return fmt.Errorf("row %s price: %w", rowID, err)
	}

	if _, err := rc.RecomputeTotals(); err != nil {
		return err
	}

	guest, err := row.Guest()
	if err != nil {
		return fmt.Errorf("row %s cart container: %w", rowID, err)
	}
	if !guest && rc.syncer != nil {
		rc.syncer.SyncQuantity(ctx, rowID, qty)
	}
	return nil
}

// RecomputeTotals rescans every line price and rewrites subtotal, tax and total.
func (rc *Recalculator) RecomputeTotals() (pricing.Summary, error) {
	texts := rc.page.LinePrices()
	lines := make([]decimal.Decimal, 0, len(texts))
	for _, text := range texts {
		d, err := pricing.ParseAmount(text)
		if err != nil {
			return pricing.Summary{}, fmt.Errorf("line price %q: %w", text, err)
		}
		lines = append(lines, d)
	}
	summary := pricing.Summarize(lines, rc.taxBps)
	writes := []struct {
		id    string
		value decimal.Decimal
	}{
		{SubtotalID, summary.Subtotal},
		{TaxID, summary.Tax},
		{TotalID, summary.Total},
	}
	for _, w := range writes {
		if err := rc.page.SetText(w.id, pricing.Format(w.value)); err != nil {
			return summary, fmt.Errorf("write %s: %w", w.id, err)
		}
	}
	return summary, nil
}

// LinePrice parses the raw unit price and weight multiplier fields and
// returns unit × multiplier × qty.
func LinePrice(unitRaw, multRaw string, qty int) (decimal.Decimal, error) {
	unit, err := pricing.ParseAmount(unitRaw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unit price %q: %w", unitRaw, err)
	}
	mult, err := pricing.ParseAmount(multRaw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("weight multiplier %q: %w", multRaw, err)
	}
	return pricing.LinePrice(unit, mult, qty), nil
}
