package dom

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a required element is missing.
var ErrNotFound = errors.New("dom: element not found")

// Document owns the element tree and its id index.
type Document struct {
	Root *Element
	ids  map[string]*Element
}

// NewDocument creates an empty document with a body root.
func NewDocument() *Document {
	d := &Document{ids: map[string]*Element{}}
	d.Root = El("body", "", "")
	d.Root.doc = d
	return d
}

// GetElementByID returns the element with id or nil.
func (d *Document) GetElementByID(id string) *Element {
	return d.ids[id]
}

// Lookup is GetElementByID for elements the caller cannot do without.
func (d *Document) Lookup(id string) (*Element, error) {
	el := d.ids[id]
	if el == nil {
		return nil, fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	return el, nil
}

// QueryAll runs selector over the whole document.
func (d *Document) QueryAll(selector string) []*Element {
	return d.Root.QueryAll(selector)
}

// Append attaches elements to the root.
func (d *Document) Append(children ...*Element) *Document {
	d.Root.Append(children...)
	return d
}
