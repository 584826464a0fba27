// Package dom is a small in-memory document: ids, classes, attributes,
// values and text on a parent-linked element tree, with bubbling events.
package dom

import (
	"strings"
)

// Event is delivered to listeners while it bubbles from target to the document root.
type Event struct {
	Type    string
	Target  *Element
	stopped bool
}

// StopPropagation prevents the event from reaching ancestors of the current element.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

// Listener handles a dispatched event.
type Listener func(*Event)

// Element is a node in the document tree.
type Element struct {
	Tag   string
	ID    string
	Value string

	text      string
	classes   []string
	attrs     map[string]string
	parent    *Element
	children  []*Element
	listeners map[string][]Listener
	doc       *Document
}

// El builds a detached element. Classes are given as a space-separated list.
func El(tag, id, classes string) *Element {
	return &Element{Tag: strings.ToLower(tag), ID: id, classes: strings.Fields(classes)}
}

// Append attaches children and returns e for chaining.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
		c.adopt(e.doc)
	}
	return e
}

func (e *Element) adopt(doc *Document) {
	if doc == nil {
		return
	}
	e.doc = doc
	if e.ID != "" {
		doc.ids[e.ID] = e
	}
	for _, c := range e.children {
		c.adopt(doc)
	}
}

// WithText sets text content and returns e.
func (e *Element) WithText(text string) *Element {
	e.text = text
	return e
}

// WithValue sets the form value and returns e.
func (e *Element) WithValue(v string) *Element {
	e.Value = v
	return e
}

// WithAttr sets an attribute and returns e.
func (e *Element) WithAttr(name, value string) *Element {
	e.SetAttr(name, value)
	return e
}

// Text returns the text content.
func (e *Element) Text() string { return e.text }

// SetText replaces the text content.
func (e *Element) SetText(text string) { e.text = text }

// Attr returns an attribute value.
func (e *Element) Attr(name string) string { return e.attrs[name] }

// SetAttr stores an attribute value.
func (e *Element) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = map[string]string{}
	}
	e.attrs[name] = value
}

// Data returns the data-<key> attribute.
func (e *Element) Data(key string) string { return e.Attr("data-" + key) }

// Parent returns the parent element, nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// HasClass reports whether class is present.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class when absent.
func (e *Element) AddClass(class string) {
	if !e.HasClass(class) {
		e.classes = append(e.classes, class)
	}
}

// RemoveClass removes class when present.
func (e *Element) RemoveClass(class string) {
	out := e.classes[:0]
	for _, c := range e.classes {
		if c != class {
			out = append(out, c)
		}
	}
	e.classes = out
}

// ToggleClass flips class and reports whether it is now present.
func (e *Element) ToggleClass(class string) bool {
	if e.HasClass(class) {
		e.RemoveClass(class)
		return false
	}
	e.AddClass(class)
	return true
}

// Closest returns e or the nearest ancestor carrying class.
func (e *Element) Closest(class string) *Element {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.HasClass(class) {
			return cur
		}
	}
	return nil
}

// QueryAll returns descendants matching selector in document order.
// Supported forms: ".class", "tag" and ".class tag".
func (e *Element) QueryAll(selector string) []*Element {
	parts := strings.Fields(selector)
	switch len(parts) {
	case 1:
		var out []*Element
		e.walk(func(n *Element) {
			if matches(n, parts[0]) {
				out = append(out, n)
			}
		})
		return out
	case 2:
		var out []*Element
		seen := map[*Element]bool{}
		for _, scope := range e.QueryAll(parts[0]) {
			for _, n := range scope.QueryAll(parts[1]) {
				if !seen[n] {
					seen[n] = true
					out = append(out, n)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// Query returns the first match of selector or nil.
func (e *Element) Query(selector string) *Element {
	all := e.QueryAll(selector)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// AddEventListener registers fn for events of typ dispatched on e or its descendants.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if e.listeners == nil {
		e.listeners = map[string][]Listener{}
	}
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// Dispatch fires an event of typ at e and bubbles it to the root.
func (e *Element) Dispatch(typ string) *Event {
	evt := &Event{Type: typ, Target: e}
	for cur := e; cur != nil; cur = cur.parent {
		for _, fn := range cur.listeners[typ] {
			fn(evt)
		}
		if evt.stopped {
			break
		}
	}
	return evt
}

// Click dispatches a click event.
func (e *Element) Click() *Event { return e.Dispatch("click") }

func (e *Element) walk(fn func(*Element)) {
	for _, c := range e.children {
		fn(c)
		c.walk(fn)
	}
}

func matches(e *Element, sel string) bool {
	if strings.HasPrefix(sel, ".") {
		return e.HasClass(sel[1:])
	}
	if strings.HasPrefix(sel, "#") {
		return e.ID == sel[1:]
	}
	return e.Tag == strings.ToLower(sel)
}
