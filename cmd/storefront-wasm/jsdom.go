//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/noah-isme/toko-storefront/internal/dom"
)

// present reports whether v is an actual object rather than null or undefined.
func present(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

func str(v js.Value) string {
	if !present(v) {
		return ""
	}
	return v.String()
}

func byID(doc js.Value, id string) (js.Value, error) {
	el := doc.Call("getElementById", id)
	if !present(el) {
		return js.Value{}, fmt.Errorf("%w: #%s", dom.ErrNotFound, id)
	}
	return el, nil
}

func queryAll(root js.Value, selector string) []js.Value {
	list := root.Call("querySelectorAll", selector)
	n := list.Length()
	out := make([]js.Value, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list.Index(i))
	}
	return out
}

// listen attaches fn for the lifetime of the page; the js.Func is never released.
func listen(el js.Value, typ string, fn func(evt js.Value)) {
	el.Call("addEventListener", typ, js.FuncOf(func(_ js.Value, args []js.Value) any {
		evt := js.Undefined()
		if len(args) > 0 {
			evt = args[0]
		}
		fn(evt)
		return nil
	}))
}

type jsEvent struct{ v js.Value }

func (e jsEvent) StopPropagation() {
	if present(e.v) {
		e.v.Call("stopPropagation")
	}
}
