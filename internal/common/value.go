package common

import (
	"bytes"
	"encoding/json"
)

// RawValue holds a form-style value that clients may send either as a JSON
// string or as a JSON number. It keeps the text exactly as a form field would.
type RawValue string

// UnmarshalJSON accepts strings, numbers and null.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = RawValue(n.String())
	return nil
}
