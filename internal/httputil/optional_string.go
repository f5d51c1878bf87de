package httputil

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptionalString tracks presence and value of a JSON field:
//   - Present=false: field absent from JSON
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value=&"": field is empty string
//   - Present=true, Value=&"5": field has value
//
// JSON numbers are accepted and kept in their decimal form.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		o.Value = nil
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil && len(trimmed) > 0 && trimmed[0] != '"' {
		s := n.String()
		o.Value = &s
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// String returns the value, empty when absent or null
func (o OptionalString) String() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// Int parses the value as an integer
func (o OptionalString) Int() (int, error) {
	return strconv.Atoi(o.String())
}
