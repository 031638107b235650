package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Bool is a boolean that also accepts 0/1 and their string forms in JSON.
// Any other value still decodes; Struct reports it as a field error so it
// is handled together with the other field rules.
type Bool struct {
	value bool
	raw   string // set when the input was not a boolean
}

func NewBool(b bool) Bool {
	return Bool{value: b}
}

// Value returns the decoded boolean
func (b Bool) Value() bool {
	return b.value
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	text := string(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			text = s
		}
	}

	switch text {
	case "true", "1":
		*b = Bool{value: true}
	case "false", "0":
		*b = Bool{value: false}
	default:
		*b = Bool{raw: string(data)}
	}
	return nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value)
}

// boolTypeFunc exposes a Bool to the validator as a plain bool, or as the
// raw input when it was not one
func boolTypeFunc(v reflect.Value) any {
	b := v.Interface().(Bool)
	if b.raw != "" {
		return b.raw
	}
	return b.value
}
