package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	valueUnset valueKind = iota
	valueNumber
	valueText
)

// Value is a single metric reading as delivered by a source. Sources may
// report either a JSON number or a numeric string ("12.34"); Normalize is the
// only place the two forms are converted.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Num returns a numeric Value.
func Num(f float64) Value { return Value{kind: valueNumber, num: f} }

// Text returns a textual Value. It is parsed lazily by Float.
func Text(s string) Value { return Value{kind: valueText, text: s} }

// IsSet reports whether the value was present in the source document.
func (v Value) IsSet() bool { return v.kind != valueUnset }

// Float converts the reading to a float64.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case valueNumber:
		return v.num, nil
	case valueText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, ErrMalformed
		}
		return f, nil
	}
	return 0, ErrMissing
}

func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case valueText:
		return v.text
	}
	return ""
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("metric value: %w", err)
		}
		*v = Text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("metric value %s: %w", b, err)
	}
	*v = Num(f)
	return nil
}

// MarshalJSON writes numbers as numbers and text verbatim as a string.
// Non-finite numbers have no JSON form and are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case valueText:
		return json.Marshal(v.text)
	}
	return []byte("null"), nil
}
