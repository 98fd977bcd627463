package settings

import (
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	// KindString holds a plain string.
	KindString Kind = iota

	// KindInt holds an integer. JSON numbers with an integral value
	// load as this kind.
	KindInt

	// KindBool holds a boolean.
	KindBool

	// KindEncrypted holds the base64 blob of an encrypted string.
	// The plaintext is only materialised on read.
	KindEncrypted
)

// Value is the tagged variant stored per settings key.
//
// Values are constructed from typed inputs (or from JSON on load) and
// converted back out through the typed getters on Store. There is no
// implicit coercion at read time: a getter that cannot convert the
// stored kind falls back to the caller-supplied default.
type Value struct {
	kind Kind
	s    string
	i    int
	b    bool
}

// stringValue constructs a plain string Value.
func stringValue(s string) Value { return Value{kind: KindString, s: s} }

// intValue constructs an integer Value.
func intValue(i int) Value { return Value{kind: KindInt, i: i} }

// boolValue constructs a boolean Value.
func boolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// encryptedValue constructs a Value holding an encrypted blob.
func encryptedValue(blob string) Value { return Value{kind: KindEncrypted, s: blob} }

// fromJSON converts a decoded JSON scalar into a Value.
// encoding/json decodes numbers as float64; integral floats become
// KindInt, anything else is kept as its string rendering.
func fromJSON(raw any) Value {
	switch v := raw.(type) {
	case string:
		return stringValue(v)
	case bool:
		return boolValue(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return intValue(int(v))
		}
		return stringValue(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return stringValue("")
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// asString renders the plain kinds as a string.
// KindEncrypted is handled by the Store, which owns the key.
func (v Value) asString() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// jsonScalar returns the bare JSON representation of a plain Value.
func (v Value) jsonScalar() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindBool:
		return v.b
	default:
		return v.s
	}
}
