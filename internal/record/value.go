package record

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a sealed interface for column values.
// Only Null, String, Int, Real and Bool implement it.
type Value interface {
	recordValue()
}

// Null is an explicit SQL/JSON null.
type Null struct{}

func (Null) recordValue() {}

// String is a text value.
type String string

func (String) recordValue() {}

// Int is an integer value. JSON numbers without a fraction decode to Int.
type Int int64

func (Int) recordValue() {}

// Real is a floating point value.
type Real float64

func (Real) recordValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) recordValue() {}

// IsEmpty reports whether v counts as "no value" for merging:
// absent (nil), Null, or the empty string. Zero and false are values.
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return val == ""
	default:
		return false
	}
}

// IsNull reports whether v is absent or Null.
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	}
	return false
}

// Equal compares two values. Int and Real compare numerically;
// every other pairing requires the same type.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Real:
			return float64(x) == float64(y)
		}
	case Real:
		switch y := b.(type) {
		case Real:
			return x == y
		case Int:
			return float64(x) == float64(y)
		}
	}
	return false
}

// FromAny converts a value scanned by database/sql (or decoded from YAML)
// into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case int64:
		return Int(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float64:
		return fromFloat(val), nil
	case float32:
		return fromFloat(float64(val)), nil
	case bool:
		return Bool(val), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// fromFloat keeps whole numbers as Int so values round-trip through
// YAML and drivers that report every number as float64. float64(MaxInt64)
// is 2^63, so the upper bound is exclusive.
func fromFloat(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Int(int64(f))
	}
	return Real(f)
}

// Any returns the database/sql argument form of v.
func Any(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Real:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Format renders v for human-readable output.
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Real:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return ""
	}
}
