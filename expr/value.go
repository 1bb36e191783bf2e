package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the primitive type of a value or an expression.
type Kind int

const (
	// Bool is the boolean kind.
	Bool Kind = iota
	// Int8 is the 8-bit signed integer kind.
	Int8
	// Int16 is the 16-bit signed integer kind.
	Int16
	// Int32 is the 32-bit signed integer kind.
	Int32
	// Int64 is the 64-bit signed integer kind.
	Int64
	// Char is the 16-bit unsigned character kind.
	Char
	// Float32 is the single precision floating point kind.
	Float32
	// Float64 is the double precision floating point kind.
	Float64
)

var kindNames = [...]string{"bool", "int8", "int16", "int32", "int64", "char", "float32", "float64"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %q", s)
}

// IsInteger reports whether k is an integer or character kind.
func (k Kind) IsInteger() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Char:
		return true
	}
	return false
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// Bits returns the width of integer kinds in bits.
func (k Kind) Bits() uint {
	switch k {
	case Bool:
		return 1
	case Int8:
		return 8
	case Int16, Char:
		return 16
	case Int32, Float32:
		return 32
	}
	return 64
}

// Min returns the smallest value of an integer kind.
func (k Kind) Min() int64 {
	switch k {
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	case Char:
		return 0
	}
	return math.MinInt64
}

// Max returns the largest value of an integer kind.
func (k Kind) Max() int64 {
	switch k {
	case Int8:
		return math.MaxInt8
	case Int16:
		return math.MaxInt16
	case Int32:
		return math.MaxInt32
	case Char:
		return math.MaxUint16
	}
	return math.MaxInt64
}

// Value is a concrete primitive value tagged with its kind.
// Booleans and integers are stored in i, floating point values in f.
type Value struct {
	kind Kind
	i    int64
	f    float64
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	v := Value{kind: Bool}
	if b {
		v.i = 1
	}
	return v
}

// IntValue returns an integer value of kind k, wrapped to the width of k.
func IntValue(k Kind, i int64) Value {
	return Value{kind: k, i: wrap(k, i)}
}

// FloatValue returns a floating point value of kind k.
func FloatValue(k Kind, f float64) Value {
	if k == Float32 {
		f = float64(float32(f))
	}
	return Value{kind: k, f: f}
}

// Zero returns the zero value of kind k.
func Zero(k Kind) Value {
	return Value{kind: k}
}

func wrap(k Kind, i int64) int64 {
	switch k {
	case Bool:
		if i != 0 {
			return 1
		}
		return 0
	case Int8:
		return int64(int8(i))
	case Int16:
		return int64(int16(i))
	case Int32:
		return int64(int32(i))
	case Char:
		return int64(uint16(i))
	}
	return i
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns the boolean held by v.
func (v Value) Bool() bool {
	return v.i != 0
}

// Int returns the integer held by v. Floating point values are truncated.
func (v Value) Int() int64 {
	if v.kind.IsFloat() {
		return int64(v.f)
	}
	return v.i
}

// Float returns v as a float64.
func (v Value) Float() float64 {
	if v.kind.IsFloat() {
		return v.f
	}
	return float64(v.i)
}

// Convert converts v to kind k with Go conversion semantics.
func (v Value) Convert(k Kind) Value {
	switch {
	case k == v.kind:
		return v
	case k == Bool:
		if v.kind.IsFloat() {
			return BoolValue(v.f != 0)
		}
		return BoolValue(v.i != 0)
	case k.IsFloat():
		return FloatValue(k, v.Float())
	}
	return IntValue(k, v.Int())
}

// Equal reports whether v and w have the same kind and value.
// NaN values compare equal to each other so that valuations holding them stay comparable.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	if v.kind.IsFloat() {
		return v.f == w.f || (math.IsNaN(v.f) && math.IsNaN(w.f))
	}
	return v.i == w.i
}

// Interface returns v as the corresponding Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Bool:
		return v.Bool()
	case Int8:
		return int8(v.i)
	case Int16:
		return int16(v.i)
	case Int32:
		return int32(v.i)
	case Int64:
		return v.i
	case Char:
		return uint16(v.i)
	case Float32:
		return float32(v.f)
	}
	return v.f
}

// FromInterface converts a Go value into a Value of kind k.
func FromInterface(k Kind, x interface{}) (Value, error) {
	switch x := x.(type) {
	case bool:
		if k != Bool {
			return Value{}, fmt.Errorf("cannot use bool as %s", k)
		}
		return BoolValue(x), nil
	case int:
		return fromNumber(k, int64(x), float64(x))
	case int8:
		return fromNumber(k, int64(x), float64(x))
	case int16:
		return fromNumber(k, int64(x), float64(x))
	case int32:
		return fromNumber(k, int64(x), float64(x))
	case int64:
		return fromNumber(k, x, float64(x))
	case uint16:
		return fromNumber(k, int64(x), float64(x))
	case float32:
		return fromNumber(k, int64(x), float64(x))
	case float64:
		return fromNumber(k, int64(x), x)
	case string:
		if k == Char && len([]rune(x)) == 1 {
			return IntValue(Char, int64([]rune(x)[0])), nil
		}
	}
	return Value{}, fmt.Errorf("cannot use %v (%T) as %s", x, x, k)
}

func fromNumber(k Kind, i int64, f float64) (Value, error) {
	switch {
	case k == Bool:
		return Value{}, fmt.Errorf("cannot use number %v as bool", f)
	case k.IsFloat():
		return FloatValue(k, f), nil
	}
	if f != math.Trunc(f) || i < k.Min() || i > k.Max() {
		return Value{}, fmt.Errorf("%v overflows %s", f, k)
	}
	return IntValue(k, i), nil
}

func (v Value) String() string {
	switch {
	case v.kind == Bool:
		return strconv.FormatBool(v.Bool())
	case v.kind == Char:
		return strconv.QuoteRune(rune(v.i))
	case v.kind.IsFloat():
		return strconv.FormatFloat(v.f, 'g', -1, int(v.kind.Bits()))
	}
	return strconv.FormatInt(v.i, 10)
}
