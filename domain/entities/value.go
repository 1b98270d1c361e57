package entities

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the scalar carried by a Value.
type ValueKind int

const (
	// KindNull is the absence of a value (R NULL).
	KindNull ValueKind = iota
	// KindReal is a double-precision scalar.
	KindReal
	// KindInteger is a 32-bit integer scalar.
	KindInteger
	// KindString is a character scalar.
	KindString
	// KindLogical is a boolean scalar.
	KindLogical
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindReal:
		return "double"
	case KindInteger:
		return "integer"
	case KindString:
		return "character"
	case KindLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// Value is a scalar crossing the runtime boundary. Vectors are reduced to
// their first element by the backends.
type Value struct {
	Str     string
	Real    float64
	Kind    ValueKind
	Integer int32
	Logical bool
}

// Null is the empty value.
var Null = Value{}

// Real returns a double scalar.
func Real(v float64) Value { return Value{Kind: KindReal, Real: v} }

// Integer returns an integer scalar.
func Integer(v int32) Value { return Value{Kind: KindInteger, Integer: v} }

// String returns a character scalar.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// Logical returns a boolean scalar.
func Logical(v bool) Value { return Value{Kind: KindLogical, Logical: v} }

// IsNull reports whether v carries no value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Float64 reads v as a number. Integers are widened; every other kind
// reports false.
func (v Value) Float64() (float64, bool) {
	switch v.Kind {
	case KindReal:
		return v.Real, true
	case KindInteger:
		return float64(v.Integer), true
	default:
		return 0, false
	}
}

// Deparse renders v as R source.
func (v Value) Deparse() string {
	switch v.Kind {
	case KindReal:
		return deparseReal(v.Real)
	case KindInteger:
		return strconv.FormatInt(int64(v.Integer), 10) + "L"
	case KindString:
		return strconv.Quote(v.Str)
	case KindLogical:
		if v.Logical {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

func deparseReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Call is a function call expression evaluated in the runtime's global
// environment.
type Call struct {
	Function string
	Args     []Value
}

// NewCall builds a call expression with positional arguments.
func NewCall(function string, args ...Value) Call {
	return Call{Function: function, Args: args}
}

// LibraryCall builds library("<name>").
func LibraryCall(name string) Call {
	return NewCall("library", String(name))
}

// String renders the call as R source, e.g. rate.conv(0.0675, 12L, "interest", 1L).
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Function)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Deparse())
	}
	b.WriteByte(')')
	return b.String()
}
