package entities

import (
	"fmt"
	"strings"
)

// ConversionType selects the rate.conv formula applied by the extension.
type ConversionType int

const (
	// Interest converts a nominal interest rate.
	Interest ConversionType = iota
	// Discount converts a nominal discount rate.
	Discount
	// Force converts a force of interest.
	Force
)

const (
	typeInterest = "interest"
	typeDiscount = "discount"
	typeForce    = "force"
)

// ConversionTypes lists the known conversion types in declaration order.
func ConversionTypes() []ConversionType {
	return []ConversionType{Interest, Discount, Force}
}

// TypeToString maps a conversion type to the literal the extension expects.
// Values outside the enumeration produce a failed result.
func TypeToString(t ConversionType) FallibleString {
	switch t {
	case Interest:
		return Succeeded(typeInterest)
	case Discount:
		return Succeeded(typeDiscount)
	case Force:
		return Succeeded(typeForce)
	default:
		return Failed[string]()
	}
}

// ParseConversionType is the inverse of TypeToString. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseConversionType(s string) (ConversionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case typeInterest:
		return Interest, nil
	case typeDiscount:
		return Discount, nil
	case typeForce:
		return Force, nil
	default:
		return 0, fmt.Errorf("unknown conversion type %q (want interest, discount or force)", s)
	}
}

// String implements fmt.Stringer.
func (t ConversionType) String() string {
	if s, ok := TypeToString(t).Get(); ok {
		return s
	}
	return fmt.Sprintf("ConversionType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ConversionType) MarshalText() ([]byte, error) {
	s, ok := TypeToString(t).Get()
	if !ok {
		return nil, fmt.Errorf("invalid conversion type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ConversionType) UnmarshalText(text []byte) error {
	parsed, err := ParseConversionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BoolToString renders a success flag the way the result line prints it.
func BoolToString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
