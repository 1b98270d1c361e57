package entities

import (
	"fmt"
	"math"
)

// FinancialMath is the extension package that provides rate.conv.
const FinancialMath = "FinancialMath"

// RateConvFunction is the name of the conversion function in FinancialMath.
const RateConvFunction = "rate.conv"

// MaxFrequency is the largest frequency representable as an R integer.
const MaxFrequency = math.MaxInt32

// RateRequest describes one rate.conv invocation. Frequencies count
// compounding periods per year and must lie in 1..MaxFrequency.
type RateRequest struct {
	// Rate is the rate being converted, expressed as a fraction (0.0675 for 6.75%).
	Rate float64 `json:"rate" yaml:"rate" mapstructure:"rate" jsonschema:"description=Rate to convert as a fraction"`

	// Frequency is how many times per year Rate is convertible.
	Frequency int `json:"frequency" yaml:"frequency" mapstructure:"frequency" validate:"gt=0,lte=2147483647" jsonschema:"minimum=1,maximum=2147483647,description=Compounding periods per year of the input rate"`

	// Type selects the conversion formula.
	Type ConversionType `json:"type" yaml:"type" mapstructure:"type" jsonschema:"type=string,enum=interest,enum=discount,enum=force"`

	// TargetFrequency is how many times per year the returned rate is convertible.
	TargetFrequency int `json:"target_frequency" yaml:"target_frequency" mapstructure:"target_frequency" validate:"gt=0,lte=2147483647" jsonschema:"minimum=1,maximum=2147483647,description=Compounding periods per year of the returned rate"`
}

// DefaultRateRequest converts 6.75% convertible monthly to an effective annual rate.
func DefaultRateRequest() RateRequest {
	return RateRequest{
		Rate:            0.0675,
		Frequency:       12,
		Type:            Interest,
		TargetFrequency: 1,
	}
}

// Call builds the rate.conv call expression. The type tag must already have
// been rendered by TypeToString. Frequencies outside 1..MaxFrequency are an
// error; they are never narrowed.
func (r RateRequest) Call(typeTag string) (Call, error) {
	if err := checkFrequency("frequency", r.Frequency); err != nil {
		return Call{}, err
	}
	if err := checkFrequency("target_frequency", r.TargetFrequency); err != nil {
		return Call{}, err
	}
	return NewCall(RateConvFunction,
		Real(r.Rate),
		Integer(int32(r.Frequency)), //nolint:gosec // G115: range checked above
		String(typeTag),
		Integer(int32(r.TargetFrequency)), //nolint:gosec // G115: range checked above
	), nil
}

func checkFrequency(field string, v int) error {
	if v < 1 || v > MaxFrequency {
		return fmt.Errorf("%s %d out of range 1..%d", field, v, MaxFrequency)
	}
	return nil
}
