package entities

// ConversionResult is the JSON rendering of one conversion.
type ConversionResult struct {
	Error   *ErrorDetail `json:"error,omitempty"`
	Request RateRequest  `json:"request"`
	Value   float64      `json:"value"`
	OK      bool         `json:"ok"`
}

// NewConversionResult combines a request with its outcome. The value is
// zeroed when the call failed.
func NewConversionResult(req RateRequest, res FallibleDouble, detail *ErrorDetail) ConversionResult {
	return ConversionResult{
		Request: req,
		OK:      res.OK,
		Value:   res.OrZero(),
		Error:   detail,
	}
}
