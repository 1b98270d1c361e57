package entities

// Fallible pairs a success flag with a payload. The payload is meaningful
// only when OK is true.
type Fallible[T any] struct {
	Value T    `json:"value"`
	OK    bool `json:"ok"`
}

// FallibleDouble is the outcome of a numeric call into the runtime.
type FallibleDouble = Fallible[float64]

// FallibleString is the outcome of rendering a tag for the runtime.
type FallibleString = Fallible[string]

// Succeeded wraps v in a successful result.
func Succeeded[T any](v T) Fallible[T] {
	return Fallible[T]{OK: true, Value: v}
}

// Failed returns a failed result with a zero payload.
func Failed[T any]() Fallible[T] {
	return Fallible[T]{}
}

// Get returns the payload and the success flag, comma-ok style.
func (f Fallible[T]) Get() (T, bool) {
	if !f.OK {
		var zero T
		return zero, false
	}
	return f.Value, true
}

// OrZero returns the payload when OK and the zero value otherwise.
func (f Fallible[T]) OrZero() T {
	v, _ := f.Get()
	return v
}
