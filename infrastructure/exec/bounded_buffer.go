package exec

import "bytes"

// DefaultMaxOutputSize limits captured stdout and stderr (10MB each).
const DefaultMaxOutputSize = 10 * 1024 * 1024

// BoundedBuffer is an io.Writer that keeps at most limit bytes and discards
// the rest.
type BoundedBuffer struct {
	buffer    bytes.Buffer
	limit     int
	Truncated bool
}

// NewBoundedBuffer creates a BoundedBuffer holding at most limit bytes.
func NewBoundedBuffer(limit int) *BoundedBuffer {
	return &BoundedBuffer{limit: limit}
}

// Write implements io.Writer. It always reports len(p) so the writing
// process never sees a short write.
func (b *BoundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buffer.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			b.Truncated = true
		}
		return len(p), nil
	}

	if len(p) > remaining {
		b.Truncated = true
		if _, err := b.buffer.Write(p[:remaining]); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	return b.buffer.Write(p)
}

// String returns the kept bytes.
func (b *BoundedBuffer) String() string {
	return b.buffer.String()
}

// Len returns the number of kept bytes.
func (b *BoundedBuffer) Len() int {
	return b.buffer.Len()
}
