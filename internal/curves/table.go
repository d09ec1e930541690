package curves

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidLength  = errors.New("invalid lookup table length")
	ErrLengthMismatch = errors.New("source and destination lengths differ")
	ErrOutOfDomain    = errors.New("sample outside lookup table domain")
)

// Sample is an integer intensity type a table can index and store.
type Sample interface {
	~uint8 | ~uint16
}

// Table maps every representable input intensity to an output intensity.
// A nil Table is the identity and leaves destinations untouched.
type Table[T Sample] []T

// DomainSize is the number of distinct values of T.
func DomainSize[T Sample]() int {
	var zero T
	return int(^zero) + 1
}

// BuildTable evaluates fn at 0..length-1, clamping each result to
// [0, length-1] and rounding to the nearest integer. NaN results store 0.
func BuildTable[T Sample](fn Func, length int) (Table[T], error) {
	if fn == nil {
		return nil, nil
	}
	if length <= 0 || length > DomainSize[T]() {
		return nil, fmt.Errorf("length %d not in 1..%d: %w", length, DomainSize[T](), ErrInvalidLength)
	}

	top := float64(length - 1)
	table := make(Table[T], length)
	for i := range table {
		v := fn(float64(i))
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > top:
			v = top
		}
		table[i] = T(math.Round(v))
	}
	return table, nil
}

// Identity reports whether the table maps every input to itself.
func (t Table[T]) Identity() bool {
	for i, v := range t {
		if int(v) != i {
			return false
		}
	}
	return true
}

// Apply writes dst[i] = t[src[i]]. src and dst may be the same slice. On
// ErrOutOfDomain the entries before the offending sample have been written.
func (t Table[T]) Apply(src, dst []T) error {
	if t == nil {
		return nil
	}
	if len(src) != len(dst) {
		return fmt.Errorf("%d != %d: %w", len(src), len(dst), ErrLengthMismatch)
	}

	full := len(t) == DomainSize[T]()
	for i, v := range src {
		if !full && int(v) >= len(t) {
			return fmt.Errorf("sample %d at %d, table length %d: %w", v, i, len(t), ErrOutOfDomain)
		}
		dst[i] = t[v]
	}
	return nil
}
