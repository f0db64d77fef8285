package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Resize returns s with length n, reusing its backing array when the capacity allows.
// Elements beyond the previous length are zero-valued.
//
// Parameters:
//   - s: the slice to resize (may be nil)
//   - n: the required length
//
// Returns:
//   - []T: a slice of length n
func Resize[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if cap(s) >= n {
		if n > len(s) {
			clear(s[len(s):n])
		}
		return s[:n]
	}
	out := make([]T, n)
	copy(out, s)
	return out
}
