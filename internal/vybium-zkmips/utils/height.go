package utils

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// PaddedHeight returns the smallest power-of-two trace height holding n rows,
// with its log2. Fewer than two rows pad to a single row.
func PaddedHeight(n int) (height, log2 int) {
	if n <= 1 {
		return 1, 0
	}
	log2 = bits.Len(uint(n - 1))
	return 1 << log2, log2
}
