package util

import "runtime"

// GetOptimalPoolSize returns the pool size for CPU-bound work:
// min(max(NumCPU*2, 4), 32).
//
// Parsing goes through cgo, so twice the core count keeps cores busy while
// some goroutines are blocked in C. It sizes both the parser pools and the
// conversion worker pool; the two MUST agree.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
