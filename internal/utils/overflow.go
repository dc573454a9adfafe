// Package utils provides small overflow-checked arithmetic helpers used
// when turning untrusted header length fields into allocation sizes.
package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow reports whether a*b would overflow uint64.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}
	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}
	return nil
}

// SafeMultiply multiplies two uint64 values, failing instead of wrapping on
// overflow.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// MaxRecordBytes bounds how large a single record/block payload a reader
// will allocate for, guarding against a corrupt or hostile length field in
// a record, block, or file header.
const MaxRecordBytes = 1 << 30 // 1GB

// ValidateBufferSize fails if size is zero or exceeds maxSize.
func ValidateBufferSize(size, maxSize uint64, description string) error {
	if size == 0 {
		return fmt.Errorf("%s: size cannot be zero", description)
	}
	if size > maxSize {
		return fmt.Errorf("%s: size %d exceeds maximum %d", description, size, maxSize)
	}
	return nil
}
