package saf

import (
	"fmt"
	"strings"
)

const (
	megabyte = 1_000_000
	gigabyte = 1_000_000_000
)

// Threshold converts a split size and unit into bytes. "MB" means decimal megabytes;
// any other unit is read as decimal gigabytes.
func Threshold(value int64, unit string) (int64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidThreshold, value)
	}
	if strings.EqualFold(strings.TrimSpace(unit), "MB") {
		return value * megabyte, nil
	}
	return value * gigabyte, nil
}
