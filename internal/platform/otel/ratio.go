package otel

import (
	"fmt"
	"strconv"
)

func parseRatio(raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sample ratio %q: %w", raw, err)
	}
	if value < 0 || value > 1 {
		return 0, fmt.Errorf("sample ratio %v must be within [0, 1]", value)
	}
	return value, nil
}
