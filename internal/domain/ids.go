package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a path or body identifier. Non-numeric, fractional, zero
// and negative values are rejected with ErrInvalidInput.
func ParseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s id %q", ErrInvalidInput, kind, raw)
	}
	if err := ValidateID(kind, id); err != nil {
		return 0, err
	}
	return id, nil
}
