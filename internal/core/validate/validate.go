// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
)

// Name validates that a label (forum name, persona id, ...) is non-empty
// after trimming whitespace.
func Name(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// UnitInterval validates that a score lies in [0, 1].
func UnitInterval(field string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", field, v)
	}
	return nil
}

// Identifier validates a lowercase machine id: letters, digits, "_" and "-".
func Identifier(field, value string) error {
	if err := Name(field, value); err != nil {
		return err
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("%s may only contain lowercase letters, digits, '_' and '-'", field)
		}
	}
	return nil
}
