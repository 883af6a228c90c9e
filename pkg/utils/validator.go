package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var employeeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateEmployeeID validates an employee identifier
func ValidateEmployeeID(id string) error {
	if !employeeIDRegex.MatchString(id) {
		return fmt.Errorf("invalid employee id: %q", id)
	}
	return nil
}

// ValidateBonusAmount validates a bonus amount
func ValidateBonusAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("bonus amount cannot be negative: %.2f", amount)
	}
	if amount > 10000000 {
		return fmt.Errorf("bonus amount exceeds maximum limit: %.2f", amount)
	}
	return nil
}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizeComment strips control characters from free-text comments
// before they reach storage or the export workbook.
func SanitizeComment(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
