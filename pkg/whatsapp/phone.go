package whatsapp

import (
	"fmt"
	"strings"
)

// DefaultCountryCode is prepended to bare 10 digit national numbers
const DefaultCountryCode = "91"

const (
	nationalLength  = 10
	canonicalLength = 12
)

// NormalizePhone coerces a phone number to <countrycode><number>.
// Non-digits and leading zeros are dropped, a 10 digit number gets
// DefaultCountryCode, anything that does not end up 12 digits long is
// rejected with ErrInvalidPhone.
func NormalizePhone(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	digits = strings.TrimLeft(digits, "0")

	if len(digits) == nationalLength {
		digits = DefaultCountryCode + digits
	}
	if len(digits) != canonicalLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return digits, nil
}
