// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "FR"

// minReplacementDigits is the smallest digit count accepted for a replacement
// number captured on a wrong-number outcome.
const minReplacementDigits = 6

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsPlausibleReplacement reports whether a captured replacement number carries
// enough digits to be worth writing back to an establishment.
func IsPlausibleReplacement(input string) bool {
	digits := 0
	for _, r := range input {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minReplacementDigits
}
