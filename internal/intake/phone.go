package intake

import "fmt"

// NormalizePhone reduces raw input to its digits, coerces a leading 8 to 7,
// prefixes 7 when only the 10 subscriber digits were given, and accepts the
// result only when exactly 11 digits remain. The canonical form is
// "+<11 digits>".
func NormalizePhone(raw string) (string, error) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}

	if len(digits) == 11 && digits[0] == '8' {
		digits[0] = '7'
	} else if len(digits) == 10 {
		digits = append([]byte{'7'}, digits...)
	}

	if len(digits) != 11 {
		return "", fmt.Errorf("expected 11 digits, got %d", len(digits))
	}
	return "+" + string(digits), nil
}
