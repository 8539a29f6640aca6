package normalize

import "strings"

// CountryCode is the fixed dialing prefix for all clinic phone numbers.
const CountryCode = "996"

// NormalizePhone reduces raw input to the 9-digit local form.
// Accepted shapes: bare 9 digits, 0-prefixed 10 digits, 996-prefixed 12
// digits (with or without "+", spaces, dashes). Longer inputs keep their
// trailing 9 digits; anything shorter is rejected.
func NormalizePhone(raw string) (string, bool) {
	digits := digitsOnly(raw)

	switch {
	case len(digits) == 9:
		return digits, true
	case len(digits) == 10 && digits[0] == '0':
		return digits[1:], true
	case len(digits) == 12 && strings.HasPrefix(digits, CountryCode):
		return digits[3:], true
	case len(digits) > 9:
		return digits[len(digits)-9:], true
	}
	return "", false
}

// FormatInternational renders a 9-digit local number with the country code.
func FormatInternational(local string) string {
	return "+" + CountryCode + local
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
