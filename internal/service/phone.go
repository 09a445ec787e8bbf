package service

import (
	"strings"

	"github.com/confirmador/internal/constants"
)

// StripDigits removes everything except decimal digits from raw.
func StripDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone strips formatting and prepends the country prefix when the
// number looks like a ten digit local one.
func NormalizePhone(raw, countryPrefix string) string {
	digits := StripDigits(raw)
	if len(digits) == 10 && countryPrefix != "" {
		digits = countryPrefix + digits
	}
	return digits
}

// PhoneSuffix returns the trailing digits used to match inbound replies to
// orders. Shorter numbers are returned whole.
func PhoneSuffix(phone string) string {
	digits := StripDigits(phone)
	if len(digits) <= constants.PhoneSuffixLength {
		return digits
	}
	return digits[len(digits)-constants.PhoneSuffixLength:]
}
