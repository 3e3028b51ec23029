// Package clean enforces per-field syntactic validity: phone numbers
// coerced to a canonical 10-digit form, timestamps parsed under an
// explicitly declared convention and normalized to UTC, and the text
// cleanup rules (whitespace, casing, yes/no flags) that attendance-style
// sources need.
package clean

import "strings"

// DefaultCountryCode is the prefix used to build phone-derived identity
// keys. The national number 9876543210 yields identity 919876543210.
const DefaultCountryCode = "91"

// NormalizePhone strips all non-digit characters and reduces the result
// to the last 10 digits (tolerating prefixed country codes). It returns
// ok=false when the remainder is not exactly 10 digits.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= 10 {
		digits = digits[len(digits)-10:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

// PhoneIdentity builds the phone-derived identity key: countryCode
// concatenated with the normalized 10-digit phone. An empty countryCode
// falls back to DefaultCountryCode.
func PhoneIdentity(raw, countryCode string) (string, bool) {
	phone, ok := NormalizePhone(raw)
	if !ok {
		return "", false
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return countryCode + phone, true
}

// ValidPhoneIdentity reports whether id is a well-formed phone identity
// key for the given country code: prefix plus exactly 10 digits, all
// numeric.
func ValidPhoneIdentity(id, countryCode string) bool {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if len(id) != len(countryCode)+10 {
		return false
	}
	if !strings.HasPrefix(id, countryCode) {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
