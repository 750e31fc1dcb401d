package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// NormalizePhone strips the punctuation a phone number may be typed with,
// keeping a leading + and the digits.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HashPhone hashes the normalized phone number so logs can correlate
// submissions without carrying the number itself.
func HashPhone(phone string) string {
	return HashString(NormalizePhone(phone))
}
