package logging

import (
	"log/slog"
	"strings"
)

// secretKeyPatterns are key substrings whose values are always masked.
// Matched case-insensitively.
var secretKeyPatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"AUTHORIZATION",
}

// tokenPrefixes mark values that are credentials regardless of key name.
var tokenPrefixes = []string{
	"Bearer ",
	"ya29.", // Google OAuth access token
	"1//",   // Google OAuth refresh token
}

// ShouldMask reports whether a key name suggests a sensitive value.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range secretKeyPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value looks like a credential.
func ContainsTokenPrefix(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// MaskValue hides all but the last four characters of value.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// RedactAttr masks secret-looking string attributes. It has the shape of
// slog.HandlerOptions.ReplaceAttr.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	if s := a.Value.String(); ShouldMask(a.Key) || ContainsTokenPrefix(s) {
		return slog.String(a.Key, MaskValue(s))
	}
	return a
}
