package validation

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryRunes caps the length of a single query.
const MaxQueryRunes = 500

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	return validateScheme(urlStr, "http", "https")
}

// ValidateRedisURL checks a redis:// or rediss:// connection URL.
func ValidateRedisURL(urlStr string) (bool, string) {
	return validateScheme(urlStr, "redis", "rediss")
}

func validateScheme(urlStr string, schemes ...string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range schemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, "URL must use " + strings.Join(schemes, ":// or ") + ":// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// NormalizeQueryText trims the text and collapses runs of whitespace.
func NormalizeQueryText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ValidateQueryText checks normalized query text.
func ValidateQueryText(text string) (bool, string) {
	if text == "" {
		return false, "Query text is required"
	}
	if !utf8.ValidString(text) {
		return false, "Query text must be valid UTF-8"
	}
	if utf8.RuneCountInString(text) > MaxQueryRunes {
		return false, "Query text is too long"
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return false, "Query text contains control characters"
		}
	}
	return true, ""
}
