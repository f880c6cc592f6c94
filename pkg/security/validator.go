package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSearchQueryLength is the longest accepted search query, in characters.
// It matches the width of the email and name columns.
const MaxSearchQueryLength = 64

var (
	ErrQueryTooLong     = errors.New("search query too long")
	ErrQueryInvalidChar = errors.New("search query contains invalid characters")
)

// dangerousPatterns reject queries that look like SQL or script injection
// even when every character on its own is allowed.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute|truncate)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)\b(waitfor|sleep|benchmark|pg_sleep)\b`),
	regexp.MustCompile(`--|/\*|\*/`),
	regexp.MustCompile(`(?i)(javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims the query and rejects anything other than the
// characters that can appear in a name or an email address.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalidChar
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalidChar
		}
	}

	return query, nil
}

func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '\''
}

// SanitizeSearchString escapes LIKE wildcards so a validated query matches
// literally. Use it with `ESCAPE '\'`.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
