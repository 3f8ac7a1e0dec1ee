// Package secrets keeps credentials out of logs and error messages.
package secrets

import (
	"regexp"
	"strings"
)

const replacement = "[REDACTED]"

// Connection strings and key=value credentials as they appear in DSNs
// (postgres URL and keyword forms) and Redis URLs.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`((?:postgres|postgresql|redis|rediss)://[^:/@\s]*:)[^@\s]+(@)`),
	regexp.MustCompile(`(?i)(\b(?:password|pwd|sslpassword)\s*=\s*)(?:'[^']*'|[^\s]+)()`),
}

// Redactor masks credentials embedded in strings
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the default credential patterns
func NewRedactor() *Redactor {
	return &Redactor{patterns: patterns}
}

// RedactString masks every credential found in input, keeping the
// surrounding text so the value stays useful for diagnostics
func (r *Redactor) RedactString(input string) string {
	result := input
	for _, p := range r.patterns {
		result = p.ReplaceAllString(result, "${1}"+replacement+"${2}")
	}
	return result
}

var defaultRedactor = NewRedactor()

// Redact masks credentials with the default redactor.
func Redact(s string) string {
	return defaultRedactor.RedactString(s)
}

// IsSensitiveKey reports whether a config key name suggests a secret.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, k := range []string{"password", "pwd", "secret", "token", "dsn"} {
		if strings.Contains(lowerKey, k) {
			return true
		}
	}
	return false
}
