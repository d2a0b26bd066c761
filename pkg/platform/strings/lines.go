// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitLines splits text on line breaks, accepting both "\n" and "\r\n".
// An empty input yields nil.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// TrimNonEmpty trims whitespace from each element and drops elements that are
// empty after trimming. Order and duplicates are preserved.
//
// Example:
//
//	TrimNonEmpty([]string{"  foo ", "", "bar", "foo", "  "})
//	// Returns: []string{"foo", "bar", "foo"}
func TrimNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// DedupeAndTrimLower trims and lowercases each element, dropping empty
// strings and case-insensitive duplicates. Order is preserved.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  FOO ", "bar", "Foo"})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// ToLowerASCII lowercases only the ASCII letters A-Z. Other bytes, including
// multi-byte UTF-8 sequences, are left unchanged.
func ToLowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
