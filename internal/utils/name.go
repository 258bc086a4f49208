package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// NormalizeName trims the input and title-cases each whitespace-separated
// part, collapsing runs of spaces ("  jane   DOE " -> "Jane Doe"). All name
// comparisons in the register run on normalized names.
func NormalizeName(name string) string {
	parts := strings.Fields(name)
	for i, p := range parts {
		parts[i] = titleCaser.String(p)
	}
	return strings.Join(parts, " ")
}

// NameHasDigit reports whether the name contains any decimal digit.
func NameHasDigit(name string) bool {
	return strings.ContainsFunc(name, unicode.IsDigit)
}

// ValidName reports whether a normalized name is acceptable for storage:
// non-empty, no digits and no '|', which is reserved as the QR payload
// separator.
func ValidName(name string) bool {
	return name != "" && !NameHasDigit(name) && !strings.Contains(name, "|")
}

// SanitizeManualName strips characters that could act as CSV or formula
// injection vectors from an admin-typed name before it reaches the log table.
func SanitizeManualName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', ';', '=', '+', '-', '@', '\t', '\r', '\n':
			return -1
		}
		return r
	}, name)
}
