package menu

import "strings"

// Normalize case-folds s and collapses every whitespace run to a single space.
// Equality of normalized forms is the only definition of an exact match.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
