// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Choice trims and folds a select-box value for comparison against a fixed set.
func Choice(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Phone trims a phone number and collapses internal whitespace.
func Phone(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
