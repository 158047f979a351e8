// Package match implements the import-side entity matcher: name key
// normalization and pure classification of import records against a
// snapshot of existing TAM accounts.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// Key normalizes a company name into its canonical match key: unicode
// case-folded, trimmed, inner whitespace collapsed to single spaces,
// punctuation stripped. Total and idempotent; the empty string maps to
// the empty (unmatchable) key.
func Key(name string) string {
	folded := keyFolder.String(name)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			// Punctuation is insignificant for matching. "Acme, Inc."
			// and "Acme Inc" refer to the same company.
		}
	}
	return b.String()
}

// displayKey is the stricter identity used by the strict-unique collision
// policy: case folding and whitespace collapse only, punctuation kept.
// Two names with equal Key but unequal displayKey differ by more than
// case and spacing, which strict mode refuses to merge silently.
func displayKey(name string) string {
	folded := keyFolder.String(name)
	return strings.Join(strings.Fields(folded), " ")
}
