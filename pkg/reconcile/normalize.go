package reconcile

import "strings"

// Normalize canonicalizes a raw component name into the key used for
// similarity comparison: trimmed, lowercased, with dots, underscores,
// hyphens and whitespace runs collapsed to single spaces. The function
// is idempotent and total; the empty string normalizes to the empty
// string, which never matches anything.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '.', '_', '-', ' ', '\t', '\n', '\r':
			pendingSpace = true
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}

	return b.String()
}
