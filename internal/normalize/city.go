// Package normalize canonicalises free-form location names so user-supplied
// identifiers can be matched against stored destination records.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// City reduces a free-form city string to its canonical matching key: the
// portion before the first comma, with accents removed, every rune that is
// not an ASCII letter dropped, lower-cased. The transform is idempotent, and
// an input without any letters reduces to the empty string; callers must
// treat an empty key as "no match".
func City(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	decomposed, _, err := transform.String(stripMarks, s)
	if err == nil {
		s = decomposed
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// CitySQL is the SQL expression applying the same canonicalisation to a city
// column, so database-side matching agrees with City byte for byte. Kept next
// to the Go transform so the two stay in sync.
const CitySQL = `regexp_replace(lower(translate(split_part(%s, ',', 1), 'áéíóúàèìòùäëïöüâêîôûãõçñÁÉÍÓÚÀÈÌÒÙÄËÏÖÜÂÊÎÔÛÃÕÇÑ', 'aeiouaeiouaeiouaeiouaocnAEIOUAEIOUAEIOUAEIOUAOCN')), '[^a-z]', '', 'g')`
