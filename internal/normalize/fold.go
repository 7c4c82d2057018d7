package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes, strips combining marks, and recomposes, so headers
// with diacritics fold to plain ASCII before lowercasing.
var foldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldName canonicalizes a column name: diacritics stripped, lowercased,
// trimmed, inner spaces replaced by underscores.
func FoldName(s string) string {
	ascii, _, err := transform.String(foldChain, s)
	if err != nil {
		ascii = s
	}
	ascii = strings.TrimSpace(strings.ToLower(ascii))
	return strings.ReplaceAll(ascii, " ", "_")
}
