// Package email carries the address rules the domain depends on: the
// institutional domain gate for coaches and volunteers, the technical
// addresses minted for athlete accounts, and the name fallback used when an
// enrollment arrives with an email but no names.
package email

import (
	"strings"
	"unicode"
)

// nameSeparators split an address local part into name segments.
const nameSeparators = "._-+"

// DeriveNameFromEmail guesses a first and last name from the local part of
// an address: first segment and last segment, title-cased. When the address
// yields fewer than two segments the gaps are filled with "User" so
// provisioned upstream accounts always carry both names.
func DeriveNameFromEmail(addr string) (first, last string) {
	local := addr
	if before, _, found := strings.Cut(addr, "@"); found {
		local = before
	}

	segments := strings.FieldsFunc(local, func(r rune) bool {
		return strings.ContainsRune(nameSeparators, r)
	})

	switch len(segments) {
	case 0:
		return "User", "User"
	case 1:
		return title(segments[0]), "User"
	default:
		return title(segments[0]), title(segments[len(segments)-1])
	}
}

func title(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
