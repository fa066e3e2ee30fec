package dac

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNameLen is the longest account name the chain accepts.
const maxNameLen = 12

var roleSuffixes = map[string]string{
	"authority": "auth",
	"treasury":  "tres",
}

// NameToID derives a DAC id from its display name: accents are stripped,
// letters lowercased and everything outside the account-name alphabet
// (a-z, 1-5) dropped, capped at 12 characters.
func NameToID(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(folded) {
		if sb.Len() == maxNameLen {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '1' && r <= '5') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// AccountFromID derives a per-role account (authority, treasury) from a DAC
// id by appending a short role suffix, trimming the id so the result still
// fits the 12 character limit.
func AccountFromID(id, role string) string {
	suffix, ok := roleSuffixes[role]
	if !ok {
		suffix = NameToID(role)
		if len(suffix) > 4 {
			suffix = suffix[:4]
		}
	}
	if keep := maxNameLen - len(suffix); len(id) > keep {
		id = id[:keep]
	}
	return id + suffix
}
