// Package sms renders forecast content into pipe-delimited rows and packs
// them into GSM-7 SMS segments under the transport's character budgets.
package sms

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotGSM7 marks text containing a character outside both GSM-7 charsets.
// Replies are never silently re-encoded as UCS-2; free text passes through
// Transliterate before compilation, so hitting this is a programming defect.
var ErrNotGSM7 = errors.New("character outside the GSM-7 charsets")

// basicChars is the GSM 7-bit default alphabet. Each costs one septet.
const basicChars = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

// extensionChars need an escape prefix on the wire and cost two septets.
const extensionChars = "\f^{}\\[~]|€"

var (
	basicSet     = map[rune]bool{}
	extensionSet = map[rune]bool{}
)

func init() {
	for _, r := range basicChars {
		basicSet[r] = true
	}
	for _, r := range extensionChars {
		extensionSet[r] = true
	}
}

// Septets returns the GSM-7 septet cost of s. Segment capacities (160
// standalone, 153 concatenated) are septet budgets, so extension characters
// like the row delimiters' relatives "[" and "]" count double.
func Septets(s string) (int, error) {
	n := 0
	for _, r := range s {
		switch {
		case basicSet[r]:
			n++
		case extensionSet[r]:
			n += 2
		default:
			return 0, fmt.Errorf("%w: %q", ErrNotGSM7, r)
		}
	}
	return n, nil
}

// translit maps common non-GSM characters to GSM-safe spellings. Applied to
// free text from the registry (waypoint and route names); rendered numeric
// columns are plain ASCII already.
var translit = map[rune]string{
	'–': "-", // en dash
	'—': "-", // em dash
	'‘': "'",
	'’': "'",
	'‚': "'",
	'“': `"`,
	'”': `"`,
	'…': "...",
	' ': " ",
	'°': " ",

	'á': "a", 'â': "a", 'ã': "a",
	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A",
	'ê': "e", 'ë': "e",
	'È': "E", 'Ê': "E", 'Ë': "E",
	'í': "i", 'î': "i", 'ï': "i",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I",
	'ó': "o", 'ô': "o", 'õ': "o",
	'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O",
	'ú': "u", 'û': "u",
	'Ù': "U", 'Ú': "U", 'Û': "U",
	'ç': "c",
	'ý': "y", 'ÿ': "y",
}

// Transliterate rewrites s so that every rune is GSM-7 encodable: known
// lookalikes are substituted, anything else becomes "?". Lossy, total.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case basicSet[r] || extensionSet[r]:
			b.WriteRune(r)
		default:
			if sub, ok := translit[r]; ok {
				b.WriteString(sub)
			} else {
				b.WriteString("?")
			}
		}
	}
	return b.String()
}
