// Package textnorm canonicalizes raw OCR text before dictionary lookups.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripped drops OCR layout noise; NBSP becomes a plain space.
var stripped = strings.NewReplacer(
	"\t", "",
	"\n", "",
	"\r", "",
	"|", "",
	"\u00a0", " ",
)

/*
Normalize canonicalizes a raw OCR string.

Steps, in order:
  - remove tabs, newlines and stray pipe characters, turn NBSP into a space;
  - trim and lower-case;
  - fold Czech letters (č -> c, ů -> u, ...);
  - replace every remaining non-ASCII rune with a space, so "müsli" becomes
    "m sli".

The result is pure ASCII. Normalize is a pure function.
*/
func Normalize(raw string) string {
	text := stripped.Replace(raw)
	text = strings.TrimSpace(text)
	text = strings.ToLower(text)
	text = FoldDiacritics(text)

	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return ' '
		}
		return r
	}, text)
}

// CzechLetters are the accented letters FoldDiacritics folds, both cases.
const CzechLetters = "áčçďéěíňóřšťúůýžÁČĎÉĚÍŇÓŘŠŤÚŮÝŽ"

func isCzechLetter(r rune) bool { return strings.ContainsRune(CzechLetters, r) }

// FoldDiacritics folds CzechLetters to their base letters; every other rune is kept.
func FoldDiacritics(text string) string {
	// transformers keep state, so every call builds its own.
	folder := runes.If(
		runes.Predicate(isCzechLetter),
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))),
		transform.Nop,
	)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		return text
	}
	return folded
}

// Concatenate normalizes raw and removes all whitespace. OCR space placement
// is unreliable, so the name engine segments the space-free form.
func Concatenate(raw string) string {
	return strings.Join(strings.Fields(Normalize(raw)), "")
}

// Tokens normalizes a line and splits it on whitespace.
func Tokens(line string) []string {
	return strings.Fields(Normalize(line))
}
