package utils

import (
	"fmt"
	"unicode/utf8"
)

// maxCodePoint is the highest Unicode scalar value, U+10FFFF.
const maxCodePoint = 0x10FFFF

// IsValidCodePoint reports whether codePoint falls within the Unicode
// scalar value range (U+0000 to U+10FFFF).
func IsValidCodePoint(codePoint int) bool {
	return codePoint >= 0 && codePoint <= maxCodePoint
}

// ToChars returns the rune representation of a single Unicode code point.
// Go's rune already spans the full scalar range, so no surrogate splitting
// is needed for values above the Basic Multilingual Plane.
func ToChars(codePoint int) []rune {
	if !IsValidCodePoint(codePoint) {
		panic(fmt.Sprintf("utils: code point %#x out of range", codePoint))
	}
	return []rune{rune(codePoint)}
}

// CodePointCount returns the number of Unicode code points in s within the
// byte range [from, to).
func CodePointCount(s string, from, to int) (int, error) {
	if from < 0 || to > len(s) || from > to {
		return 0, fmt.Errorf("utils: invalid byte range [%d,%d) for string of length %d", from, to, len(s))
	}
	return utf8.RuneCountInString(s[from:to]), nil
}
