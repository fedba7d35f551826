package config

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// longest file name most file systems accept, in bytes
const maxFileNameBytes = 240

// CleanFileName makes single path segment out of arbitrary text: characters
// which cannot be part of file name are removed, leading and trailing dots
// and spaces are dropped and the result is cut to a length file systems
// accept. Empty result is replaced with a placeholder.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || unicode.IsControl(sym) || strings.ContainsRune(reservedNameRunes, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.Trim(out, ". ")

	if len(out) > maxFileNameBytes {
		cut := maxFileNameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimRight(out[:cut], ". ")
	}
	if len(out) == 0 {
		return "_untitled_"
	}
	if reservedName(out) {
		out = "_" + out
	}
	return out
}
