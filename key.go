package moltbook

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// KeyPrefix is the prefix the service uses for issued API keys.
// Keys without it are accepted; callers may warn.
const KeyPrefix = "moltbook_"

const ellipsis = "\u2026"

// quotePairs maps an opening quote to the closing quote that may wrap a pasted key.
var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'\u201c': '\u201d',
	'\u2018': '\u2019',
}

// invisible reports runes that clipboards smuggle into pasted secrets.
func invisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}

var stripInvisible = runes.Remove(runes.Predicate(invisible))

// SanitizeKey normalizes a pasted or typed API key.
//
// Surrounding whitespace is trimmed, one matching pair of straight or curly
// quotes wrapping the whole value is removed, and zero-width characters,
// byte-order marks and any remaining whitespace are dropped. Only the
// outermost quote pair is removed, so a value quoted twice keeps its inner
// pair.
func SanitizeKey(raw string) string {
	s := strings.TrimFunc(raw, invisible)
	s = unquote(s)

	out, _, _ := transform.String(stripInvisible, s)
	return out
}

// unquote strips exactly one matching quote pair wrapping s.
func unquote(s string) string {
	if utf8.RuneCountInString(s) < 2 {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	last, lastSize := utf8.DecodeLastRuneInString(s)
	closing, ok := quotePairs[first]
	if !ok || closing != last {
		return s
	}
	return strings.TrimFunc(s[size:len(s)-lastSize], invisible)
}

// MaskKey renders a key for display, keeping only a short prefix and suffix.
func MaskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	r := []rune(key)
	if len(r) <= 12 {
		return string(r[:min(2, len(r))]) + ellipsis + string(r[max(len(r)-2, 0):])
	}
	return string(r[:8]) + ellipsis + string(r[len(r)-4:])
}

// HasKnownPrefix reports whether key carries the service's key prefix.
func HasKnownPrefix(key string) bool {
	return strings.HasPrefix(key, KeyPrefix)
}
