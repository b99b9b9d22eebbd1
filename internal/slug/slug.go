// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Uniqueness is the caller's concern: a generated slug is only a candidate.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed matches anything that isn't a letter, digit, space or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9 -]`)
	// spaceRuns collapses consecutive spaces into one.
	spaceRuns = regexp.MustCompile(` {2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Café, Déjà Vu!" → "cafe-deja-vu"
//
// Diacritics are folded to their base letter, everything outside
// [a-z0-9 -] is dropped, whitespace runs become a single hyphen. Existing
// hyphens are kept as they are, so Generate is idempotent on its output.
func Generate(s string) string {
	result := strings.ToLower(removeAccents(s))
	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, result)
	result = disallowed.ReplaceAllString(result, "")
	result = spaceRuns.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)
	return strings.ReplaceAll(result, " ", "-")
}

// HasContent reports whether slug contains at least one letter or digit.
func HasContent(slug string) bool {
	return strings.IndexFunc(slug, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// removeAccents decomposes s and drops the combining marks.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
