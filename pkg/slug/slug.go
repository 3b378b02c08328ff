// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Category and genre slugs default to From(name) when the client omits one,
// e.g. "Science Fiction" → "science-fiction", "Drôle de drame" → "drole-de-drame".
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// Accents are stripped after NFD decomposition, the result is lower-cased and
// every run of other characters collapses into a single hyphen.
func From(s string) string {
	stripAccents := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(stripAccents, s)

	result = nonAlphanumeric.ReplaceAllString(strings.ToLower(result), "-")
	return strings.Trim(result, "-")
}

// Truncate shortens a slug to at most max bytes without leaving a trailing hyphen.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
