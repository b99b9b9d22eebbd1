// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package civility implements the profanity gate applied to user-supplied
// text before it is persisted.
package civility

import (
	_ "embed"
	"strings"
	"sync"
	"unicode"
)

//go:embed words.txt
var defaultWords string

// Verdict is the outcome of a civility check. Offending lists the matched
// dictionary terms in the order they first appear in the text.
type Verdict struct {
	Civil     bool     `json:"civil"`
	Offending []string `json:"offending"`
}

// Checker is implemented by anything that can judge a piece of text.
type Checker interface {
	Check(text string) Verdict
}

// Filter matches text against a fixed dictionary. Single-word terms match
// whole words; multi-word terms match runs of consecutive words. Matching
// is case-insensitive. A Filter is safe for concurrent use.
type Filter struct {
	words   map[string]struct{}
	phrases [][]string
}

// New builds a filter from terms. Blank entries are ignored.
func New(terms []string) *Filter {
	f := &Filter{words: make(map[string]struct{})}
	for _, term := range terms {
		parts := tokenize(strings.ToLower(strings.TrimSpace(term)))
		switch len(parts) {
		case 0:
		case 1:
			f.words[parts[0]] = struct{}{}
		default:
			f.phrases = append(f.phrases, parts)
		}
	}
	return f
}

var (
	defaultOnce   sync.Once
	defaultFilter *Filter
)

// Default returns the filter built from the embedded dictionary.
func Default() *Filter {
	defaultOnce.Do(func() {
		defaultFilter = New(parseList(defaultWords))
	})
	return defaultFilter
}

// IsCivil checks text against the embedded dictionary.
func IsCivil(text string) Verdict {
	return Default().Check(text)
}

type match struct {
	pos  int
	term string
}

// Check lower-cases and trims text, then reports every dictionary term
// found in it.
func (f *Filter) Check(text string) Verdict {
	tokens := tokenize(strings.ToLower(strings.TrimSpace(text)))
	if len(tokens) == 0 {
		return Verdict{Civil: true, Offending: []string{}}
	}

	var found []match
	seen := make(map[string]bool)

	for _, phrase := range f.phrases {
		term := strings.Join(phrase, " ")
		if pos := indexPhrase(tokens, phrase); pos >= 0 && !seen[term] {
			seen[term] = true
			found = append(found, match{pos: pos, term: term})
		}
	}
	for i, tok := range tokens {
		if _, ok := f.words[tok]; ok && !seen[tok] {
			seen[tok] = true
			found = append(found, match{pos: i, term: tok})
		}
	}

	if len(found) == 0 {
		return Verdict{Civil: true, Offending: []string{}}
	}

	// Insertion sort keeps phrases ahead of single words at the same position.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].pos < found[j-1].pos; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}

	terms := make([]string, len(found))
	for i, m := range found {
		terms[i] = m.term
	}
	return Verdict{Civil: false, Offending: terms}
}

func indexPhrase(tokens, phrase []string) int {
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// tokenize splits s into words of letters and digits. Apostrophes inside a
// word are dropped so "don't" and "dont" compare equal.
func tokenize(s string) []string {
	s = strings.ReplaceAll(s, "'", "")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func parseList(raw string) []string {
	var terms []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	return terms
}
