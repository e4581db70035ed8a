package lexical

import (
	"strings"
	"unicode"
)

// stopwords are excluded from scoring so that function words do not inflate
// overlap between unrelated texts.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "do": true, "does": true,
	"for": true, "from": true, "has": true, "have": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "their": true, "there": true, "this": true,
	"to": true, "was": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "will": true, "with": true,
	"not": true, "no": true, "if": true, "than": true, "then": true,
	"also": true, "may": true, "should": true, "such": true,
}

// Tokenize lowercases the input and splits it on any non-letter, non-digit
// rune. Empty tokens are dropped.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContentTerms returns the deduplicated set of non-stopword tokens.
func ContentTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		terms[tok] = true
	}
	return terms
}

// IsStopword reports whether the token is filtered from scoring.
func IsStopword(tok string) bool {
	return stopwords[strings.ToLower(tok)]
}
