package lexical

import (
	"strings"
	"unicode"
)

// minTokenLength filters out short noise tokens ("a", "of", "CSS" survives).
const minTokenLength = 3

// stopWords are excluded from keyword-overlap and TF-IDF computations.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "your": {},
	"are": {}, "our": {}, "will": {}, "have": {}, "has": {}, "this": {},
	"that": {}, "from": {}, "who": {}, "what": {}, "about": {}, "into": {},
	"must": {}, "should": {}, "would": {}, "could": {}, "can": {},
	"all": {}, "any": {}, "not": {}, "but": {}, "they": {}, "their": {},
	"them": {}, "were": {}, "was": {}, "been": {}, "being": {}, "more": {},
	"than": {}, "also": {}, "such": {}, "other": {}, "over": {}, "under": {},
	"work": {}, "working": {}, "experience": {}, "years": {}, "year": {},
	"skills": {}, "required": {}, "require": {}, "requirements": {},
	"candidate": {}, "position": {}, "role": {}, "job": {}, "team": {},
	"ability": {}, "strong": {}, "good": {}, "knowledge": {},
}

// Tokenize lowercases the text and splits it into tokens of letters and
// digits, dropping stop words and tokens shorter than minTokenLength.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	tokens := make([]string, 0, len(lower)/6)

	var b strings.Builder
	flush := func() {
		if b.Len() >= minTokenLength {
			tok := b.String()
			if _, stop := stopWords[tok]; !stop {
				tokens = append(tokens, tok)
			}
		}
		b.Reset()
	}

	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// TokenSet returns the distinct tokens of a text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// Stem strips common English suffixes so that "developers", "developing"
// and "developer" collapse to one form. It is a deliberately small subset
// of the Porter algorithm; term comparison does not need full stemming.
func Stem(word string) string {
	if len(word) <= 3 {
		return word
	}

	suffixes := []string{"ements", "ations", "ingly", "ement", "ation", "ness",
		"ings", "ing", "ies", "ers", "ed", "er", "es", "s"}
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) && len(word)-len(suf) >= 3 {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

// StemSet returns the distinct stems of a text's tokens.
func StemSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[Stem(tok)] = struct{}{}
	}
	return set
}
