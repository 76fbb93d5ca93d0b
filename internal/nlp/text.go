// Package nlp holds the keyword text processing behind the trained responder:
// normalisation, tokenisation, keyword vectors, similarity and a keyword
// intent ladder. None of it is statistical.
package nlp

import (
	"math"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/jdkato/prose/v2"
)

var (
	disallowed   = regexp.MustCompile(`[^a-zA-Z0-9\s.!?]`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b|\(\d{3}\)\s*\d{3}-\d{4}\b`)
	numPattern   = regexp.MustCompile(`\b\d+\b`)
)

var stopWords = toSet(
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
	"to", "was", "will", "with", "this", "but", "they", "have",
	"had", "what", "said", "each", "which", "she", "do", "how", "their",
	"if", "up", "out", "many", "then", "them", "these", "so", "some", "her",
	"would", "make", "like", "into", "him", "time", "two", "more", "go", "no",
	"way", "could", "my", "than", "first", "been", "call", "who", "oil", "sit",
	"now", "find", "down", "day", "did", "get", "come", "made", "may", "part",
)

// Preprocess lowercases, drops everything but letters, digits, whitespace and
// sentence punctuation, and collapses whitespace.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = disallowed.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// FastPreprocess is Preprocess without sentence punctuation.
func FastPreprocess(text string) string {
	text = nonAlnum.ReplaceAllString(strings.ToLower(text), "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize splits preprocessed text into word tokens with sentence
// punctuation removed.
func Tokenize(text string) []string {
	processed := Preprocess(text)
	if processed == "" {
		return nil
	}

	doc, err := prose.NewDocument(processed,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(processed)
	}

	tokens := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		word := strings.Trim(tok.Text, ".!?")
		if word == "" {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func RemoveStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || stopWords[strings.ToLower(tok)] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Keywords counts non stop-word tokens.
func Keywords(text string) map[string]int {
	kw := make(map[string]int)
	for _, tok := range RemoveStopWords(Tokenize(text)) {
		kw[tok]++
	}
	return kw
}

// WordCount is the number of whitespace-separated words after Preprocess.
func WordCount(text string) int {
	return len(strings.Fields(Preprocess(text)))
}

// Cosine is the cosine similarity of the keyword frequency vectors of a and b.
func Cosine(a, b string) float64 {
	ka, kb := Keywords(a), Keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for w, fa := range ka {
		na += float64(fa * fa)
		dot += float64(fa * kb[w])
	}
	for _, fb := range kb {
		nb += float64(fb * fb)
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Fuzzy is the Jaro-Winkler similarity of the normalised strings.
func Fuzzy(a, b string) float64 {
	a, b = FastPreprocess(a), FastPreprocess(b)
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false)
}

// Entities reports which kinds of contact data or numbers the raw text holds.
func Entities(text string) []string {
	var out []string
	if emailPattern.MatchString(text) {
		out = append(out, "EMAIL")
	}
	if phonePattern.MatchString(text) {
		out = append(out, "PHONE")
	}
	if numPattern.MatchString(text) {
		out = append(out, "NUMBER")
	}
	return out
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
