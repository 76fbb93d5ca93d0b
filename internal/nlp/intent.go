package nlp

import "strings"

type intentPatterns struct {
	intent   string
	patterns []string
}

var intentLadder = []intentPatterns{
	{"greeting", []string{"hello", "hi", "hey", "good morning", "good afternoon"}},
	{"goodbye", []string{"bye", "goodbye", "see you", "farewell"}},
	{"help", []string{"help", "assist", "support"}},
	{"question", []string{"what", "how", "when", "where", "why", "?"}},
	{"gratitude", []string{"thank", "thanks", "appreciate"}},
	{"pricing", []string{"price", "cost", "fee", "payment"}},
	{"product_inquiry", []string{"product", "service", "feature"}},
}

// DetectIntent walks the intent ladder over the preprocessed text and
// returns the first intent with a matching pattern, or "general".
func DetectIntent(text string) string {
	processed := Preprocess(text)
	for _, ip := range intentLadder {
		for _, p := range ip.patterns {
			if strings.Contains(processed, p) {
				return ip.intent
			}
		}
	}
	return "general"
}

// fastPatterns is ordered; the first keyword found decides the intent.
var fastPatterns = []struct{ keyword, intent string }{
	{"hello", "greeting"},
	{"hi", "greeting"},
	{"hey", "greeting"},
	{"help", "help"},
	{"support", "help"},
	{"assist", "help"},
	{"price", "pricing"},
	{"cost", "pricing"},
	{"fee", "pricing"},
	{"service", "product"},
	{"product", "product"},
	{"thanks", "gratitude"},
	{"thank", "gratitude"},
	{"bye", "goodbye"},
	{"goodbye", "goodbye"},
}

var questionStarts = []string{"what", "how", "when", "where", "why"}

// FastDetectIntent is the single-pass keyword lookup of the fast backend.
// Questions are recognised by a leading question word since FastPreprocess
// drops the question mark; a raw "?" also counts.
func FastDetectIntent(text string) string {
	processed := FastPreprocess(text)
	for _, fp := range fastPatterns {
		if strings.Contains(processed, fp.keyword) {
			return fp.intent
		}
	}
	if strings.Contains(text, "?") {
		return "question"
	}
	for _, q := range questionStarts {
		if strings.HasPrefix(processed, q) {
			return "question"
		}
	}
	return "general"
}
