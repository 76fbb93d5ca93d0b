package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "hello there! how are you?", Preprocess("  Hello,   THERE! How are you? "))
	assert.Equal(t, "price 10", Preprocess("Price: $10"))
	assert.Equal(t, "", Preprocess("  @@@ "))
	assert.Equal(t, "what", FastPreprocess("What?!"))
}

func TestTokenizeDropsPunctuation(t *testing.T) {
	tokens := Tokenize("Hello there. How are you?")
	assert.NotContains(t, tokens, ".")
	assert.NotContains(t, tokens, "?")
	assert.Contains(t, tokens, "hello")
	assert.Contains(t, tokens, "you")
	assert.Nil(t, Tokenize("   "))
}

func TestKeywordsSkipStopWords(t *testing.T) {
	kw := Keywords("What is the price of the product and the price of delivery")
	assert.Equal(t, 2, kw["price"])
	assert.Equal(t, 1, kw["product"])
	assert.NotContains(t, kw, "the")
	assert.NotContains(t, kw, "what")
	assert.Empty(t, Keywords("what is it"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine("pricing plans", "Pricing plans!"), 1e-9)
	assert.Zero(t, Cosine("pricing", "goodbye"))
	assert.Zero(t, Cosine("", "pricing"))

	partial := Cosine("how much does it cost", "cost of the premium plan")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestFuzzy(t *testing.T) {
	assert.InDelta(t, 1.0, Fuzzy("pricing", "PRICING"), 1e-9)
	assert.Greater(t, Fuzzy("pricing", "priceing"), 0.9)
	assert.Less(t, Fuzzy("pricing", "goodbye"), 0.6)
	assert.Zero(t, Fuzzy("", "x"))
}

func TestDetectIntent(t *testing.T) {
	cases := map[string]string{
		"Hello there":             "greeting",
		"good morning":            "greeting",
		"bye for now":             "goodbye",
		"I need support":          "help",
		"when do you open":        "question",
		"I appreciate it":         "gratitude",
		"payment options":         "pricing",
		"new feature":             "product_inquiry",
		"ok":                      "general",
		"Is it free?":             "question",
		"thanks, what's the cost": "question",
	}
	for in, want := range cases {
		assert.Equal(t, want, DetectIntent(in), in)
	}
}

func TestFastDetectIntent(t *testing.T) {
	cases := map[string]string{
		"hey":               "greeting",
		"help me":           "help",
		"what does it cost": "pricing",
		"your product":      "product",
		"thanks a lot":      "gratitude",
		"goodbye":           "goodbye",
		"where are you":     "question",
		"is it open?":       "question",
		"ok":                "general",
	}
	for in, want := range cases {
		assert.Equal(t, want, FastDetectIntent(in), in)
	}
}

func TestEntities(t *testing.T) {
	assert.Equal(t, []string{"EMAIL"}, Entities("write to ops@example.com"))
	assert.Equal(t, []string{"PHONE", "NUMBER"}, Entities("call 555-123-4567"))
	assert.Equal(t, []string{"NUMBER"}, Entities("I need 3 seats"))
	assert.Empty(t, Entities("nothing here"))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "hello world", StripMarkup("<p>hello <b>world</b></p><script>alert(1)</script>"))
	assert.Equal(t, "plain text", StripMarkup("  plain text "))
	assert.Equal(t, "a b", StripMarkup("<div>a</div>\n\n<div>b</div><style>p{}</style>"))
}
