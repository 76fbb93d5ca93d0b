package nlp

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup reduces pasted HTML to its visible text. Input without a tag
// opener is returned trimmed.
func StripMarkup(text string) string {
	if !strings.Contains(text, "<") {
		return strings.TrimSpace(text)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}

	doc.Find("script, style, iframe, noscript").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	out := whitespace.ReplaceAllString(doc.Text(), " ")
	return strings.TrimSpace(out)
}
