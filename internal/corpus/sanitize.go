package corpus

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces posting HTML to plain text: script and style blocks
// are dropped, tags removed and whitespace collapsed. Plain-text input
// passes through unchanged apart from whitespace normalization.
func StripHTML(content string) (string, error) {
	if !strings.Contains(content, "<") {
		return collapseWhitespace(content), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	return collapseWhitespace(doc.Text()), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
