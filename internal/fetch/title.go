package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// maxTitleLength bounds the extracted title for cycle reporting.
const maxTitleLength = 200

// extractTitle pulls the <title> text out of an HTML document.
// Best effort: returns an empty string for non-HTML content, missing
// titles, or malformed markup. The tokenizer stops at the first title
// element, so a large body costs only a prefix scan.
func extractTitle(content string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(content))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) != "title" {
				continue
			}
			if tokenizer.Next() != html.TextToken {
				return ""
			}
			title := strings.TrimSpace(string(tokenizer.Text()))
			if len(title) > maxTitleLength {
				title = title[:maxTitleLength]
			}
			return title
		}
	}
}
