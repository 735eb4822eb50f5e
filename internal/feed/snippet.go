package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// snippetMaxLen bounds the excerpt stored with each post and shipped in the
// search index.
const snippetMaxLen = 200

// Snippet extracts readable text from feed HTML and truncates it. Feed
// descriptions arrive as markup of wildly varying quality; parsing instead
// of regex-stripping keeps entities and nesting intact. Unparseable input
// degrades to the raw string.
func Snippet(html string, maxLen int) string {
	text := html
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		text = doc.Text()
	}

	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, maxLen)
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
