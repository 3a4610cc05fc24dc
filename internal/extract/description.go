package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// descriptionSelector matches description-like elements in document order.
const descriptionSelector = `[class*="description"], [id*="description"], meta[name="description"], [itemprop="description"]`

// Description returns the first description-like element's content: the
// content attribute for meta tags, trimmed text otherwise.
func Description(doc *goquery.Document) string {
	s := doc.Find(descriptionSelector).First()
	if s.Length() == 0 {
		return ""
	}
	if goquery.NodeName(s) == "meta" {
		content, _ := s.Attr("content")
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}
