package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/atoyeh09/LinkBazar/internal/models"
)

// metaMappings is scanned in declaration order. Each fragment field is set
// at most once: later mappings never overwrite an earlier match.
var metaMappings = []struct {
	Property string
	Field    string
}{
	{"og:title", "title"},
	{"og:description", "description"},
	{"og:image", "image"},
	{"og:price:amount", "price"},
	{"product:price:amount", "price"},
	{"og:price:currency", "currency"},
	{"product:price:currency", "currency"},
	{"twitter:image", "image"},
}

// MetaTags extracts a product fragment from social and e-commerce meta
// tags, matching on either the property or name attribute.
func MetaTags(doc *goquery.Document) models.ProductFragment {
	var frag models.ProductFragment
	var rawPrice string

	for _, mapping := range metaMappings {
		content := metaContent(doc, mapping.Property)
		if content == "" {
			continue
		}
		switch mapping.Field {
		case "title":
			if frag.Title == "" {
				frag.Title = content
			}
		case "description":
			if frag.Description == "" {
				frag.Description = content
			}
		case "image":
			if len(frag.Images) == 0 {
				frag.Images = []string{content}
			}
		case "price":
			if rawPrice == "" {
				rawPrice = content
			}
		case "currency":
			if frag.Currency == "" {
				frag.Currency = content
			}
		}
	}

	if rawPrice != "" {
		frag.Price = ParseAmount(rawPrice)
	}

	return frag
}

func metaContent(doc *goquery.Document, property string) string {
	selector := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, property, property)
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
