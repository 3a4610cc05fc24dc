package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestStructuredJSONLD(t *testing.T) {
	tests := []struct {
		name             string
		html             string
		expectedTitle    string
		expectedPrice    *float64
		expectedCurrency string
		expectedImages   []string
	}{
		{
			name: "product with offers object",
			html: `<html><head><script type="application/ld+json">
				{
					"@context": "https://schema.org",
					"@type": "Product",
					"name": "Wireless Mouse",
					"description": "Ergonomic wireless mouse",
					"image": "https://shop.example/img/mouse.jpg",
					"offers": {
						"@type": "Offer",
						"price": "999.99",
						"priceCurrency": "USD"
					}
				}
			</script></head><body></body></html>`,
			expectedTitle:    "Wireless Mouse",
			expectedPrice:    floatPtr(999.99),
			expectedCurrency: "USD",
			expectedImages:   []string{"https://shop.example/img/mouse.jpg"},
		},
		{
			name: "offers as list uses first offer",
			html: `<html><head><script type="application/ld+json">
				{
					"@type": "Product",
					"name": "Keyboard",
					"offers": [
						{"price": 149.5, "priceCurrency": "EUR"},
						{"price": 50, "priceCurrency": "USD"}
					]
				}
			</script></head><body></body></html>`,
			expectedTitle:    "Keyboard",
			expectedPrice:    floatPtr(149.5),
			expectedCurrency: "EUR",
		},
		{
			name: "product inside @graph",
			html: `<html><head><script type="application/ld+json">
				{
					"@context": "https://schema.org",
					"@graph": [
						{"@type": "WebSite", "name": "Example Shop"},
						{"@type": "Product", "name": "Monitor", "offers": {"price": "300", "priceCurrency": "GBP"}}
					]
				}
			</script></head><body></body></html>`,
			expectedTitle:    "Monitor",
			expectedPrice:    floatPtr(300),
			expectedCurrency: "GBP",
		},
		{
			name: "image as object with url key",
			html: `<html><head><script type="application/ld+json">
				{
					"@type": "Product",
					"name": "Lamp",
					"image": {"@type": "ImageObject", "url": "https://shop.example/img/lamp.jpg"},
					"price": "75"
				}
			</script></head><body></body></html>`,
			expectedTitle:  "Lamp",
			expectedPrice:  floatPtr(75),
			expectedImages: []string{"https://shop.example/img/lamp.jpg"},
		},
		{
			name: "malformed json skipped, next script wins",
			html: `<html><head>
				<script type="application/ld+json">{not valid json</script>
				<script type="application/ld+json">{"@type": "Product", "name": "Chair", "price": 85}</script>
			</head><body></body></html>`,
			expectedTitle: "Chair",
			expectedPrice: floatPtr(85),
		},
		{
			name: "non-product entries ignored",
			html: `<html><head><script type="application/ld+json">
				{"@type": "BreadcrumbList", "name": "Home"}
			</script></head><body></body></html>`,
			expectedTitle: "",
			expectedPrice: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, tt.html)
			frag := Structured(doc, "https://shop.example/p/1")

			assert.Equal(t, tt.expectedTitle, frag.Title)
			if tt.expectedPrice == nil {
				assert.Nil(t, frag.Price)
			} else {
				require.NotNil(t, frag.Price)
				assert.InDelta(t, *tt.expectedPrice, *frag.Price, 0.001)
			}
			if tt.expectedCurrency != "" {
				assert.Equal(t, tt.expectedCurrency, frag.Currency)
			}
			if tt.expectedImages != nil {
				assert.Equal(t, tt.expectedImages, frag.Images)
			}
		})
	}
}

func TestStructuredMicrodata(t *testing.T) {
	html := `<html><body>
		<div itemscope itemtype="https://schema.org/Product">
			<span itemprop="name">Desk Organizer</span>
			<meta itemprop="price" content="64.00">
			<img itemprop="image" src="/img/organizer.jpg">
		</div>
	</body></html>`

	doc := parseHTML(t, html)
	frag := Structured(doc, "https://shop.example/p/2")

	assert.Equal(t, "Desk Organizer", frag.Title)
	require.NotNil(t, frag.Price)
	assert.InDelta(t, 64.0, *frag.Price, 0.001)
	require.Len(t, frag.Images, 1)
	assert.Equal(t, "https://shop.example/img/organizer.jpg", frag.Images[0])
}

func TestStructuredJSONLDBeforeMicrodata(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type": "Product", "name": "From JSON-LD", "price": 110}</script>
	</head><body>
		<div itemscope itemtype="https://schema.org/Product">
			<span itemprop="name">From Microdata</span>
			<meta itemprop="price" content="55">
		</div>
	</body></html>`

	doc := parseHTML(t, html)
	frag := Structured(doc, "https://shop.example/p/3")

	assert.Equal(t, "From JSON-LD", frag.Title)
	require.NotNil(t, frag.Price)
	assert.InDelta(t, 110.0, *frag.Price, 0.001)
}

func TestStructuredEmptyDocument(t *testing.T) {
	doc := parseHTML(t, "<html><body><p>nothing here</p></body></html>")
	frag := Structured(doc, "https://shop.example/p/4")
	assert.True(t, frag.IsEmpty())
}
