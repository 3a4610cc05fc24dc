package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/atoyeh09/LinkBazar/internal/models"
)

// Structured extracts a product fragment from embedded structured data:
// JSON-LD entries first, then itemscope/itemprop microdata, in document
// order. The first entry typed as a product or carrying a price/offers
// field wins. Malformed entries are skipped; extraction never fails, it
// degrades to an empty fragment.
func Structured(doc *goquery.Document, baseURL string) models.ProductFragment {
	entries := jsonLDEntries(doc)
	entries = append(entries, microdataEntries(doc)...)

	for _, entry := range entries {
		if !isProductEntry(entry) {
			continue
		}
		return fragmentFromEntry(entry, baseURL)
	}
	return models.ProductFragment{}
}

func jsonLDEntries(doc *goquery.Document) []map[string]interface{} {
	var entries []map[string]interface{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s.Text()), &decoded); err != nil {
			return
		}
		entries = append(entries, flattenEntry(decoded)...)
	})

	return entries
}

// flattenEntry normalizes a decoded JSON-LD value into a flat entry list,
// expanding top-level arrays and @graph containers.
func flattenEntry(v interface{}) []map[string]interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		entries := []map[string]interface{}{val}
		if graph, ok := val["@graph"].([]interface{}); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]interface{}); ok {
					entries = append(entries, m)
				}
			}
		}
		return entries
	case []interface{}:
		var entries []map[string]interface{}
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				entries = append(entries, m)
			}
		}
		return entries
	}
	return nil
}

func microdataEntries(doc *goquery.Document) []map[string]interface{} {
	var entries []map[string]interface{}

	doc.Find("[itemscope]").Each(func(_ int, scope *goquery.Selection) {
		entry := map[string]interface{}{}
		if itemType, ok := scope.Attr("itemtype"); ok {
			if strings.Contains(strings.ToLower(itemType), "product") {
				entry["@type"] = "Product"
			}
		}

		scope.Find("[itemprop]").Each(func(_ int, prop *goquery.Selection) {
			name, _ := prop.Attr("itemprop")
			if name == "" {
				return
			}
			if _, exists := entry[name]; exists {
				return
			}
			value := firstAttr(prop, "content", "src", "href")
			if value == "" {
				value = strings.TrimSpace(prop.Text())
			}
			if value != "" {
				entry[name] = value
			}
		})

		if len(entry) > 0 {
			entries = append(entries, entry)
		}
	})

	return entries
}

func isProductEntry(entry map[string]interface{}) bool {
	if len(entry) == 0 {
		return false
	}
	if strings.EqualFold(entryType(entry), "product") {
		return true
	}
	_, hasPrice := entry["price"]
	_, hasOffers := entry["offers"]
	return hasPrice || hasOffers
}

func entryType(entry map[string]interface{}) string {
	switch t := entry["@type"].(type) {
	case string:
		return t
	case []interface{}:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func fragmentFromEntry(entry map[string]interface{}, baseURL string) models.ProductFragment {
	frag := models.ProductFragment{
		Title:       stringValue(entry["name"]),
		Description: stringValue(entry["description"]),
	}

	if img := imageValue(entry["image"]); img != "" {
		frag.Images = []string{resolveURL(baseURL, img)}
	}

	if offers, ok := entry["offers"]; ok {
		frag.Price, frag.Currency = priceFromOffers(offers)
	} else if raw, ok := entry["price"]; ok {
		frag.Price = amountFromValue(raw)
	}

	return frag
}

// imageValue unwraps the schema.org image field: a bare URL, a list (first
// element), or an object with a url key.
func imageValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}:
		if len(val) > 0 {
			return imageValue(val[0])
		}
	case map[string]interface{}:
		return stringValue(val["url"])
	}
	return ""
}

// priceFromOffers reads price and priceCurrency from an offers field that
// may be a single offer object or a list of offers (first one used).
func priceFromOffers(v interface{}) (*float64, string) {
	switch offers := v.(type) {
	case map[string]interface{}:
		return amountFromValue(offers["price"]), stringValue(offers["priceCurrency"])
	case []interface{}:
		if len(offers) > 0 {
			if first, ok := offers[0].(map[string]interface{}); ok {
				return amountFromValue(first["price"]), stringValue(first["priceCurrency"])
			}
		}
	}
	return nil, ""
}

// amountFromValue coerces a JSON value (number or string) to a price.
func amountFromValue(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		out := val
		return &out
	case string:
		return ParseAmount(val)
	}
	return nil
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
