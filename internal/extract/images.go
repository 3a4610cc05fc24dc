package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// galleryImageSelectors locate product gallery and slider images. Every
// match is kept, subject to the likely-product-image filter.
var galleryImageSelectors = []string{
	".product-gallery img", ".product-image img", ".product img",
	`[id*="product"] img`, `[class*="product"] img`,
	`[id*="gallery"] img`, `[class*="gallery"] img`,
	`[id*="slider"] img`, `[class*="slider"] img`,
	"figure img", ".item-image img",
}

// mainImageSelectors locate a single main product image when no gallery
// was found. The first usable match per selector is accepted unfiltered.
var mainImageSelectors = []string{
	`meta[property="og:image"]`, `meta[name="twitter:image"]`,
	`[id*="main-image"]`, `[class*="main-image"]`,
	`[id*="featured-image"]`, `[class*="featured-image"]`,
	".product-image-main img", ".main-product-image",
}

// imageDenylist rejects chrome and tracking assets by URL substring.
var imageDenylist = []string{
	"icon", "logo", "banner", "sprite", "tracking", "pixel", "button", "transparent",
}

// minImageDimension is the smallest explicit width/height attribute an
// image may declare and still count as a product image.
const minImageDimension = 100

// Images locates candidate product images via a three-tier fallback:
// gallery selectors, then main-image selectors, then every image on the
// page. Output is deduplicated in first-seen order; the caller truncates.
func Images(doc *goquery.Document, baseURL string) []string {
	var images []string

	for _, selector := range galleryImageSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			src := firstAttr(s, "src", "data-src")
			if src == "" {
				return
			}
			abs := resolveURL(baseURL, src)
			if abs != "" && likelyProductImage(abs, s) {
				images = append(images, abs)
			}
		})
	}

	if len(images) == 0 {
		for _, selector := range mainImageSelectors {
			doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				src := firstAttr(s, "content", "src", "data-src")
				if src == "" {
					return true
				}
				if abs := resolveURL(baseURL, src); abs != "" {
					images = append(images, abs)
					return false
				}
				return true
			})
		}
	}

	if len(images) == 0 {
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			src := firstAttr(s, "src", "data-src")
			if src == "" || !likelyProductImage(src, s) {
				return
			}
			if abs := resolveURL(baseURL, src); abs != "" {
				images = append(images, abs)
			}
		})
	}

	return dedupeOrdered(images)
}

// likelyProductImage rejects denylisted URLs and images whose explicit
// width/height attributes mark them as too small. Unparsable dimension
// attributes are ignored.
func likelyProductImage(imageURL string, s *goquery.Selection) bool {
	lower := strings.ToLower(imageURL)
	for _, pattern := range imageDenylist {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	widthAttr, hasWidth := s.Attr("width")
	heightAttr, hasHeight := s.Attr("height")
	if hasWidth && hasHeight {
		w, errW := strconv.Atoi(strings.TrimSpace(widthAttr))
		h, errH := strconv.Atoi(strings.TrimSpace(heightAttr))
		if errW == nil && errH == nil && (w < minImageDimension || h < minImageDimension) {
			return false
		}
	}

	return true
}

func resolveURL(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if val, ok := s.Attr(name); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func dedupeOrdered(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
