package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atoyeh09/LinkBazar/internal/models"
)

// currencySymbols are stripped from raw amounts before numeric parsing.
var currencySymbols = []string{"$", "₹", "£", "€", "Rs.", "Rs", "PKR", "USD", "₨"}

// currencyTable maps symbols and codes to ISO currency codes. Order
// matters: the first entry found anywhere in the text wins.
var currencyTable = []struct {
	Symbol string
	Code   string
}{
	{"$", "USD"},
	{"USD", "USD"},
	{"usd", "USD"},
	{"₹", "INR"},
	{"Rs", "PKR"},
	{"Rs.", "PKR"},
	{"PKR", "PKR"},
	{"pkr", "PKR"},
	{"₨", "PKR"},
	{"£", "GBP"},
	{"€", "EUR"},
}

// priceContextKeywords are scanned in order; the first keyword followed by
// a number within 15 characters decides the mined price.
var priceContextKeywords = []string{
	"price", "cost", "total", "pay", "buy", "rs", "$", "₹", "£", "€", "₨", "pkr", "usd",
}

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

var keywordPatterns = compileKeywordPatterns()

func compileKeywordPatterns() []keywordPattern {
	out := make([]keywordPattern, 0, len(priceContextKeywords))
	for _, kw := range priceContextKeywords {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `[^0-9]{0,15}([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
		out = append(out, keywordPattern{keyword: kw, re: re})
	}
	return out
}

var (
	// genericPriceRe matches currency-adjacent amounts in either
	// prefix ($120) or suffix (120 USD) form.
	genericPriceRe = regexp.MustCompile(`(?i)(?:[$€£₹₨]|Rs\.?|PKR|USD)\s*[0-9][0-9,]*(?:\.[0-9]{1,2})?|[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,2})?\s*(?:[$€£₹₨]|Rs\.?|PKR|USD)`)

	// amountRe pulls the numeric part out of a matched price string.
	amountRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]{1,2})?`)

	// prefixedAmountRe finds currency-prefixed amounts for the low-price
	// rescan.
	prefixedAmountRe = regexp.MustCompile(`(?:[$€£₹₨]|Rs\.?|PKR|USD)\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
)

// PriceFromText mines a price from visible page text. Phase one looks for
// a number close after one of the context keywords; the first keyword with
// any match wins, using its first match. Phase two falls back to a generic
// currency-adjacent pattern anywhere in the text.
func PriceFromText(text string) models.ProductFragment {
	for _, kp := range keywordPatterns {
		m := kp.re.FindStringSubmatch(text)
		if len(m) > 1 {
			return models.ProductFragment{
				Price:    ParseAmount(m[1]),
				Currency: DetectCurrency(text),
			}
		}
	}

	if m := genericPriceRe.FindString(text); m != "" {
		return models.ProductFragment{
			Price:    extractAmount(m),
			Currency: DetectCurrency(m),
		}
	}

	return models.ProductFragment{}
}

// DetectCurrency scans the currency table in declaration order and returns
// the ISO code of the first symbol present in the text, defaulting to USD.
func DetectCurrency(text string) string {
	for _, entry := range currencyTable {
		if strings.Contains(text, entry.Symbol) {
			return entry.Code
		}
	}
	return "USD"
}

// ParseAmount coerces a raw price string to a number, stripping known
// currency symbols and thousands separators. It returns nil instead of
// failing on unparsable input.
func ParseAmount(raw string) *float64 {
	s := raw
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// RescanAboveThreshold scans text for all currency-prefixed amounts and
// returns the first one at or above min, or nil if none qualifies.
func RescanAboveThreshold(text string, min float64) *float64 {
	for _, m := range prefixedAmountRe.FindAllStringSubmatch(text, -1) {
		if v := ParseAmount(m[1]); v != nil && *v >= min {
			return v
		}
	}
	return nil
}

func extractAmount(s string) *float64 {
	if m := amountRe.FindString(s); m != "" {
		return ParseAmount(m)
	}
	return nil
}
