package models

// ProductFragment is the partial result produced by a single extraction
// method. Fields the method could not find stay at their zero value; a
// fragment never defaults anything.
type ProductFragment struct {
	Title       string
	Price       *float64
	Currency    string
	Images      []string
	Description string
}

// IsEmpty reports whether the fragment carries no extracted data at all.
func (f *ProductFragment) IsEmpty() bool {
	return f.Title == "" && f.Price == nil && f.Currency == "" &&
		len(f.Images) == 0 && f.Description == ""
}

// ProductRecord is the assembled, URL-bound scrape result.
type ProductRecord struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
}

// FailedRecord builds a record for a scrape that could not complete.
func FailedRecord(url, message string) *ProductRecord {
	return &ProductRecord{
		URL:     url,
		Images:  []string{},
		Success: false,
		Error:   message,
	}
}

// IsComplete reports whether the record is eligible for accumulation:
// a successful scrape with a priced, titled, imaged product at or above
// the minimum plausible price.
func (r *ProductRecord) IsComplete(minPrice float64) bool {
	if r == nil || !r.Success {
		return false
	}
	if r.Price == nil || *r.Price < minPrice {
		return false
	}
	return r.Title != "" && r.URL != "" && len(r.Images) > 0
}

// Clone returns a deep copy of the record.
func (r *ProductRecord) Clone() *ProductRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Images = make([]string, len(r.Images))
	copy(out.Images, r.Images)
	return &out
}
