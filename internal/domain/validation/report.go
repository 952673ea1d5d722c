package validation

import (
	"time"
)

// Exclusion categories for rows dropped from the cleaned frame. Every
// dropped row is counted under exactly one category, never silently.
const (
	ExclusionUnparsedDate    = "unparsed_date"
	ExclusionNullNumeric     = "null_required_numeric"
	ExclusionEmptyOrderID    = "empty_order_id"
	ExclusionEmptyCustomerID = "empty_customer_id"
	ExclusionDuplicateOrder  = "duplicate_order_id"
	ExclusionNegativeTotal   = "negative_total"
)

// CurrencyInfo summarizes the currency column, when present.
type CurrencyInfo struct {
	Currencies   []string `json:"currencies,omitempty"`
	Mixed        bool     `json:"mixed"`
	Default      string   `json:"default,omitempty"`
	MissingCount int      `json:"missing_count"`
}

// DateRange summarizes the order dates that survived coercion.
type DateRange struct {
	Min         time.Time `json:"min"`
	Max         time.Time `json:"max"`
	SpanDays    int       `json:"span_days"`
	TotalOrders int       `json:"total_orders"`
}

// FieldCoercion records how one typed column converted.
type FieldCoercion struct {
	Field       string  `json:"field"`
	TargetType  string  `json:"target_type"`
	SuccessRate float64 `json:"success_rate"`
	Format      string  `json:"format,omitempty"`
}

// Report is the validator's full verdict over a canonical table.
type Report struct {
	Valid           bool            `json:"valid"`
	TotalRows       int             `json:"total_rows"`
	KeptRows        int             `json:"kept_rows"`
	Errors          []error         `json:"-"`
	Warnings        []string        `json:"warnings,omitempty"`
	CleaningApplied []string        `json:"cleaning_applied,omitempty"`
	Exclusions      map[string]int  `json:"exclusions,omitempty"`
	Coercions       []FieldCoercion `json:"coercions,omitempty"`
	DuplicatesFound int             `json:"duplicates_found"`
	QualityScore    float64         `json:"quality_score"`
	Currency        CurrencyInfo    `json:"currency"`
	DateRange       DateRange       `json:"date_range"`
}

// ErrorMessages renders the error list for transport.
func (r *Report) ErrorMessages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

// ExcludedRows is the total number of dropped rows across categories.
func (r *Report) ExcludedRows() int {
	total := 0
	for _, n := range r.Exclusions {
		total += n
	}
	return total
}
