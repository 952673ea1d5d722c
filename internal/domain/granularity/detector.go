// Package granularity classifies a mapped table as order-level or
// line-item before any aggregation or analytics run. Line-item rows
// double-count customers and orders if treated as orders directly.
package granularity

import (
	"fmt"
	"strings"

	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/table"
)

// Level is the detected row granularity.
type Level string

const (
	LevelOrder    Level = "order_level"
	LevelLineItem Level = "line_item"
)

// Confidence qualifies a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// DefaultRatioThreshold is how far the average rows per (customer,
// date) pair must exceed 1 before repeated pairs count as a line-item
// signal.
const DefaultRatioThreshold = 1.2

// Classification is the detector's verdict, including the matched
// indicators so a reviewer can audit why a table was classified the
// way it was.
type Classification struct {
	Level                  Level      `json:"level"`
	Confidence             Confidence `json:"confidence"`
	Indicators             []string   `json:"indicators,omitempty"`
	RequiresAggregation    bool       `json:"requires_aggregation"`
	AvgRowsPerCustomerDate float64    `json:"avg_rows_per_customer_date,omitempty"`
}

// lineItemFields are canonical fields that only exist on line-item
// rows.
var lineItemFields = []string{"line_item_id", "product_id", "sku", "quantity", "item_total"}

// itemColumnHints flag unmapped raw columns that look item-level.
var itemColumnHints = []string{"item", "product", "sku", "size", "color", "variant", "line"}

// Detector classifies row granularity from a table and its column
// mappings.
type Detector struct {
	ratioThreshold float64
}

// Option customizes a Detector.
type Option func(*Detector)

// WithRatioThreshold overrides the rows-per-customer-date threshold.
func WithRatioThreshold(threshold float64) Option {
	return func(d *Detector) { d.ratioThreshold = threshold }
}

// NewDetector builds a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{ratioThreshold: DefaultRatioThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies the table. Signals, each counted once:
//  1. a line-item field is mapped while no order identifier is;
//  2. unmapped item/product-level raw columns exist alongside a
//     missing order identifier;
//  3. the average number of rows sharing a (customer, date) pair
//     exceeds the ratio threshold, and the order identifier is absent
//     or non-unique;
//  4. an order identifier is mapped but does not uniquely key rows.
//
// Two or more signals classify line-item with high confidence, exactly
// one with medium confidence, none means order-level. Detection is a
// pure read; running it twice on the same input yields the same
// classification.
func (d *Detector) Detect(tbl *table.Table, mappings map[string]string, unmappedColumns []string) Classification {
	var indicators []string
	_, hasOrderID := mappings["order_id"]

	if !hasOrderID {
		for _, field := range lineItemFields {
			if _, ok := mappings[field]; ok {
				indicators = append(indicators,
					fmt.Sprintf("%s mapped but no order identifier", field))
				break
			}
		}

		for _, col := range unmappedColumns {
			if looksItemLevel(col) {
				indicators = append(indicators,
					fmt.Sprintf("unmapped item-level column %q with no order identifier", col))
				break
			}
		}
	}

	// An order identifier that uniquely keys every row settles the
	// question; repeat same-day buyers are not a line-item signal then.
	uniqueOrderID := hasOrderID && orderIDUnique(tbl, mappings["order_id"])

	avg := avgRowsPerCustomerDate(tbl, mappings)
	if avg > d.ratioThreshold && !uniqueOrderID {
		indicators = append(indicators,
			fmt.Sprintf("avg %.1f rows per customer-date", avg))
	}

	if hasOrderID && !uniqueOrderID {
		indicators = append(indicators, "order identifier does not uniquely key rows")
	}

	out := Classification{
		Indicators:             indicators,
		AvgRowsPerCustomerDate: avg,
	}
	switch {
	case len(indicators) >= 2:
		out.Level = LevelLineItem
		out.Confidence = ConfidenceHigh
		out.RequiresAggregation = true
	case len(indicators) == 1:
		out.Level = LevelLineItem
		out.Confidence = ConfidenceMedium
		out.RequiresAggregation = true
	default:
		out.Level = LevelOrder
		out.Confidence = ConfidenceHigh
	}
	return out
}

func looksItemLevel(column string) bool {
	norm := schema.NormalizeHeader(column)
	for _, hint := range itemColumnHints {
		if strings.Contains(norm, hint) {
			return true
		}
	}
	return false
}

// avgRowsPerCustomerDate groups rows by (customer, calendar day) and
// returns the mean group size over the full table. Zero when the
// needed mappings or parseable dates are absent.
func avgRowsPerCustomerDate(tbl *table.Table, mappings map[string]string) float64 {
	customerCol, okCustomer := mappings["customer_id"]
	dateCol, okDate := mappings["order_date"]
	if !okCustomer || !okDate || !tbl.HasColumn(customerCol) || !tbl.HasColumn(dateCol) {
		return 0
	}

	groups := make(map[string]int)
	counted := 0
	for i := 0; i < tbl.RowCount(); i++ {
		customer, _ := tbl.Cell(i, customerCol)
		rawDate, _ := tbl.Cell(i, dateCol)
		if customer == "" || rawDate == "" {
			continue
		}
		day := rawDate
		if ts, ok := table.ParseDate(rawDate); ok {
			day = ts.Format("2006-01-02")
		}
		groups[customer+"\x00"+day]++
		counted++
	}
	if len(groups) == 0 {
		return 0
	}
	return float64(counted) / float64(len(groups))
}

func orderIDUnique(tbl *table.Table, column string) bool {
	values, ok := tbl.Column(column)
	if !ok {
		return true
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
