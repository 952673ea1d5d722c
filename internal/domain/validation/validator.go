// Package validation type-coerces and sanity-checks a canonical table,
// producing the typed frame handed to analytics along with a
// quality-scored report.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/commercelens/backend/internal/domain/table"
)

const (
	// DefaultDateParseFloor fails a datetime field whose best format
	// parses fewer than half its values.
	DefaultDateParseFloor = 0.5

	// DefaultDateParseCeiling accepts a datetime field cleanly above
	// this rate; between floor and ceiling the field passes with a
	// warning.
	DefaultDateParseCeiling = 0.8
)

// numericFields coerce to decimal.
var numericFields = map[string]bool{
	"order_total":   true,
	"item_total":    true,
	"quantity":      true,
	"discounts":     true,
	"shipping":      true,
	"taxes":         true,
	"refund_amount": true,
}

// requiredNumericFields exclude the row when null after coercion.
var requiredNumericFields = map[string]bool{"order_total": true}

// integerFields coerce to int64.
var integerFields = map[string]bool{"item_count": true}

// datetimeFields coerce through the ordered format list.
var datetimeFields = map[string]bool{"order_date": true, "delivery_date": true}

// textOnlyMarkers exempt a field from numeric coercion by name, no
// matter how numeric its values look. Phone numbers and postal codes
// are the classic trap.
var textOnlyMarkers = []string{
	"country", "city", "state", "province", "region",
	"name", "email", "phone",
	"sku", "category",
	"status", "method",
}

// Validator coerces and checks canonical tables.
type Validator struct {
	dateFloor   float64
	dateCeiling float64
	now         func() time.Time
}

// Option customizes a Validator.
type Option func(*Validator)

// WithDateThresholds overrides the date-parse floor and ceiling.
func WithDateThresholds(floor, ceiling float64) Option {
	return func(v *Validator) {
		v.dateFloor = floor
		v.dateCeiling = ceiling
	}
}

// WithClock injects the time source used for future-date checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// NewValidator builds a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		dateFloor:   DefaultDateParseFloor,
		dateCeiling: DefaultDateParseCeiling,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// coercePlan is the per-column outcome of type analysis.
type coercePlan struct {
	kind   string // "decimal", "integer", "datetime", "string"
	layout string // chosen date layout for datetime columns
	fatal  bool   // column failed coercion; values stay null
}

// Validate coerces the canonical table into a typed frame and reports
// on everything it found. Rows are excluded, with per-category counts,
// for unparseable required dates, null required numerics, empty
// identifiers, duplicate order identifiers, and negative totals.
// Invalid values in optional columns become nulls, never errors.
func (v *Validator) Validate(tbl *table.Table) (*table.Frame, *Report) {
	report := &Report{
		TotalRows:  tbl.RowCount(),
		Exclusions: make(map[string]int),
	}

	plans := v.planCoercions(tbl, report)
	frame := v.buildFrame(tbl, plans, report)

	v.checkSparseness(tbl, report)
	v.analyzeCurrency(tbl, report)
	v.analyzeDateRange(frame, report)

	report.KeptRows = frame.RowCount()
	report.QualityScore = qualityScore(report)
	report.Valid = len(report.Errors) == 0
	return frame, report
}

// planCoercions decides, per column, how values will be typed, and
// raises errors or warnings for columns that convert poorly.
func (v *Validator) planCoercions(tbl *table.Table, report *Report) map[string]coercePlan {
	plans := make(map[string]coercePlan, len(tbl.Headers()))
	for _, col := range tbl.Headers() {
		plans[col] = v.planColumn(tbl, col, report)
	}
	return plans
}

func (v *Validator) planColumn(tbl *table.Table, col string, report *Report) coercePlan {
	if isTextOnly(col) {
		return coercePlan{kind: "string"}
	}

	switch {
	case datetimeFields[col]:
		return v.planDatetime(tbl, col, report)
	case integerFields[col]:
		return coercePlan{kind: "integer"}
	case numericFields[col]:
		return v.planNumeric(tbl, col, report)
	default:
		return coercePlan{kind: "string"}
	}
}

func (v *Validator) planDatetime(tbl *table.Table, col string, report *Report) coercePlan {
	values, _ := tbl.Column(col)
	nonEmpty := 0
	for _, raw := range values {
		if raw != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("field %q has no non-null values", col))
		return coercePlan{kind: "datetime"}
	}

	bestLayout := ""
	bestRate := 0.0
	for _, layout := range table.DateFormats {
		parsed := 0
		for _, raw := range values {
			if raw == "" {
				continue
			}
			if _, ok := table.ParseDateWith(raw, layout); ok {
				parsed++
			}
		}
		rate := float64(parsed) / float64(nonEmpty)
		if rate > bestRate {
			bestRate = rate
			bestLayout = layout
		}
		if rate > 0.95 {
			break
		}
	}

	plan := coercePlan{kind: "datetime", layout: bestLayout}
	report.Coercions = append(report.Coercions, FieldCoercion{
		Field: col, TargetType: "datetime", SuccessRate: bestRate, Format: bestLayout,
	})
	switch {
	case bestRate < v.dateFloor:
		report.Errors = append(report.Errors, shared.NewValidationError(
			"field %q cannot be parsed as datetime (%.0f%% success rate)", col, bestRate*100))
		plan.fatal = true
	case bestRate < v.dateCeiling:
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("field %q has low datetime parse rate (%.0f%%); unparsed rows excluded", col, bestRate*100))
		report.CleaningApplied = append(report.CleaningApplied,
			fmt.Sprintf("converted %q to datetime (with some loss)", col))
	default:
		report.CleaningApplied = append(report.CleaningApplied,
			fmt.Sprintf("converted %q to datetime", col))
	}
	return plan
}

func (v *Validator) planNumeric(tbl *table.Table, col string, report *Report) coercePlan {
	values, _ := tbl.Column(col)
	nonEmpty, parsed := 0, 0
	for _, raw := range values {
		if raw == "" {
			continue
		}
		nonEmpty++
		if _, ok := table.ParseDecimal(raw); ok {
			parsed++
		}
	}
	if nonEmpty == 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("field %q has no non-null values", col))
		return coercePlan{kind: "decimal"}
	}

	rate := float64(parsed) / float64(nonEmpty)
	plan := coercePlan{kind: "decimal"}
	report.Coercions = append(report.Coercions, FieldCoercion{
		Field: col, TargetType: "numeric", SuccessRate: rate,
	})
	switch {
	case rate < 0.5:
		report.Errors = append(report.Errors, shared.NewValidationError(
			"field %q cannot be converted to numeric (%.0f%% success rate)", col, rate*100))
		plan.fatal = true
	case rate < 0.8:
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("field %q has low numeric conversion rate (%.0f%%)", col, rate*100))
		report.CleaningApplied = append(report.CleaningApplied,
			fmt.Sprintf("converted %q to numeric (with some loss)", col))
	default:
		report.CleaningApplied = append(report.CleaningApplied,
			fmt.Sprintf("converted %q to numeric", col))
	}
	return plan
}

// buildFrame applies the plans row by row, excluding rows that violate
// hard rules and collecting business-rule warnings for the rest.
func (v *Validator) buildFrame(tbl *table.Table, plans map[string]coercePlan, report *Report) *table.Frame {
	frame := table.NewFrame(tbl.Headers())
	frame.Source = tbl.Source

	now := v.now()
	seenOrders := make(map[string]bool)
	var zeroQuantity, futureDates, oldDates, negativeTotals int

	for i := 0; i < tbl.RowCount(); i++ {
		row := make(map[string]any, len(tbl.Headers()))
		exclude := ""

		for _, col := range tbl.Headers() {
			raw, _ := tbl.Cell(i, col)
			plan := plans[col]
			value := coerceCell(raw, plan)
			row[col] = value

			switch {
			case col == "order_date" && plan.kind == "datetime" && !plan.fatal:
				// Empty cells exclude the row too; the order date is
				// required in every kept row.
				if value == nil && exclude == "" {
					exclude = ExclusionUnparsedDate
				}
			case requiredNumericFields[col] && plan.kind == "decimal" && !plan.fatal:
				if value == nil && exclude == "" {
					exclude = ExclusionNullNumeric
				}
			}
		}

		if id, ok := row["order_id"].(string); ok && tbl.HasColumn("order_id") {
			trimmed := strings.TrimSpace(id)
			if trimmed == "" {
				if exclude == "" {
					exclude = ExclusionEmptyOrderID
				}
			} else if seenOrders[trimmed] {
				report.DuplicatesFound++
				if exclude == "" {
					exclude = ExclusionDuplicateOrder
				}
			}
		}
		if id, ok := row["customer_id"].(string); ok && tbl.HasColumn("customer_id") {
			if strings.TrimSpace(id) == "" && exclude == "" {
				exclude = ExclusionEmptyCustomerID
			}
		}
		if total, ok := row["order_total"].(decimal.Decimal); ok {
			if total.IsNegative() {
				negativeTotals++
				if exclude == "" {
					exclude = ExclusionNegativeTotal
				}
			}
		}

		if exclude != "" {
			report.Exclusions[exclude]++
			continue
		}

		if id, ok := row["order_id"].(string); ok {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				seenOrders[trimmed] = true
			}
		}
		if qty, ok := row["quantity"].(decimal.Decimal); ok && !qty.IsPositive() {
			zeroQuantity++
		}
		if ts, ok := row["order_date"].(time.Time); ok {
			if ts.After(now) {
				futureDates++
			}
			if ts.Year() < 2000 {
				oldDates++
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	if n := report.Exclusions[ExclusionDuplicateOrder]; n > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d duplicate orders; kept first occurrence", n))
	}
	if n := report.Exclusions[ExclusionEmptyOrderID] + report.Exclusions[ExclusionEmptyCustomerID]; n > 0 {
		report.Errors = append(report.Errors, shared.NewValidationError(
			"found %d records with empty identifiers", n))
	}
	if negativeTotals > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d orders with negative totals; excluded", negativeTotals))
	}
	if zeroQuantity > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d rows with zero or negative quantity", zeroQuantity))
	}
	if futureDates > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d orders with future dates", futureDates))
	}
	if oldDates > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d orders dated before 2000", oldDates))
	}
	return frame
}

// coerceCell types one raw value under a plan. Invalid values become
// nil, never an error.
func coerceCell(raw string, plan coercePlan) any {
	if raw == "" {
		if plan.kind == "string" {
			return ""
		}
		return nil
	}
	if plan.fatal {
		if plan.kind == "string" {
			return raw
		}
		return nil
	}
	switch plan.kind {
	case "decimal":
		if d, ok := table.ParseDecimal(raw); ok {
			return d
		}
		return nil
	case "integer":
		if n, ok := table.ParseInt(raw); ok {
			return n
		}
		return nil
	case "datetime":
		if plan.layout != "" {
			if ts, ok := table.ParseDateWith(raw, plan.layout); ok {
				return ts
			}
		}
		if ts, ok := table.ParseDate(raw); ok {
			return ts
		}
		return nil
	default:
		return raw
	}
}

func (v *Validator) checkSparseness(tbl *table.Table, report *Report) {
	if tbl.RowCount() == 0 {
		return
	}
	for _, col := range tbl.Headers() {
		values, _ := tbl.Column(col)
		empty := 0
		for _, raw := range values {
			if raw == "" {
				empty++
			}
		}
		pct := float64(empty) / float64(len(values)) * 100
		if pct > 95 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("field %q is sparse (%.1f%% missing)", col, pct))
		}
	}
}

func (v *Validator) analyzeCurrency(tbl *table.Table, report *Report) {
	if !tbl.HasColumn("currency") {
		return
	}
	values, _ := tbl.Column("currency")
	counts := make(map[string]int)
	var order []string
	for _, raw := range values {
		if raw == "" {
			report.Currency.MissingCount++
			continue
		}
		if counts[raw] == 0 {
			order = append(order, raw)
		}
		counts[raw]++
	}
	report.Currency.Currencies = order
	if len(order) > 1 {
		report.Currency.Mixed = true
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("multiple currencies detected: %s", strings.Join(order, ", ")))
	}
	best := 0
	for _, cur := range order {
		if counts[cur] > best {
			best = counts[cur]
			report.Currency.Default = cur
		}
	}
}

func (v *Validator) analyzeDateRange(frame *table.Frame, report *Report) {
	if !frame.HasColumn("order_date") {
		return
	}
	var min, max time.Time
	count := 0
	for i := 0; i < frame.RowCount(); i++ {
		ts, ok := frame.Time(i, "order_date")
		if !ok {
			continue
		}
		if count == 0 || ts.Before(min) {
			min = ts
		}
		if count == 0 || ts.After(max) {
			max = ts
		}
		count++
	}
	if count == 0 {
		return
	}
	report.DateRange = DateRange{
		Min:         min,
		Max:         max,
		SpanDays:    int(max.Sub(min).Hours() / 24),
		TotalOrders: count,
	}
	if report.DateRange.SpanDays > 365*5 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("data spans %d days", report.DateRange.SpanDays))
	}
}

// qualityScore folds row retention and coercion success into one
// number in [0, 1].
func qualityScore(report *Report) float64 {
	if report.TotalRows == 0 {
		return 0
	}
	score := float64(report.KeptRows) / float64(report.TotalRows)

	if len(report.Coercions) > 0 {
		sum := 0.0
		for _, c := range report.Coercions {
			sum += c.SuccessRate
		}
		score *= sum / float64(len(report.Coercions))
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func isTextOnly(field string) bool {
	lower := strings.ToLower(field)
	for _, marker := range textOnlyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
