package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/commercelens/backend/internal/domain/table"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func orderRows(dates []string) [][]string {
	rows := make([][]string, len(dates))
	for i, d := range dates {
		rows[i] = []string{string(rune('a' + i)), d, "c1", "10.00"}
	}
	return rows
}

func canonicalHeaders() []string {
	return []string{"order_id", "order_date", "customer_id", "order_total"}
}

func TestValidateAcceptsMostlyParseableDates(t *testing.T) {
	// 9 of 10 dates parse: accepted, the odd row excluded and counted.
	dates := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05",
		"2024-01-06", "2024-01-07", "2024-01-08", "2024-01-09", "garbage",
	}
	tbl := table.MustNew(canonicalHeaders(), orderRows(dates))

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	assert.True(t, report.Valid)
	assert.Equal(t, 9, frame.RowCount())
	assert.Equal(t, 1, report.Exclusions[ExclusionUnparsedDate])

	ts, ok := frame.Time(0, "order_date")
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
}

func TestValidateFailsMostlyUnparseableDates(t *testing.T) {
	// 4 of 10 dates parse: below the floor, fatal for the field.
	dates := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"n/a", "n/a", "n/a", "n/a", "n/a", "n/a",
	}
	tbl := table.MustNew(canonicalHeaders(), orderRows(dates))

	v := NewValidator(WithClock(fixedClock))
	_, report := v.Validate(tbl)

	assert.False(t, report.Valid)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0].Error(), "datetime")

	var domainErr *shared.DomainError
	require.ErrorAs(t, report.Errors[0], &domainErr)
	assert.Equal(t, shared.CodeValidationFailed, domainErr.Code)
}

func TestValidateMidRangeDatesWarn(t *testing.T) {
	// 7 of 10 parse: between floor and ceiling, warning plus exclusion.
	dates := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"2024-01-05", "2024-01-06", "2024-01-07",
		"x", "y", "z",
	}
	tbl := table.MustNew(canonicalHeaders(), orderRows(dates))

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	assert.True(t, report.Valid)
	assert.Equal(t, 7, frame.RowCount())
	assert.Equal(t, 3, report.Exclusions[ExclusionUnparsedDate])

	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "low datetime parse rate")
}

func TestValidateExcludesEmptyOrderDate(t *testing.T) {
	// An empty required date is excluded like an unparseable one; no
	// kept row may carry a nil order_date.
	tbl := table.MustNew(
		canonicalHeaders(),
		[][]string{
			{"a", "2024-01-01", "c1", "10.00"},
			{"b", "", "c2", "20.00"},
			{"c", "2024-01-03", "c3", "30.00"},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	assert.Equal(t, 2, frame.RowCount())
	assert.Equal(t, 1, report.Exclusions[ExclusionUnparsedDate])
	for i := 0; i < frame.RowCount(); i++ {
		_, ok := frame.Time(i, "order_date")
		assert.True(t, ok)
	}
}

func TestValidateNumericCoercion(t *testing.T) {
	tbl := table.MustNew(
		canonicalHeaders(),
		[][]string{
			{"a", "2024-01-01", "c1", "150.50 SAR"},
			{"b", "2024-01-02", "c2", "١٢٣٫٥٠"},
			{"c", "2024-01-03", "c3", "oops"},
			{"d", "2024-01-04", "c4", "20.00"},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	// The invalid total becomes null and the row is excluded because
	// order_total is required.
	assert.True(t, report.Valid)
	assert.Equal(t, 3, frame.RowCount())
	assert.Equal(t, 1, report.Exclusions[ExclusionNullNumeric])

	d, ok := frame.Decimal(0, "order_total")
	require.True(t, ok)
	assert.Equal(t, "150.5", d.String())

	d, ok = frame.Decimal(1, "order_total")
	require.True(t, ok)
	assert.Equal(t, "123.5", d.String())
}

func TestValidateTextOnlyFieldsNeverCoerced(t *testing.T) {
	tbl := table.MustNew(
		[]string{"order_id", "order_date", "customer_id", "order_total", "customer_phone"},
		[][]string{
			{"a", "2024-01-01", "c1", "10.00", "0501234567"},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	require.True(t, report.Valid)
	assert.Equal(t, "0501234567", frame.String(0, "customer_phone"))
}

func TestValidateExcludesBadRows(t *testing.T) {
	tbl := table.MustNew(
		canonicalHeaders(),
		[][]string{
			{"a", "2024-01-01", "c1", "10.00"},
			{"a", "2024-01-01", "c1", "10.00"},
			{"", "2024-01-02", "c2", "20.00"},
			{"d", "2024-01-03", "", "30.00"},
			{"e", "2024-01-04", "c5", "-5.00"},
			{"f", "2024-01-05", "c6", "40.00"},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	frame, report := v.Validate(tbl)

	assert.Equal(t, 2, frame.RowCount())
	assert.Equal(t, 1, report.Exclusions[ExclusionDuplicateOrder])
	assert.Equal(t, 1, report.Exclusions[ExclusionEmptyOrderID])
	assert.Equal(t, 1, report.Exclusions[ExclusionEmptyCustomerID])
	assert.Equal(t, 1, report.Exclusions[ExclusionNegativeTotal])
	assert.Equal(t, 4, report.ExcludedRows())
	assert.Equal(t, 1, report.DuplicatesFound)

	// Empty identifiers are an error, not just an exclusion.
	assert.False(t, report.Valid)
}

func TestValidateBusinessRuleWarnings(t *testing.T) {
	tbl := table.MustNew(
		[]string{"order_id", "order_date", "customer_id", "order_total", "quantity"},
		[][]string{
			{"a", "2030-01-01", "c1", "10.00", "0"},
			{"b", "1999-06-15", "c2", "20.00", "2"},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	_, report := v.Validate(tbl)

	require.True(t, report.Valid)
	joined := ""
	for _, w := range report.Warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "future dates")
	assert.Contains(t, joined, "before 2000")
	assert.Contains(t, joined, "zero or negative quantity")
}

func TestValidateCurrencyAnalysis(t *testing.T) {
	tbl := table.MustNew(
		[]string{"order_id", "order_date", "customer_id", "order_total", "currency"},
		[][]string{
			{"a", "2024-01-01", "c1", "10.00", "SAR"},
			{"b", "2024-01-02", "c2", "20.00", "SAR"},
			{"c", "2024-01-03", "c3", "30.00", "USD"},
			{"d", "2024-01-04", "c4", "40.00", ""},
		},
	)

	v := NewValidator(WithClock(fixedClock))
	_, report := v.Validate(tbl)

	assert.True(t, report.Currency.Mixed)
	assert.Equal(t, "SAR", report.Currency.Default)
	assert.Equal(t, 1, report.Currency.MissingCount)
	assert.ElementsMatch(t, []string{"SAR", "USD"}, report.Currency.Currencies)
}

func TestValidateDateRange(t *testing.T) {
	tbl := table.MustNew(
		canonicalHeaders(),
		orderRows([]string{"2024-01-01", "2024-03-01", "2024-02-01"}),
	)

	v := NewValidator(WithClock(fixedClock))
	_, report := v.Validate(tbl)

	assert.Equal(t, 3, report.DateRange.TotalOrders)
	assert.Equal(t, 60, report.DateRange.SpanDays)
	assert.Equal(t, time.January, report.DateRange.Min.Month())
	assert.Equal(t, time.March, report.DateRange.Max.Month())
}

func TestValidateQualityScore(t *testing.T) {
	clean := table.MustNew(canonicalHeaders(), orderRows([]string{"2024-01-01", "2024-01-02"}))
	dirty := table.MustNew(canonicalHeaders(), [][]string{
		{"a", "2024-01-01", "c1", "10.00"},
		{"b", "bad date", "c2", "oops"},
		{"c", "2024-01-03", "c3", "30.00"},
		{"d", "2024-01-04", "c4", "40.00"},
	})

	v := NewValidator(WithClock(fixedClock))
	_, cleanReport := v.Validate(clean)
	_, dirtyReport := v.Validate(dirty)

	assert.InDelta(t, 1.0, cleanReport.QualityScore, 1e-9)
	assert.Less(t, dirtyReport.QualityScore, cleanReport.QualityScore)
	assert.GreaterOrEqual(t, dirtyReport.QualityScore, 0.0)
}
