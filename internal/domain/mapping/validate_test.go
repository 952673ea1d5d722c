package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercelens/backend/internal/domain/table"
)

func TestValidateMappingsMissingRequired(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date"},
		[][]string{{"1", "2024-01-01"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	report := m.ValidateMappings(tbl, res, false)

	assert.False(t, report.Valid)
	assert.ElementsMatch(t, []string{"customer_id", "order_total"}, report.MissingRequired)
	assert.Len(t, report.Errors, 2)
}

func TestValidateMappingsLineItemDowngradesOrderID(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Customer ID", "Order Date", "Order Total", "Quantity"},
		[][]string{{"c1", "2024-01-01", "10", "2"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	require.NotContains(t, res.Mappings, "order_id")

	report := m.ValidateMappings(tbl, res, true)

	assert.True(t, report.Valid)
	assert.NotContains(t, report.MissingRequired, "order_id")
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "synthesized during aggregation")

	// Without the line-item classification the same gap is an error.
	res2 := m.MapColumns(context.Background(), tbl, "custom")
	report2 := m.ValidateMappings(tbl, res2, false)
	assert.False(t, report2.Valid)
	assert.Contains(t, report2.MissingRequired, "order_id")
}

func TestValidateMappingsCustomerFallback(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Order Total", "Phone"},
		[][]string{{"1", "2024-01-01", "10", "+966500000001"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	require.NotContains(t, res.Mappings, "customer_id")
	require.Equal(t, "Phone", res.Mappings["customer_phone"])

	report := m.ValidateMappings(tbl, res, false)

	assert.True(t, report.Valid)
	assert.Equal(t, "Phone", res.Mappings["customer_id"])
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "customer_phone as customer_id")
}

func TestValidateMappingsStaleColumn(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Order Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	res.Mappings["order_total"] = "Removed Column"

	report := m.ValidateMappings(tbl, res, false)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error(), "not found in data")
}

func TestValidateMappingsFieldStats(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Order Total"},
		[][]string{
			{"1", "2024-01-01", "c1", "10.00"},
			{"2", "2024-01-02", "c2", "not a number"},
			{"3", "", "c3", "30.00"},
			{"4", "2024-01-04", "", "40.00"},
		},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	report := m.ValidateMappings(tbl, res, false)

	require.True(t, report.Valid)

	totals := report.FieldStats["order_total"]
	assert.Equal(t, 4, totals.TotalRows)
	assert.Equal(t, 0, totals.NullCount)
	// One unparseable value dents the quality score.
	assert.Less(t, totals.QualityScore, 1.0)

	dates := report.FieldStats["order_date"]
	assert.Equal(t, 1, dates.NullCount)
	assert.InDelta(t, 25.0, dates.NullPercentage, 1e-9)

	ids := report.FieldStats["order_id"]
	assert.InDelta(t, 1.0, ids.QualityScore, 1e-9)
	assert.Len(t, ids.SampleValues, 4)

	assert.Greater(t, report.QualityScore, 0.0)
	assert.LessOrEqual(t, report.QualityScore, 1.0)
}
