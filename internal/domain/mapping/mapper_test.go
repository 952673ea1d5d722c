package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/table"
)

func newTestRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r, err := schema.NewRegistry()
	require.NoError(t, err)
	return r
}

type fakeStore struct {
	records map[string]Record
	uses    map[string]int
	saved   []Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]Record),
		uses:    make(map[string]int),
	}
}

func (s *fakeStore) key(platformID, header string) string { return platformID + "|" + header }

func (s *fakeStore) Lookup(_ context.Context, platformID, sourceHeader string) (Record, bool, error) {
	rec, ok := s.records[s.key(platformID, sourceHeader)]
	return rec, ok, nil
}

func (s *fakeStore) Save(_ context.Context, rec Record) error {
	key := s.key(rec.PlatformID, rec.SourceHeader)
	if existing, ok := s.records[key]; !ok || rec.Confidence > existing.Confidence {
		s.records[key] = rec
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *fakeStore) RecordUse(_ context.Context, platformID, sourceHeader string) error {
	s.uses[s.key(platformID, sourceHeader)]++
	return nil
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{name: "identical", a: "order_id", b: "order_id", min: 1.0, max: 1.0},
		{name: "token order ignored", a: "date_order", b: "order_date", min: 1.0, max: 1.0},
		{name: "close variant", a: "order_no", b: "order_number", min: 0.75, max: 0.99},
		{name: "containment bonus", a: "total", b: "grand_total_amount", min: 0.3, max: 0.6},
		{name: "unrelated", a: "order_id", b: "shipping_city", min: 0.0, max: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestMapColumnsArabicExport(t *testing.T) {
	tbl := table.MustNew(
		[]string{"رقم الطلب", "تاريخ الطلب", "اسم العميل", "إجمالي الطلب"},
		[][]string{{"1001", "2024-03-15", "أحمد", "150.50"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "salla")

	require.Equal(t, "salla", res.PlatformID)
	want := map[string]string{
		"order_id":    "رقم الطلب",
		"order_date":  "تاريخ الطلب",
		"customer_id": "اسم العميل",
		"order_total": "إجمالي الطلب",
	}
	for field, col := range want {
		assert.Equal(t, col, res.Mappings[field], field)
		assert.InDelta(t, 1.0, res.Confidence[field], 1e-9, field)
		assert.Equal(t, MethodExactSynonym, res.Methods[field], field)
	}
	assert.Empty(t, res.UnmappedColumns)
}

func TestMapColumnsSimilarityLayer(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order Numbr", "Order Date", "Customer ID", "Order Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")

	require.Equal(t, "Order Numbr", res.Mappings["order_id"])
	assert.Equal(t, MethodSimilarity, res.Methods["order_id"])
	assert.GreaterOrEqual(t, res.Confidence["order_id"], DefaultSimilarityThreshold)
	assert.Less(t, res.Confidence["order_id"], 1.0)
}

func TestMapColumnsNoColumnClaimedTwice(t *testing.T) {
	// "Total" is a synonym for order_total and similar to item_total;
	// only one field may claim it.
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")

	seen := make(map[string]string)
	for field, col := range res.Mappings {
		if prev, dup := seen[col]; dup {
			t.Fatalf("column %q claimed by both %q and %q", col, prev, field)
		}
		seen[col] = field
	}
	assert.Equal(t, "Total", res.Mappings["order_total"])
}

func TestMapColumnsRequiredFieldsClaimFirst(t *testing.T) {
	// A single date-like column must go to the required order_date,
	// not to an optional field that also resembles it.
	tbl := table.MustNew(
		[]string{"Order ID", "Date", "Customer ID", "Order Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")
	assert.Equal(t, "Date", res.Mappings["order_date"])
}

func TestMapColumnsRuntimeSynonym(t *testing.T) {
	registry := newTestRegistry(t)
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Sales"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(registry)

	before := m.MapColumns(context.Background(), tbl, "custom")
	require.Less(t, before.Confidence["order_total"], 0.9,
		"sales should not map to order_total out of the box")

	require.NoError(t, registry.RegisterSynonym("custom", "order_total", "Sales"))

	after := m.MapColumns(context.Background(), tbl, "custom")
	require.Equal(t, "Sales", after.Mappings["order_total"])
	assert.GreaterOrEqual(t, after.Confidence["order_total"], 0.9)
}

func TestMapColumnsLearnedLayer(t *testing.T) {
	store := newFakeStore()
	store.records[store.key("custom", "rev_col")] = Record{
		SourceHeader: "rev_col",
		FieldName:    "order_total",
		PlatformID:   "custom",
		Confidence:   0.92,
		Provenance:   ProvenanceUserCorrection,
	}
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "rev_col"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t), WithLearningStore(store))

	res := m.MapColumns(context.Background(), tbl, "custom")

	require.Equal(t, "rev_col", res.Mappings["order_total"])
	assert.Equal(t, MethodLearned, res.Methods["order_total"])
	assert.InDelta(t, 0.92, res.Confidence["order_total"], 1e-9)
	assert.Equal(t, 1, store.uses[store.key("custom", "rev_col")])
}

func TestMapColumnsLearnedMustBeStrictlyHigher(t *testing.T) {
	// An exact synonym scores 1.0; a learned record at 1.0 is not
	// strictly higher, so the fresh heuristic wins.
	store := newFakeStore()
	store.records[store.key("custom", "order_id")] = Record{
		SourceHeader: "order_id",
		FieldName:    "customer_id",
		PlatformID:   "custom",
		Confidence:   1.0,
	}
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Order Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t), WithLearningStore(store))

	res := m.MapColumns(context.Background(), tbl, "custom")
	assert.Equal(t, "Order ID", res.Mappings["order_id"])
	assert.Equal(t, "Customer ID", res.Mappings["customer_id"])
}

func TestMapColumnsSuggestions(t *testing.T) {
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "grand sum"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t))

	res := m.MapColumns(context.Background(), tbl, "custom")

	require.Contains(t, res.UnmappedFields, "order_total")
	require.Contains(t, res.UnmappedColumns, "grand sum")
	if sugg := res.Suggestions["order_total"]; len(sugg) > 0 {
		assert.LessOrEqual(t, len(sugg), 3)
		assert.Greater(t, sugg[0].Score, suggestionFloor)
	}
}

func TestPromote(t *testing.T) {
	store := newFakeStore()
	tbl := table.MustNew(
		[]string{"Order ID", "Order Date", "Customer ID", "Order Total"},
		[][]string{{"1", "2024-01-01", "c1", "10"}},
	)
	m := NewMapper(newTestRegistry(t), WithLearningStore(store))

	res := m.MapColumns(context.Background(), tbl, "custom")
	require.NoError(t, m.Promote(context.Background(), res, ProvenanceAuto))

	rec, ok, err := store.Lookup(context.Background(), "custom", "order_total")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "order_total", rec.FieldName)
	assert.Equal(t, ProvenanceAuto, rec.Provenance)
}

func TestEffectiveConfidence(t *testing.T) {
	rec := Record{Confidence: 0.8, UsageCount: 10}
	assert.InDelta(t, 0.9, rec.EffectiveConfidence(), 1e-9)

	rec.UsageCount = 50
	assert.InDelta(t, 1.0, rec.EffectiveConfidence(), 1e-9)
}
