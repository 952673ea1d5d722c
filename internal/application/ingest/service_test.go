package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/commercelens/backend/internal/domain/granularity"
	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/table"
	"github.com/commercelens/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.IngestConfig {
	return config.IngestConfig{
		SimilarityThreshold:        0.75,
		PlatformDetectionThreshold: 0.3,
		LineItemRatioThreshold:     1.2,
		DateParseFloor:             0.5,
		DateParseCeiling:           0.8,
	}
}

// stubStore is a minimal in-memory learning store for pipeline tests.
type stubStore struct {
	mu    sync.Mutex
	saved map[string]mapping.Record
}

func newStubStore() *stubStore {
	return &stubStore{saved: make(map[string]mapping.Record)}
}

func (s *stubStore) Lookup(_ context.Context, platformID, sourceHeader string) (mapping.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.saved[platformID+"|"+sourceHeader]
	return rec, ok, nil
}

func (s *stubStore) Save(_ context.Context, rec mapping.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[rec.PlatformID+"|"+rec.SourceHeader] = rec
	return nil
}

func (s *stubStore) RecordUse(_ context.Context, platformID, sourceHeader string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := platformID + "|" + sourceHeader
	rec, ok := s.saved[key]
	if ok {
		rec.UsageCount++
		s.saved[key] = rec
	}
	return nil
}

func newTestService(store mapping.LearningStore) *Service {
	return NewService(testConfig(), schema.MustNewRegistry(), store, zap.NewNop())
}

func arabicOrderTable() *table.Table {
	return table.MustNew(
		[]string{"رقم الطلب", "تاريخ الطلب", "اسم العميل", "إجمالي الطلب"},
		[][]string{
			{"ORD-1", "2024-03-01", "c1", "150.00"},
			{"ORD-2", "2024-03-02", "c2", "75.50"},
			{"ORD-3", "2024-03-03", "c1", "210.25"},
		},
	)
}

func lineItemTable() *table.Table {
	return table.MustNew(
		[]string{"Order ID", "Order Date", "Customer", "Product Name", "Quantity", "Item Total"},
		[][]string{
			{"ORD-1", "2024-03-01", "c1", "widget", "1", "10.00"},
			{"ORD-1", "2024-03-01", "c1", "gadget", "2", "20.00"},
			{"ORD-2", "2024-03-01", "c2", "widget", "1", "10.00"},
			{"ORD-2", "2024-03-01", "c2", "gizmo", "3", "45.00"},
		},
	)
}

func TestRunOrderLevelUpload(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Run(context.Background(), arabicOrderTable(), Options{})

	require.NoError(t, err)
	assert.Equal(t, "salla", res.Detection.PlatformID)
	assert.NotEmpty(t, res.UploadID)

	assert.Equal(t, "رقم الطلب", res.Mapping.Mappings["order_id"])
	assert.Equal(t, "إجمالي الطلب", res.Mapping.Mappings["order_total"])
	assert.True(t, res.MappingReport.Valid)

	assert.Equal(t, granularity.LevelOrder, res.Granularity.Level)
	assert.Nil(t, res.Aggregation)

	require.NotNil(t, res.Validation)
	assert.True(t, res.Validation.Valid)
	assert.Equal(t, 3, res.Validation.KeptRows)

	require.NotNil(t, res.Frame)
	assert.Equal(t, 3, res.Frame.RowCount())
}

func TestRunAggregatesLineItems(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Run(context.Background(), lineItemTable(), Options{})

	require.NoError(t, err)
	assert.Equal(t, granularity.LevelLineItem, res.Granularity.Level)
	assert.True(t, res.Granularity.RequiresAggregation)

	require.NotNil(t, res.Aggregation)
	assert.Equal(t, 4, res.Aggregation.OriginalRows)
	assert.Equal(t, 2, res.Aggregation.AggregatedRows)
	assert.Equal(t, "85", res.Aggregation.TotalRevenue.String())

	assert.Equal(t, 2, res.Validation.KeptRows)
	require.NotNil(t, res.Frame)
	assert.Equal(t, 2, res.Frame.RowCount())
}

func TestRunFailsOnUnmappableRequiredField(t *testing.T) {
	svc := newTestService(nil)

	tbl := table.MustNew(
		[]string{"Something", "Else"},
		[][]string{{"a", "b"}},
	)

	res, err := svc.Run(context.Background(), tbl, Options{})

	require.Error(t, err)
	require.NotNil(t, res)
	assert.False(t, res.MappingReport.Valid)
	assert.NotEmpty(t, res.MappingReport.MissingRequired)
	assert.Nil(t, res.Validation)
}

func TestRunHonorsPlatformOverride(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Run(context.Background(), arabicOrderTable(), Options{PlatformID: "custom"})

	require.NoError(t, err)
	assert.Equal(t, "custom", res.Detection.PlatformID)
	assert.Equal(t, 1.0, res.Detection.Score)
}

func TestRunIgnoresUnknownPlatformOverride(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Run(context.Background(), arabicOrderTable(), Options{PlatformID: "etsy"})

	require.NoError(t, err)
	assert.Equal(t, "salla", res.Detection.PlatformID)
}

func TestRunPromotesMappingsToStore(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	_, err := svc.Run(context.Background(), arabicOrderTable(), Options{})
	require.NoError(t, err)

	rec, ok, err := store.Lookup(context.Background(), "salla", schema.NormalizeHeader("إجمالي الطلب"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "order_total", rec.FieldName)
	assert.Equal(t, mapping.ProvenanceAuto, rec.Provenance)
}

func TestCorrectSavesUserCorrection(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	err := svc.Correct(context.Background(), "custom", "order_total", "Rev Col")
	require.NoError(t, err)

	rec, ok, err := store.Lookup(context.Background(), "custom", "rev_col")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "order_total", rec.FieldName)
	assert.Equal(t, mapping.ProvenanceUserCorrection, rec.Provenance)
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestCorrectWithoutStoreIsNoop(t *testing.T) {
	svc := newTestService(nil)

	assert.NoError(t, svc.Correct(context.Background(), "custom", "order_total", "Rev Col"))
}
