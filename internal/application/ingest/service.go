package ingest

import (
	"context"

	"github.com/commercelens/backend/internal/domain/aggregate"
	"github.com/commercelens/backend/internal/domain/granularity"
	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/table"
	"github.com/commercelens/backend/internal/domain/validation"
	"github.com/commercelens/backend/internal/infrastructure/config"
	"github.com/commercelens/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options control a single pipeline run.
type Options struct {
	// PlatformID skips detection when set to a known platform.
	PlatformID string
}

// Result is the outcome of one upload run through the pipeline.
type Result struct {
	UploadID      string                     `json:"upload_id"`
	Detection     schema.Detection           `json:"detection"`
	Mapping       *mapping.Result            `json:"mapping"`
	MappingReport *mapping.Report            `json:"mapping_report"`
	Granularity   granularity.Classification `json:"granularity"`
	Aggregation   *aggregate.Summary         `json:"aggregation,omitempty"`
	Validation    *validation.Report         `json:"validation"`
	Frame         *table.Frame               `json:"-"`
}

// Service runs the ingestion pipeline: detect platform, map columns,
// classify granularity, aggregate line items, validate and coerce.
// A Service is safe for concurrent use; each run touches only its own
// table plus the read-mostly registry and the learning store.
type Service struct {
	registry  *schema.Registry
	mapper    *mapping.Mapper
	detector  *granularity.Detector
	engine    *aggregate.Engine
	validator *validation.Validator
	store     mapping.LearningStore
	logger    *zap.Logger
}

// NewService wires the pipeline stages from configuration. The store
// may be nil, which disables the learned-mapping layer.
func NewService(cfg config.IngestConfig, registry *schema.Registry, store mapping.LearningStore, logger *zap.Logger) *Service {
	mapperOpts := []mapping.Option{
		mapping.WithSimilarityThreshold(cfg.SimilarityThreshold),
	}
	if store != nil {
		mapperOpts = append(mapperOpts, mapping.WithLearningStore(store))
	}

	return &Service{
		registry:  registry,
		mapper:    mapping.NewMapper(registry, mapperOpts...),
		detector:  granularity.NewDetector(granularity.WithRatioThreshold(cfg.LineItemRatioThreshold)),
		engine:    aggregate.NewEngine(aggregate.WithMaxGap(cfg.MaxGap())),
		validator: validation.NewValidator(validation.WithDateThresholds(cfg.DateParseFloor, cfg.DateParseCeiling)),
		store:     store,
		logger:    logger,
	}
}

// Registry exposes the schema registry backing the pipeline.
func (s *Service) Registry() *schema.Registry {
	return s.registry
}

// Run executes the full pipeline on one table. Schema, mapping and
// aggregation-precondition problems return an error alongside the
// partial result; validation problems never do, they live in the
// report.
func (s *Service) Run(ctx context.Context, tbl *table.Table, opts Options) (*Result, error) {
	uploadID := tbl.Source.UploadID
	if uploadID == "" {
		uploadID = uuid.New().String()
		tbl.Source.UploadID = uploadID
	}
	ctx, log := logger.WithUploadID(ctx, s.logger, uploadID)
	log = log.With(
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", len(tbl.Headers())),
	)

	detection := s.detectPlatform(tbl, opts)
	ctx, log = logger.WithPlatformID(ctx, log, detection.PlatformID)
	log.Info("Platform detected", zap.Float64("score", detection.Score))

	res := &Result{
		UploadID:  uploadID,
		Detection: detection,
	}

	res.Mapping = s.mapper.MapColumns(ctx, tbl, detection.PlatformID)
	log.Info("Columns mapped",
		zap.Int("mapped", len(res.Mapping.Mappings)),
		zap.Strings("unmapped_fields", res.Mapping.UnmappedFields),
	)

	res.Granularity = s.detector.Detect(tbl, res.Mapping.Mappings, res.Mapping.UnmappedColumns)
	log.Info("Granularity classified",
		zap.String("level", string(res.Granularity.Level)),
		zap.String("confidence", string(res.Granularity.Confidence)),
		zap.Strings("indicators", res.Granularity.Indicators),
	)

	lineItem := res.Granularity.Level == granularity.LevelLineItem
	res.MappingReport = s.mapper.ValidateMappings(tbl, res.Mapping, lineItem)
	if !res.MappingReport.Valid {
		log.Warn("Mapping validation failed",
			zap.Strings("missing_required", res.MappingReport.MissingRequired),
		)
		return res, res.MappingReport.Errors[0]
	}

	canonical := tbl
	if res.Granularity.RequiresAggregation {
		out, err := s.engine.Aggregate(tbl, res.Mapping.Mappings, res.Granularity.Level)
		if err != nil {
			return res, err
		}
		canonical = out.Orders
		res.Aggregation = &out.Summary
		log.Info("Line items aggregated",
			zap.String("strategy", string(out.Summary.Strategy)),
			zap.Int("orders", out.Summary.AggregatedRows),
			zap.Int("skipped_rows", out.Summary.SkippedRows),
		)
	} else {
		canonical = tbl.Project(res.Mapping.Mappings)
	}

	res.Frame, res.Validation = s.validator.Validate(canonical)
	log.Info("Validation finished",
		zap.Bool("valid", res.Validation.Valid),
		zap.Int("kept_rows", res.Validation.KeptRows),
		zap.Float64("quality_score", res.Validation.QualityScore),
	)

	// Best effort: a store failure degrades learning, never an upload.
	if err := s.mapper.Promote(ctx, res.Mapping, mapping.ProvenanceAuto); err != nil {
		log.Warn("Failed to persist learned mappings", zap.Error(err))
	}

	return res, nil
}

// detectPlatform honors an explicit known platform and falls back to
// header-based detection otherwise.
func (s *Service) detectPlatform(tbl *table.Table, opts Options) schema.Detection {
	if opts.PlatformID != "" && s.registry.HasPlatform(opts.PlatformID) {
		return schema.Detection{PlatformID: opts.PlatformID, Score: 1.0}
	}
	return s.registry.DetectPlatform(tbl.Headers())
}

// Correct records a user-supplied mapping correction so future uploads
// prefer it over heuristics.
func (s *Service) Correct(ctx context.Context, platformID, fieldName, sourceHeader string) error {
	if s.store == nil {
		return nil
	}
	err := s.store.Save(ctx, mapping.Record{
		SourceHeader: schema.NormalizeHeader(sourceHeader),
		FieldName:    fieldName,
		PlatformID:   platformID,
		Confidence:   1.0,
		Provenance:   mapping.ProvenanceUserCorrection,
	})
	if err == nil {
		logger.FromContext(ctx).Info("Mapping correction recorded",
			zap.String("platform_id", platformID),
			zap.String("field_name", fieldName),
		)
	}
	return err
}
