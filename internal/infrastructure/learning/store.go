package learning

import (
	"context"
	"errors"
	"time"

	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements mapping.LearningStore on sqlite. A correction
// never overwrites history: superseded rows are deactivated and a new
// row is inserted in the same transaction.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GormStore
func NewGormStore(db *Database) *GormStore {
	return &GormStore{db: db.DB, now: time.Now}
}

// Lookup returns the active record for a (platform, source header) pair.
func (s *GormStore) Lookup(ctx context.Context, platformID, sourceHeader string) (mapping.Record, bool, error) {
	var model MappingRecordModel
	err := s.db.WithContext(ctx).
		Where("platform_id = ? AND source_header = ? AND active = ?", platformID, sourceHeader, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mapping.Record{}, false, nil
		}
		return mapping.Record{}, false, err
	}
	return model.ToDomain(), true, nil
}

// Save inserts a record. An existing active record for the same pair is
// kept when it is at least as confident and the new record is not a
// user correction; otherwise it is deactivated and the new record
// becomes active.
func (s *GormStore) Save(ctx context.Context, rec mapping.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current MappingRecordModel
		err := tx.
			Where("platform_id = ? AND source_header = ? AND active = ?", rec.PlatformID, rec.SourceHeader, true).
			Order("created_at DESC").
			First(&current).Error
		switch {
		case err == nil:
			if rec.Provenance != mapping.ProvenanceUserCorrection &&
				current.ToDomain().EffectiveConfidence() >= rec.Confidence {
				return nil
			}
			if err := tx.Model(&MappingRecordModel{}).
				Where("id = ?", current.ID).
				Update("active", false).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First record for this pair
		default:
			return err
		}

		model := MappingRecordModel{
			ID:        uuid.New(),
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
			Active:    true,
		}
		model.FromDomain(rec)
		if model.LastUsed.IsZero() {
			model.LastUsed = s.now()
		}
		return tx.Create(&model).Error
	})
}

// RecordUse bumps the usage count of the active record for a pair.
func (s *GormStore) RecordUse(ctx context.Context, platformID, sourceHeader string) error {
	result := s.db.WithContext(ctx).Model(&MappingRecordModel{}).
		Where("platform_id = ? AND source_header = ? AND active = ?", platformID, sourceHeader, true).
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   s.now(),
			"updated_at":  s.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// History returns every record ever stored for a pair, newest first.
// Useful for auditing how a mapping evolved across corrections.
func (s *GormStore) History(ctx context.Context, platformID, sourceHeader string) ([]mapping.Record, error) {
	var models []MappingRecordModel
	if err := s.db.WithContext(ctx).
		Where("platform_id = ? AND source_header = ?", platformID, sourceHeader).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]mapping.Record, len(models))
	for i, m := range models {
		records[i] = m.ToDomain()
	}
	return records, nil
}

// Compile-time interface compliance check
var _ mapping.LearningStore = (*GormStore)(nil)
