package learning

import (
	"time"

	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/google/uuid"
)

// MappingRecordModel is the persistence model for a learned header
// mapping. Rows are append-mostly: superseded records stay in the table
// with Active cleared so the learning history survives corrections.
type MappingRecordModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	PlatformID   string    `gorm:"type:varchar(64);not null;index:idx_mapping_lookup"`
	SourceHeader string    `gorm:"type:varchar(255);not null;index:idx_mapping_lookup"`
	FieldName    string    `gorm:"type:varchar(64);not null"`
	Confidence   float64   `gorm:"not null"`
	Provenance   string    `gorm:"type:varchar(32);not null;default:'auto'"`
	UsageCount   int       `gorm:"not null;default:0"`
	LastUsed     time.Time
	Active       bool `gorm:"not null;default:true;index:idx_mapping_lookup"`
}

// TableName returns the table name for GORM
func (MappingRecordModel) TableName() string {
	return "mapping_records"
}

// ToDomain converts the persistence model to a domain mapping record.
func (m *MappingRecordModel) ToDomain() mapping.Record {
	return mapping.Record{
		SourceHeader: m.SourceHeader,
		FieldName:    m.FieldName,
		PlatformID:   m.PlatformID,
		Confidence:   m.Confidence,
		Provenance:   mapping.Provenance(m.Provenance),
		UsageCount:   m.UsageCount,
		LastUsed:     m.LastUsed,
	}
}

// FromDomain populates the persistence model from a domain mapping record.
func (m *MappingRecordModel) FromDomain(rec mapping.Record) {
	m.SourceHeader = rec.SourceHeader
	m.FieldName = rec.FieldName
	m.PlatformID = rec.PlatformID
	m.Confidence = rec.Confidence
	m.Provenance = string(rec.Provenance)
	m.UsageCount = rec.UsageCount
	m.LastUsed = rec.LastUsed
}
