package mapping

import (
	"context"
	"time"
)

// Provenance marks how a mapping record came to exist.
type Provenance string

const (
	ProvenanceAuto           Provenance = "auto"
	ProvenanceUserCorrection Provenance = "user_correction"
)

// Record is one learned association between a normalized source header
// and a canonical field on a platform. Records are append-mostly: a
// higher-confidence record for the same (source header, platform) pair
// supersedes earlier ones, it never deletes them.
type Record struct {
	SourceHeader string
	FieldName    string
	PlatformID   string
	Confidence   float64
	Provenance   Provenance
	UsageCount   int
	LastUsed     time.Time
}

// EffectiveConfidence is the stored confidence with a small usage
// boost, capped at 1.0. Repeated confirmations make a learned mapping
// gradually harder to displace.
func (r Record) EffectiveConfidence() float64 {
	c := r.Confidence + 0.01*float64(r.UsageCount)
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// LearningStore persists mapping records across uploads. The store is
// advisory: a lookup failure degrades mapping quality, it never fails
// an upload.
type LearningStore interface {
	// Lookup returns the current record for a normalized source header
	// on a platform, if one exists.
	Lookup(ctx context.Context, platformID, sourceHeader string) (Record, bool, error)

	// Save inserts a record, superseding any lower-confidence record
	// for the same (source header, platform) pair.
	Save(ctx context.Context, rec Record) error

	// RecordUse bumps the usage count of an existing record.
	RecordUse(ctx context.Context, platformID, sourceHeader string) error
}
