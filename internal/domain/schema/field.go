// Package schema holds the field catalog: canonical field definitions,
// per-platform templates, and the registry that detects platforms and
// answers field queries for the rest of the ingestion pipeline.
package schema

import (
	"regexp"

	"github.com/commercelens/backend/internal/domain/shared"
)

// FieldType is the value type of a canonical field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeDatetime FieldType = "datetime"
	TypeFloat    FieldType = "float"
	TypeInteger  FieldType = "integer"
	TypeBoolean  FieldType = "boolean"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// IsValid returns true if the field type is one of the known types.
func (t FieldType) IsValid() bool {
	switch t {
	case TypeString, TypeDatetime, TypeFloat, TypeInteger, TypeBoolean:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of this type participate in sums.
func (t FieldType) IsNumeric() bool {
	return t == TypeFloat || t == TypeInteger
}

// Pattern is a detection pattern with its fixed confidence tier.
// Specific patterns (field words spelled out) sit at 0.9, generic
// shape-only patterns at 0.7.
type Pattern struct {
	Expr       string  `json:"expr"`
	Confidence float64 `json:"confidence"`

	compiled *regexp.Regexp
}

// NewPattern creates a detection pattern; the expression is compiled
// during catalog validation.
func NewPattern(expr string, confidence float64) Pattern {
	return Pattern{Expr: expr, Confidence: confidence}
}

// Matches reports whether the pattern matches a normalized header.
// Patterns that failed or skipped catalog validation never match.
func (p *Pattern) Matches(normalizedHeader string) bool {
	if p.compiled == nil {
		return false
	}
	return p.compiled.MatchString(normalizedHeader)
}

// FieldDefinition is the declarative metadata for one canonical field.
// Definitions are immutable once the catalog is loaded; only explicit
// custom-field registration adds new ones.
type FieldDefinition struct {
	Name       string    `json:"name"`
	Required   bool      `json:"required"`
	Type       FieldType `json:"type"`
	Synonyms   []string  `json:"synonyms,omitempty"`
	Patterns   []Pattern `json:"patterns,omitempty"`
	Validators []string  `json:"validators,omitempty"`
	Samples    []string  `json:"samples,omitempty"`
	Custom     bool      `json:"custom,omitempty"`
}

// validate checks a single definition at catalog-load time.
func (d *FieldDefinition) validate() error {
	if d.Name == "" {
		return shared.NewSchemaError("field definition has no name")
	}
	if !d.Type.IsValid() {
		return shared.NewSchemaError("field %q has unknown type %q", d.Name, d.Type)
	}
	if len(d.Synonyms) == 0 {
		return shared.NewSchemaError("field %q has no synonyms", d.Name)
	}
	for i := range d.Patterns {
		p := &d.Patterns[i]
		compiled, err := regexp.Compile(p.Expr)
		if err != nil {
			return shared.NewSchemaError("field %q has invalid pattern %q: %v", d.Name, p.Expr, err)
		}
		if p.Confidence < 0.7 || p.Confidence > 0.9 {
			return shared.NewSchemaError("field %q pattern %q confidence %.2f outside [0.7, 0.9]",
				d.Name, p.Expr, p.Confidence)
		}
		p.compiled = compiled
	}
	return nil
}

// MatchesSynonym reports whether a normalized header equals one of the
// field's normalized synonyms.
func (d *FieldDefinition) MatchesSynonym(normalizedHeader string) bool {
	for _, syn := range d.Synonyms {
		if NormalizeHeader(syn) == normalizedHeader {
			return true
		}
	}
	return false
}

// MatchPattern returns the best-confidence pattern matching a
// normalized header, if any.
func (d *FieldDefinition) MatchPattern(normalizedHeader string) (float64, bool) {
	best := 0.0
	matched := false
	for i := range d.Patterns {
		if d.Patterns[i].Matches(normalizedHeader) && d.Patterns[i].Confidence > best {
			best = d.Patterns[i].Confidence
			matched = true
		}
	}
	return best, matched
}

// clone returns a deep copy so registry callers cannot mutate catalog
// state through returned definitions.
func (d FieldDefinition) clone() FieldDefinition {
	out := d
	out.Synonyms = append([]string(nil), d.Synonyms...)
	out.Patterns = append([]Pattern(nil), d.Patterns...)
	out.Validators = append([]string(nil), d.Validators...)
	out.Samples = append([]string(nil), d.Samples...)
	return out
}
