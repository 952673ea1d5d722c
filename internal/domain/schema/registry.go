package schema

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/commercelens/backend/internal/domain/table"
)

const (
	// DefaultDetectionThreshold is the minimum fraction of required
	// fields a template must recognize before its platform is reported.
	DefaultDetectionThreshold = 0.3

	// maxTypeSamples bounds how many sample values SuggestFieldType
	// inspects per column.
	maxTypeSamples = 20
)

// Detection is the outcome of platform detection over a header set.
type Detection struct {
	PlatformID string             `json:"platform_id"`
	Score      float64            `json:"score"`
	Scores     map[string]float64 `json:"scores"`
}

// Registry holds the platform templates and any field definitions or
// synonyms registered at runtime. All methods are safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	templates []*PlatformTemplate
	byID      map[string]*PlatformTemplate
	threshold float64
}

// RegistryOption customizes registry construction.
type RegistryOption func(*Registry)

// WithDetectionThreshold overrides the platform detection threshold.
func WithDetectionThreshold(threshold float64) RegistryOption {
	return func(r *Registry) { r.threshold = threshold }
}

// WithTemplates replaces the built-in templates, e.g. with a catalog
// loaded from disk.
func WithTemplates(templates []*PlatformTemplate) RegistryOption {
	return func(r *Registry) { r.templates = templates }
}

// NewRegistry builds a registry over the built-in templates. Template
// validation is fail-fast: a catalog defect aborts construction rather
// than surfacing as a silent mapping miss later.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		templates: BuiltinTemplates(),
		threshold: DefaultDetectionThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.templates) == 0 {
		return nil, shared.NewSchemaError("no platform templates configured")
	}
	r.byID = make(map[string]*PlatformTemplate, len(r.templates))
	for _, tpl := range r.templates {
		if err := tpl.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[tpl.ID]; exists {
			return nil, shared.NewSchemaError("duplicate platform template %q", tpl.ID)
		}
		r.byID[tpl.ID] = tpl
	}
	if _, ok := r.byID[DefaultPlatformID]; !ok {
		return nil, shared.NewSchemaError("catalog is missing the %q fallback template", DefaultPlatformID)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for wiring paths where a catalog
// defect is a programming error.
func MustNewRegistry(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Platforms returns the template ids in declaration order.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.templates))
	for i, tpl := range r.templates {
		out[i] = tpl.ID
	}
	return out
}

// Template returns a deep copy of the template for the given platform,
// falling back to the default template for unknown ids.
func (r *Registry) Template(platformID string) *PlatformTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.byID[platformID]
	if !ok {
		tpl = r.byID[DefaultPlatformID]
	}
	return tpl.clone()
}

// HasPlatform reports whether a template with the given id exists.
func (r *Registry) HasPlatform(platformID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[platformID]
	return ok
}

// DetectPlatform scores every template against the headers and returns
// the best match. A template's score is the fraction of its required
// fields recognized by synonym or pattern. Scores below the threshold
// fall back to the default template with the losing scores preserved
// for diagnostics. Ties resolve to the earliest declared template.
func (r *Registry) DetectPlatform(headers []string) Detection {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		if n := NormalizeHeader(h); n != "" {
			normalized = append(normalized, n)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	det := Detection{
		PlatformID: DefaultPlatformID,
		Scores:     make(map[string]float64, len(r.templates)),
	}
	best := -1.0
	for _, tpl := range r.templates {
		if tpl.ID == DefaultPlatformID {
			continue
		}
		score := scoreTemplate(tpl, normalized)
		det.Scores[tpl.ID] = score
		if score > best {
			best = score
			if score >= r.threshold {
				det.PlatformID = tpl.ID
				det.Score = score
			}
		}
	}
	return det
}

func scoreTemplate(tpl *PlatformTemplate, normalizedHeaders []string) float64 {
	if len(tpl.CoreFields) == 0 {
		return 0
	}
	matched := 0
	for i := range tpl.CoreFields {
		def := &tpl.CoreFields[i]
		for _, h := range normalizedHeaders {
			if def.MatchesSynonym(h) {
				matched++
				break
			}
			if _, ok := def.MatchPattern(h); ok {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tpl.CoreFields))
}

// AddCustomField registers a runtime field definition on a platform
// template. The definition is validated like built-in ones and must
// not collide with an existing field name.
func (r *Registry) AddCustomField(platformID string, def FieldDefinition) error {
	def.Custom = true
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.byID[platformID]
	if !ok {
		return shared.NewSchemaError("unknown platform %q", platformID)
	}
	if _, exists := tpl.Field(def.Name); exists {
		return shared.NewSchemaError("platform %q already defines field %q", platformID, def.Name)
	}
	if def.Required {
		tpl.CoreFields = append(tpl.CoreFields, def.clone())
	} else {
		tpl.OptionalFields = append(tpl.OptionalFields, def.clone())
	}
	return nil
}

// RegisterSynonym attaches an additional header synonym to an existing
// field, making previously unrecognized vocabularies map without a
// catalog release. Duplicate synonyms are ignored.
func (r *Registry) RegisterSynonym(platformID, fieldName, synonym string) error {
	if strings.TrimSpace(synonym) == "" {
		return shared.NewSchemaError("synonym for field %q is empty", fieldName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.byID[platformID]
	if !ok {
		return shared.NewSchemaError("unknown platform %q", platformID)
	}
	def := tpl.fieldRef(fieldName)
	if def == nil {
		return shared.NewSchemaError("platform %q has no field %q", platformID, fieldName)
	}
	normalized := NormalizeHeader(synonym)
	for _, existing := range def.Synonyms {
		if NormalizeHeader(existing) == normalized {
			return nil
		}
	}
	def.Synonyms = append(def.Synonyms, synonym)
	return nil
}

var (
	dateNameRe  = regexp.MustCompile(`(date|time|created|updated|_at$)`)
	moneyNameRe = regexp.MustCompile(`(total|amount|price|cost|revenue|fee|tax|discount)`)
	countNameRe = regexp.MustCompile(`(qty|quantity|count|units|number_of)`)
	boolNameRe  = regexp.MustCompile(`(^is_|^has_|_flag$|active|enabled)`)
)

// SuggestFieldType infers a field type from a column name and up to 20
// sample values. Sample evidence wins over name hints when the two
// disagree. The returned confidence is the fraction of samples that
// parsed cleanly under the winning type; name-only inference reports a
// flat 0.5.
func (r *Registry) SuggestFieldType(name string, samples []string) (FieldType, float64) {
	values := make([]string, 0, maxTypeSamples)
	for _, s := range samples {
		if strings.TrimSpace(s) == "" {
			continue
		}
		values = append(values, s)
		if len(values) == maxTypeSamples {
			break
		}
	}
	normalized := NormalizeHeader(name)

	if len(values) == 0 {
		switch {
		case dateNameRe.MatchString(normalized):
			return TypeDatetime, 0.5
		case countNameRe.MatchString(normalized):
			return TypeInteger, 0.5
		case moneyNameRe.MatchString(normalized):
			return TypeFloat, 0.5
		case boolNameRe.MatchString(normalized):
			return TypeBoolean, 0.5
		default:
			return TypeString, 0.5
		}
	}

	dates, ints, floats, bools := 0, 0, 0, 0
	for _, v := range values {
		if _, ok := table.ParseDate(v); ok {
			dates++
		}
		if _, ok := table.ParseInt(v); ok {
			ints++
		} else if _, ok := table.ParseDecimal(v); ok {
			floats++
		}
		if _, ok := table.ParseBool(v); ok {
			bools++
		}
	}
	total := len(values)
	frac := func(n int) float64 { return float64(n) / float64(total) }
	majority := func(n int) bool { return frac(n) >= 0.8 }

	switch {
	case majority(dates) && (dateNameRe.MatchString(normalized) || dates >= ints+floats):
		return TypeDatetime, frac(dates)
	case majority(ints + floats):
		if floats > 0 || moneyNameRe.MatchString(normalized) {
			return TypeFloat, frac(ints + floats)
		}
		return TypeInteger, frac(ints)
	case majority(bools):
		return TypeBoolean, frac(bools)
	default:
		return TypeString, 1.0
	}
}

// FieldNames returns the canonical field names of a platform, required
// fields first, each group sorted for stable output.
func (r *Registry) FieldNames(platformID string) []string {
	tpl := r.Template(platformID)
	required := tpl.RequiredFields()
	optional := tpl.OptionalFieldNames()
	sort.Strings(required)
	sort.Strings(optional)
	return append(required, optional...)
}
