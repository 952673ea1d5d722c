package mapping

import (
	"context"
	"sort"

	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/table"
)

// DefaultSimilarityThreshold is the minimum lexical similarity for the
// fuzzy layer to claim a column.
const DefaultSimilarityThreshold = 0.75

// suggestionFloor is the minimum score for a column to appear in
// mapping suggestions.
const suggestionFloor = 0.3

// Method identifies which layer produced a mapping.
type Method string

const (
	MethodExactSynonym Method = "exact_synonym"
	MethodSimilarity   Method = "similarity"
	MethodPattern      Method = "pattern"
	MethodLearned      Method = "learned"
)

// Suggestion is a candidate column for an unmapped field.
type Suggestion struct {
	Column string  `json:"column"`
	Score  float64 `json:"score"`
}

// Result is the outcome of mapping one table's headers onto a platform
// template. Confidence carries the best score for every field, mapped
// or not, so sub-threshold near-misses stay visible.
type Result struct {
	PlatformID      string                  `json:"platform_id"`
	Mappings        map[string]string       `json:"mappings"`
	Confidence      map[string]float64      `json:"confidence"`
	Methods         map[string]Method       `json:"methods"`
	UnmappedFields  []string                `json:"unmapped_fields"`
	UnmappedColumns []string                `json:"unmapped_columns"`
	Suggestions     map[string][]Suggestion `json:"suggestions,omitempty"`
}

// Mapper assigns source columns to canonical fields using layered
// strategies backed by the schema registry and, optionally, a learning
// store of past assignments.
type Mapper struct {
	registry  *schema.Registry
	store     LearningStore
	threshold float64
}

// Option customizes a Mapper.
type Option func(*Mapper)

// WithLearningStore enables the learned-mapping layer.
func WithLearningStore(store LearningStore) Option {
	return func(m *Mapper) { m.store = store }
}

// WithSimilarityThreshold overrides the fuzzy-match acceptance floor.
func WithSimilarityThreshold(threshold float64) Option {
	return func(m *Mapper) { m.threshold = threshold }
}

// NewMapper builds a Mapper over a registry.
func NewMapper(registry *schema.Registry, opts ...Option) *Mapper {
	m := &Mapper{
		registry:  registry,
		threshold: DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// candidate is one scored (field, column) pairing.
type candidate struct {
	header string
	score  float64
	method Method
}

// MapColumns maps the table's headers onto the platform's canonical
// fields. Fields are processed required-first; once a column is
// claimed it leaves the pool, so no column serves two fields. The
// learned layer displaces a fresh heuristic only when its confidence
// is strictly higher.
func (m *Mapper) MapColumns(ctx context.Context, tbl *table.Table, platformID string) *Result {
	tpl := m.registry.Template(platformID)

	res := &Result{
		PlatformID: tpl.ID,
		Mappings:   make(map[string]string),
		Confidence: make(map[string]float64),
		Methods:    make(map[string]Method),
	}

	type header struct {
		raw  string
		norm string
	}
	pool := make([]header, 0, len(tbl.Headers()))
	for _, h := range tbl.Headers() {
		pool = append(pool, header{raw: h, norm: schema.NormalizeHeader(h)})
	}
	claimed := make(map[string]bool, len(pool))

	fields := orderedFields(tpl)
	for i := range fields {
		def := &fields[i]

		best := candidate{}
		for _, h := range pool {
			if claimed[h.raw] || h.norm == "" {
				continue
			}
			if c, ok := m.scoreHeuristics(def, h.norm); ok && c.score > best.score {
				best = candidate{header: h.raw, score: c.score, method: c.method}
			}
		}

		if m.store != nil {
			for _, h := range pool {
				if claimed[h.raw] || h.norm == "" {
					continue
				}
				rec, ok, err := m.store.Lookup(ctx, tpl.ID, h.norm)
				if err != nil || !ok || rec.FieldName != def.Name {
					continue
				}
				if eff := rec.EffectiveConfidence(); eff > best.score {
					best = candidate{header: h.raw, score: eff, method: MethodLearned}
				}
			}
		}

		res.Confidence[def.Name] = best.score
		if best.header == "" {
			res.UnmappedFields = append(res.UnmappedFields, def.Name)
			continue
		}
		claimed[best.header] = true
		res.Mappings[def.Name] = best.header
		res.Methods[def.Name] = best.method
		if best.method == MethodLearned {
			// Best effort: usage accounting must not fail a mapping.
			_ = m.store.RecordUse(ctx, tpl.ID, schema.NormalizeHeader(best.header))
		}
	}

	for _, h := range pool {
		if !claimed[h.raw] {
			res.UnmappedColumns = append(res.UnmappedColumns, h.raw)
		}
	}
	res.Suggestions = m.suggest(tpl, fields, res)
	return res
}

// Promote persists the fresh mappings of a result so later uploads can
// reuse them. Learned mappings are skipped, their usage was already
// recorded during assignment. Returns the first store error, if any.
func (m *Mapper) Promote(ctx context.Context, res *Result, prov Provenance) error {
	if m.store == nil {
		return nil
	}
	var firstErr error
	for field, source := range res.Mappings {
		if res.Methods[field] == MethodLearned {
			continue
		}
		rec := Record{
			SourceHeader: schema.NormalizeHeader(source),
			FieldName:    field,
			PlatformID:   res.PlatformID,
			Confidence:   res.Confidence[field],
			Provenance:   prov,
		}
		if err := m.store.Save(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// scoreHeuristics runs the fresh layers in precedence order for one
// field against one normalized header.
func (m *Mapper) scoreHeuristics(def *schema.FieldDefinition, norm string) (candidate, bool) {
	if def.MatchesSynonym(norm) || schema.NormalizeHeader(def.Name) == norm {
		return candidate{score: 1.0, method: MethodExactSynonym}, true
	}

	if sim := m.bestSimilarity(def, norm); sim >= m.threshold {
		return candidate{score: sim, method: MethodSimilarity}, true
	}

	if conf, ok := def.MatchPattern(norm); ok {
		return candidate{score: conf, method: MethodPattern}, true
	}
	return candidate{}, false
}

// bestSimilarity returns the best lexical similarity between a
// normalized header and any synonym of the field, including the
// canonical name itself.
func (m *Mapper) bestSimilarity(def *schema.FieldDefinition, norm string) float64 {
	best := Similarity(schema.NormalizeHeader(def.Name), norm)
	for _, syn := range def.Synonyms {
		if s := Similarity(schema.NormalizeHeader(syn), norm); s > best {
			best = s
		}
	}
	return best
}

// suggest ranks the still-unclaimed columns for every unmapped field,
// keeping the top three above the floor.
func (m *Mapper) suggest(tpl *schema.PlatformTemplate, fields []schema.FieldDefinition, res *Result) map[string][]Suggestion {
	if len(res.UnmappedFields) == 0 {
		return nil
	}
	out := make(map[string][]Suggestion, len(res.UnmappedFields))
	for _, name := range res.UnmappedFields {
		def := findField(fields, name)
		if def == nil {
			continue
		}
		var scored []Suggestion
		for _, col := range res.UnmappedColumns {
			norm := schema.NormalizeHeader(col)
			if norm == "" {
				continue
			}
			score := m.bestSimilarity(def, norm)
			if conf, ok := def.MatchPattern(norm); ok && conf > score {
				score = conf
			}
			if score > suggestionFloor {
				scored = append(scored, Suggestion{Column: col, Score: score})
			}
		}
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
		if len(scored) > 3 {
			scored = scored[:3]
		}
		if len(scored) > 0 {
			out[name] = scored
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// orderedFields returns required fields before optional ones, each
// group in template declaration order, so a scarce column is claimed
// by a required field first.
func orderedFields(tpl *schema.PlatformTemplate) []schema.FieldDefinition {
	all := tpl.AllFields()
	out := make([]schema.FieldDefinition, 0, len(all))
	for _, def := range all {
		if def.Required {
			out = append(out, def)
		}
	}
	for _, def := range all {
		if !def.Required {
			out = append(out, def)
		}
	}
	return out
}

func findField(fields []schema.FieldDefinition, name string) *schema.FieldDefinition {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}
