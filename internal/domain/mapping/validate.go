package mapping

import (
	"fmt"

	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/commercelens/backend/internal/domain/table"
)

// fieldQualitySample bounds how many non-empty values the type probe
// inspects per field.
const fieldQualitySample = 100

// FieldStats describes the data quality of one mapped column.
type FieldStats struct {
	TotalRows      int      `json:"total_rows"`
	NullCount      int      `json:"null_count"`
	NullPercentage float64  `json:"null_percentage"`
	UniqueCount    int      `json:"unique_count"`
	QualityScore   float64  `json:"quality_score"`
	SampleValues   []string `json:"sample_values,omitempty"`
}

// Report is the outcome of validating a mapping against its table.
type Report struct {
	Valid           bool                  `json:"valid"`
	Errors          []error               `json:"-"`
	Warnings        []string              `json:"warnings,omitempty"`
	MissingRequired []string              `json:"missing_required,omitempty"`
	FieldStats      map[string]FieldStats `json:"field_stats,omitempty"`
	QualityScore    float64               `json:"quality_score"`
}

// ErrorMessages renders the error list for transport.
func (r *Report) ErrorMessages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

// ValidateMappings checks a mapping result against the table it was
// produced from. A missing required field is an error, with two
// exceptions: the order identifier is downgraded to a warning when the
// table is classified line-item (it will be synthesized during
// aggregation), and a missing customer identifier falls back to a
// mapped phone or email column. A mapped column absent from the table
// is always an error.
func (m *Mapper) ValidateMappings(tbl *table.Table, res *Result, lineItem bool) *Report {
	tpl := m.registry.Template(res.PlatformID)
	report := &Report{
		FieldStats: make(map[string]FieldStats),
	}

	for _, field := range tpl.RequiredFields() {
		if _, mapped := res.Mappings[field]; mapped {
			continue
		}

		if field == "order_id" && lineItem {
			report.Warnings = append(report.Warnings,
				"order_id will be synthesized during aggregation (line-item data detected)")
			continue
		}

		if field == "customer_id" {
			if src, ok := res.Mappings["customer_phone"]; ok {
				res.Mappings["customer_id"] = src
				res.Confidence["customer_id"] = res.Confidence["customer_phone"]
				report.Warnings = append(report.Warnings,
					"using customer_phone as customer_id (no dedicated customer ID column found)")
				continue
			}
			if src, ok := res.Mappings["customer_email"]; ok {
				res.Mappings["customer_id"] = src
				res.Confidence["customer_id"] = res.Confidence["customer_email"]
				report.Warnings = append(report.Warnings,
					"using customer_email as customer_id (no dedicated customer ID column found)")
				continue
			}
		}

		report.MissingRequired = append(report.MissingRequired, field)
		report.Errors = append(report.Errors,
			shared.NewMappingError("required field %q not mapped", field))
	}

	var qualitySum float64
	var qualityCount int
	for field, source := range res.Mappings {
		if !tbl.HasColumn(source) {
			report.Errors = append(report.Errors,
				shared.NewMappingError("mapped column %q for field %q not found in data", source, field))
			continue
		}
		def, _ := tpl.Field(field)
		values, _ := tbl.Column(source)
		stats := analyzeFieldQuality(values, field, def.Type)
		report.FieldStats[field] = stats
		qualitySum += stats.QualityScore
		qualityCount++

		if stats.NullPercentage > 95 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("field %q is mostly empty (%.1f%% null)", field, stats.NullPercentage))
		}
		if stats.QualityScore < 0.3 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("field %q has poor data quality", field))
		}
	}
	if qualityCount > 0 {
		report.QualityScore = qualitySum / float64(qualityCount)
	}

	report.Valid = len(report.MissingRequired) == 0 && len(report.Errors) == 0
	return report
}

// uniqueIDFields are canonical fields whose values are expected to be
// mostly distinct.
var uniqueIDFields = map[string]bool{
	"order_id":    true,
	"customer_id": true,
	"product_id":  true,
}

func analyzeFieldQuality(values []string, field string, fieldType schema.FieldType) FieldStats {
	stats := FieldStats{TotalRows: len(values)}

	unique := make(map[string]bool)
	var nonEmpty []string
	for _, v := range values {
		if v == "" {
			stats.NullCount++
			continue
		}
		unique[v] = true
		nonEmpty = append(nonEmpty, v)
	}
	stats.UniqueCount = len(unique)
	if stats.TotalRows > 0 {
		stats.NullPercentage = float64(stats.NullCount) / float64(stats.TotalRows) * 100
	}
	for i := 0; i < len(nonEmpty) && i < 5; i++ {
		stats.SampleValues = append(stats.SampleValues, nonEmpty[i])
	}

	quality := 1.0
	switch {
	case stats.NullPercentage > 50:
		quality *= 0.5
	case stats.NullPercentage > 20:
		quality *= 0.8
	}

	probe := nonEmpty
	if len(probe) > fieldQualitySample {
		probe = probe[:fieldQualitySample]
	}
	switch {
	case fieldType.IsNumeric():
		for _, v := range probe {
			if _, ok := table.ParseDecimal(v); !ok {
				quality *= 0.7
				break
			}
		}
	case fieldType == schema.TypeDatetime:
		for _, v := range probe {
			if _, ok := table.ParseDate(v); !ok {
				quality *= 0.7
				break
			}
		}
	}

	if uniqueIDFields[field] && len(nonEmpty) > 0 {
		if float64(stats.UniqueCount)/float64(len(nonEmpty)) < 0.8 {
			quality *= 0.8
		}
	}

	if quality < 0 {
		quality = 0
	}
	if quality > 1 {
		quality = 1
	}
	stats.QualityScore = quality
	return stats
}
