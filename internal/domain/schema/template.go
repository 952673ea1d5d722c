package schema

import "github.com/commercelens/backend/internal/domain/shared"

// PlatformTemplate describes one e-commerce platform's export format.
// Templates are flat, independent records; shared definitions come in
// by composition (merged default field set), never by inheritance.
type PlatformTemplate struct {
	ID             string            `json:"id"`
	DisplayName    string            `json:"display_name"`
	Language       string            `json:"language"`
	Currency       string            `json:"currency"`
	DateFormatHint string            `json:"date_format_hint,omitempty"`
	CoreFields     []FieldDefinition `json:"core_fields"`
	OptionalFields []FieldDefinition `json:"optional_fields"`
}

// validate checks template integrity at load time: non-empty id,
// canonical names unique across core and optional fields, and every
// definition individually valid.
func (t *PlatformTemplate) validate() error {
	if t.ID == "" {
		return shared.NewSchemaError("platform template has no id")
	}

	seen := make(map[string]bool, len(t.CoreFields)+len(t.OptionalFields))
	for _, group := range [][]FieldDefinition{t.CoreFields, t.OptionalFields} {
		for i := range group {
			def := &group[i]
			if err := def.validate(); err != nil {
				return err
			}
			if seen[def.Name] {
				return shared.NewSchemaError("platform %q declares field %q twice", t.ID, def.Name)
			}
			seen[def.Name] = true
		}
	}
	return nil
}

// AllFields returns core fields followed by optional fields.
func (t *PlatformTemplate) AllFields() []FieldDefinition {
	out := make([]FieldDefinition, 0, len(t.CoreFields)+len(t.OptionalFields))
	out = append(out, t.CoreFields...)
	out = append(out, t.OptionalFields...)
	return out
}

// Field looks up a definition by canonical name.
func (t *PlatformTemplate) Field(name string) (FieldDefinition, bool) {
	for _, def := range t.AllFields() {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDefinition{}, false
}

// fieldRef returns a mutable pointer into the template's field slices,
// or nil when the name is unknown.
func (t *PlatformTemplate) fieldRef(name string) *FieldDefinition {
	for i := range t.CoreFields {
		if t.CoreFields[i].Name == name {
			return &t.CoreFields[i]
		}
	}
	for i := range t.OptionalFields {
		if t.OptionalFields[i].Name == name {
			return &t.OptionalFields[i]
		}
	}
	return nil
}

// RequiredFields returns the required canonical field names.
func (t *PlatformTemplate) RequiredFields() []string {
	var names []string
	for _, def := range t.AllFields() {
		if def.Required {
			names = append(names, def.Name)
		}
	}
	return names
}

// OptionalFieldNames returns the non-required canonical field names.
func (t *PlatformTemplate) OptionalFieldNames() []string {
	var names []string
	for _, def := range t.AllFields() {
		if !def.Required {
			names = append(names, def.Name)
		}
	}
	return names
}

// clone deep-copies the template.
func (t *PlatformTemplate) clone() *PlatformTemplate {
	out := *t
	out.CoreFields = make([]FieldDefinition, len(t.CoreFields))
	for i, def := range t.CoreFields {
		out.CoreFields[i] = def.clone()
	}
	out.OptionalFields = make([]FieldDefinition, len(t.OptionalFields))
	for i, def := range t.OptionalFields {
		out.OptionalFields[i] = def.clone()
	}
	return &out
}
