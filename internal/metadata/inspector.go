package metadata

// FieldDescriptor is the serializable view of a Field.
type FieldDescriptor struct {
	Name           string         `json:"name" yaml:"name"`
	Symbol         string         `json:"symbol" yaml:"symbol"`
	LatexSymbol    string         `json:"latexSymbol,omitempty" yaml:"latex_symbol,omitempty"`
	Unit           string         `json:"unit" yaml:"unit"`
	UnitSymbol     string         `json:"unitSymbol" yaml:"unit_symbol"`
	Dimension      string         `json:"dimension" yaml:"dimension"`
	FieldType      string         `json:"fieldType,omitempty" yaml:"field_type,omitempty"`
	Domain         string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category       string         `json:"category,omitempty" yaml:"category,omitempty"`
	Aliases        []string       `json:"aliases" yaml:"aliases"`
	ExcludeRegions []string       `json:"excludeRegions,omitempty" yaml:"exclude_regions,omitempty"`
	DefaultValue   *float64       `json:"defaultValue,omitempty" yaml:"default_value,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Inspect returns the descriptor of f.
func Inspect(f *Field) FieldDescriptor {
	d := FieldDescriptor{
		Name:           f.name,
		Symbol:         f.symbol,
		LatexSymbol:    f.latexSymbol,
		Unit:           f.unit.String(),
		UnitSymbol:     f.unit.Pretty(),
		Dimension:      f.unit.Dimension().String(),
		Description:    f.description,
		Category:       f.Category(),
		Aliases:        f.Aliases(),
		ExcludeRegions: f.ExcludeRegions(),
		Metadata:       f.Metadata(),
	}
	if f.fieldType != TypeNone {
		d.FieldType = string(f.fieldType)
		d.Domain = string(f.fieldType.Domain())
	}
	if v, ok := f.DefaultValue(); ok {
		d.DefaultValue = &v
	}
	if len(d.Metadata) == 0 {
		d.Metadata = nil
	}
	return d
}

// InspectAll maps Inspect over fields, preserving order.
func InspectAll(fields []*Field) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		out = append(out, Inspect(f))
	}
	return out
}

// FieldTypeDescriptor is the serializable view of a taxonomy entry.
type FieldTypeDescriptor struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Domain      string `json:"domain" yaml:"domain"`
	DefaultUnit string `json:"defaultUnit" yaml:"default_unit"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	LatexSymbol string `json:"latexSymbol" yaml:"latex_symbol"`
}

// InspectTypes describes every field type in declaration order.
func InspectTypes() []FieldTypeDescriptor {
	out := make([]FieldTypeDescriptor, 0, len(fieldTypes))
	for _, ft := range fieldTypes {
		info := fieldTypeTable[ft]
		out = append(out, FieldTypeDescriptor{
			Key:         string(ft),
			Name:        ft.EnumName(),
			Domain:      string(info.domain),
			DefaultUnit: info.unit,
			Symbol:      info.symbol,
			LatexSymbol: info.latex,
		})
	}
	return out
}
