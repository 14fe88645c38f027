// Package format builds named field collections from declarative data-file
// descriptions (JSON or YAML) and binds them to column names.
package format

import (
	"fmt"
	"sort"
	"strings"

	"magnetunits/internal/metadata"
)

// DefaultUnit is used when a field description omits its unit.
const DefaultUnit = "dimensionless"

// FieldDefinition is one entry of a description's "fields" list.
type FieldDefinition struct {
	Name           string   `json:"name" yaml:"name"`
	FieldType      string   `json:"field_type,omitempty" yaml:"field_type,omitempty"`
	Unit           string   `json:"unit" yaml:"unit"`
	Symbol         string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	LatexSymbol    string   `json:"latex_symbol,omitempty" yaml:"latex_symbol,omitempty"`
	Aliases        []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	ExcludeRegions []string `json:"exclude_regions,omitempty" yaml:"exclude_regions,omitempty"`
}

// Metadata describes the layout of the data file.
type Metadata struct {
	Description   string  `json:"description" yaml:"description"`
	FileExtension string  `json:"file_extension" yaml:"file_extension"`
	Delimiter     string  `json:"delimiter" yaml:"delimiter"`
	HeaderRow     bool    `json:"header_row" yaml:"header_row"`
	Encoding      string  `json:"encoding" yaml:"encoding"`
	SkipRows      int     `json:"skip_rows" yaml:"skip_rows"`
	CommentChar   *string `json:"comment_char" yaml:"comment_char"`
}

// DefaultMetadata returns the layout assumed for keys a description omits.
func DefaultMetadata() Metadata {
	return Metadata{
		FileExtension: ".txt",
		Delimiter:     "\t",
		HeaderRow:     true,
		Encoding:      "utf-8",
	}
}

// Document is the structural form of a format description.
type Document struct {
	FormatName string            `json:"format_name" yaml:"format_name"`
	Metadata   Metadata          `json:"metadata" yaml:"metadata"`
	Fields     []FieldDefinition `json:"fields" yaml:"fields"`
}

// FormatDefinition is a named set of fields keyed by data-file column.
// Fields that failed to build are absent; Warnings records why.
type FormatDefinition struct {
	name     string
	meta     Metadata
	defs     []FieldDefinition
	columns  []string
	fields   map[string]*metadata.Field
	registry *metadata.Registry
	warnings []string
}

func (d *FormatDefinition) Name() string { return d.name }
func (d *FormatDefinition) Metadata() Metadata { return d.meta }
func (d *FormatDefinition) Registry() *metadata.Registry { return d.registry }
func (d *FormatDefinition) Len() int { return len(d.fields) }
func (d *FormatDefinition) Warnings() []string { return append([]string(nil), d.warnings...) }
func (d *FormatDefinition) Definitions() []FieldDefinition { return append([]FieldDefinition(nil), d.defs...) }

// ColumnNames returns the columns that produced a field, in description order.
func (d *FormatDefinition) ColumnNames() []string {
	return append([]string(nil), d.columns...)
}

// Fields returns the built fields in column order.
func (d *FormatDefinition) Fields() []*metadata.Field {
	out := make([]*metadata.Field, 0, len(d.columns))
	for _, c := range d.columns {
		out = append(out, d.fields[c])
	}
	return out
}

func (d *FormatDefinition) HasColumn(column string) bool {
	_, ok := d.fields[column]
	return ok
}

// GetField looks a field up by column name.
func (d *FormatDefinition) GetField(column string) (*metadata.Field, bool) {
	f, ok := d.fields[column]
	return f, ok
}

// GetFieldBySymbol resolves through the internal registry (name, symbol, then alias).
func (d *FormatDefinition) GetFieldBySymbol(symbol string) (*metadata.Field, bool) {
	return d.registry.Get(symbol)
}

// ListFieldsByType filters fields by exact field type.
func (d *FormatDefinition) ListFieldsByType(ft metadata.FieldType) []*metadata.Field {
	var out []*metadata.Field
	for _, f := range d.Fields() {
		if f.FieldType() == ft {
			out = append(out, f)
		}
	}
	return out
}

// Document returns the structural form, suitable for JSON or YAML encoding.
func (d *FormatDefinition) Document() Document {
	return Document{
		FormatName: d.name,
		Metadata:   d.meta,
		Fields:     d.Definitions(),
	}
}

func (d *FormatDefinition) String() string {
	return fmt.Sprintf("FormatDefinition(name=%q, fields=%d)", d.name, len(d.fields))
}

// Summary renders a human-readable overview with fields grouped by type.
func (d *FormatDefinition) Summary() string {
	lines := []string{
		"Format: " + d.name,
		"Description: " + d.meta.Description,
		"File extension: " + d.meta.FileExtension,
		fmt.Sprintf("Delimiter: %q", d.meta.Delimiter),
		fmt.Sprintf("Fields: %d", len(d.fields)),
		"",
		"Field list:",
	}

	byType := map[string][]*metadata.Field{}
	for _, f := range d.Fields() {
		key := "untyped"
		if f.HasType() {
			key = f.FieldType().EnumName()
		}
		byType[key] = append(byType[key], f)
	}
	keys := make([]string, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		lines = append(lines, "  "+k+":")
		for _, f := range byType[k] {
			lines = append(lines, fmt.Sprintf("    - %s (%s): %s", f.Name(), f.Symbol(), f.Unit().String()))
		}
	}
	return strings.Join(lines, "\n")
}
