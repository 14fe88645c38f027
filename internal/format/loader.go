package format

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
	"magnetunits/pkg/logger"
)

var tracer = otel.Tracer("magnetunits/format")

// Encoding names a description syntax.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// EncodingForPath picks the encoding from a file extension.
func EncodingForPath(path string) (Encoding, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON, true
	case ".yaml", ".yml":
		return EncodingYAML, true
	default:
		return "", false
	}
}

// Loader turns descriptions into FormatDefinitions. Loading is best effort:
// a bad field is skipped or downgraded with a warning, never fatal for the format.
type Loader struct {
	units *units.System
	log   *logger.Logger
}

func NewLoader(sys *units.System, log *logger.Logger) *Loader {
	if sys == nil {
		sys = units.Default()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Loader{units: sys, log: log.WithComponent("format_loader")}
}

// Units returns the unit system fields are built against.
func (l *Loader) Units() *units.System { return l.units }

type warnFunc func(msg string, keysAndValues ...any)

// ToField converts one definition. A type the unit does not fit is dropped
// with a warning and the field is built untyped.
func (l *Loader) ToField(ctx context.Context, def FieldDefinition) (*metadata.Field, error) {
	log := l.log.WithContext(ctx)
	return l.toField(ctx, def, log.Warnw)
}

func (l *Loader) toField(ctx context.Context, def FieldDefinition, warn warnFunc) (*metadata.Field, error) {
	ft := metadata.TypeNone
	if def.FieldType != "" {
		parsed, err := metadata.ParseFieldType(def.FieldType)
		if err != nil {
			l.log.WithContext(ctx).Debugw("unknown field type ignored", "field", def.Name, "field_type", def.FieldType)
		} else {
			ft = parsed
		}
	}

	unitExpr := def.Unit
	if unitExpr == "" {
		unitExpr = DefaultUnit
	}
	unitExpr = NormalizeUnit(unitExpr)

	symbol := def.Symbol
	if symbol == "" {
		symbol = def.Name
	}

	if ft != metadata.TypeNone && !ft.IsCompatible(l.units, unitExpr) {
		warn(fmt.Sprintf("field '%s': unit '%s' incompatible with field_type '%s', creating without type validation",
			def.Name, unitExpr, def.FieldType),
			"field", def.Name, "unit", unitExpr, "field_type", def.FieldType)
		ft = metadata.TypeNone
	}

	return metadata.NewField(l.units, metadata.FieldConfig{
		Name:           def.Name,
		Symbol:         symbol,
		Unit:           unitExpr,
		FieldType:      ft,
		Description:    def.Description,
		LatexSymbol:    def.LatexSymbol,
		Aliases:        def.Aliases,
		ExcludeRegions: def.ExcludeRegions,
	})
}

// NewFormat builds every definition, registering the fields that succeed.
func (l *Loader) NewFormat(ctx context.Context, name string, meta Metadata, defs []FieldDefinition) *FormatDefinition {
	d := &FormatDefinition{
		name:     name,
		meta:     meta,
		defs:     append([]FieldDefinition(nil), defs...),
		fields:   make(map[string]*metadata.Field, len(defs)),
		registry: metadata.NewRegistry(),
	}
	log := l.log.WithContext(ctx).With("format", name)
	warn := func(msg string, keysAndValues ...any) {
		d.warnings = append(d.warnings, msg)
		log.Warnw(msg, keysAndValues...)
	}

	for _, def := range d.defs {
		f, err := l.toField(ctx, def, warn)
		if err != nil {
			warn(fmt.Sprintf("could not create field '%s': %v", def.Name, err), "field", def.Name, "error", err)
			continue
		}
		if _, seen := d.fields[def.Name]; !seen {
			d.columns = append(d.columns, def.Name)
		}
		d.fields[def.Name] = f
		// overwrite policy never fails
		_ = d.registry.Register(f)
	}

	log.Debugw("format built", "fields", len(d.fields), "warnings", len(d.warnings))
	return d
}

// FromDocument builds a format from its structural form.
func (l *Loader) FromDocument(ctx context.Context, doc Document) *FormatDefinition {
	return l.NewFormat(ctx, doc.FormatName, doc.Metadata, doc.Fields)
}

// rawDocument mirrors Document with pointers so omitted keys take defaults.
type rawDocument struct {
	FormatName *string      `json:"format_name" yaml:"format_name"`
	Metadata   *rawMetadata `json:"metadata" yaml:"metadata"`
	Fields     []rawField   `json:"fields" yaml:"fields"`
}

type rawMetadata struct {
	Description   *string `json:"description" yaml:"description"`
	FileExtension *string `json:"file_extension" yaml:"file_extension"`
	Delimiter     *string `json:"delimiter" yaml:"delimiter"`
	HeaderRow     *bool   `json:"header_row" yaml:"header_row"`
	Encoding      *string `json:"encoding" yaml:"encoding"`
	SkipRows      *int    `json:"skip_rows" yaml:"skip_rows"`
	CommentChar   *string `json:"comment_char" yaml:"comment_char"`
}

type rawField struct {
	Name           *string  `json:"name" yaml:"name"`
	FieldType      *string  `json:"field_type" yaml:"field_type"`
	Unit           *string  `json:"unit" yaml:"unit"`
	Symbol         *string  `json:"symbol" yaml:"symbol"`
	Description    *string  `json:"description" yaml:"description"`
	LatexSymbol    *string  `json:"latex_symbol" yaml:"latex_symbol"`
	Aliases        []string `json:"aliases" yaml:"aliases"`
	ExcludeRegions []string `json:"exclude_regions" yaml:"exclude_regions"`
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (r rawDocument) document() (Document, error) {
	doc := Document{
		FormatName: deref(r.FormatName, "unknown"),
		Metadata:   DefaultMetadata(),
		Fields:     make([]FieldDefinition, 0, len(r.Fields)),
	}
	if m := r.Metadata; m != nil {
		doc.Metadata = Metadata{
			Description:   deref(m.Description, ""),
			FileExtension: deref(m.FileExtension, doc.Metadata.FileExtension),
			Delimiter:     deref(m.Delimiter, doc.Metadata.Delimiter),
			HeaderRow:     deref(m.HeaderRow, doc.Metadata.HeaderRow),
			Encoding:      deref(m.Encoding, doc.Metadata.Encoding),
			SkipRows:      deref(m.SkipRows, 0),
			CommentChar:   m.CommentChar,
		}
	}
	for i, f := range r.Fields {
		if f.Name == nil || *f.Name == "" {
			return Document{}, apperror.NewValidation(fmt.Sprintf("fields[%d]: name is required", i)).
				WithDetail("index", i)
		}
		doc.Fields = append(doc.Fields, FieldDefinition{
			Name:           *f.Name,
			FieldType:      deref(f.FieldType, ""),
			Unit:           deref(f.Unit, DefaultUnit),
			Symbol:         deref(f.Symbol, ""),
			Description:    deref(f.Description, ""),
			LatexSymbol:    deref(f.LatexSymbol, ""),
			Aliases:        f.Aliases,
			ExcludeRegions: f.ExcludeRegions,
		})
	}
	return doc, nil
}

// DecodeDocument parses a description, applying defaults for omitted keys.
func DecodeDocument(data []byte, enc Encoding) (Document, error) {
	var raw rawDocument
	switch enc {
	case EncodingJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return Document{}, apperror.NewValidation("invalid JSON format description").WithCause(err)
		}
	case EncodingYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Document{}, apperror.NewValidation("invalid YAML format description").WithCause(err)
		}
	default:
		return Document{}, apperror.NewValidation(fmt.Sprintf("unsupported encoding '%s'", enc))
	}
	return raw.document()
}

// FromMap builds a format from an already decoded description.
func (l *Loader) FromMap(ctx context.Context, data map[string]any) (*FormatDefinition, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, apperror.NewValidation("format description is not serializable").WithCause(err)
	}
	return l.FromJSON(ctx, b)
}

func (l *Loader) FromJSON(ctx context.Context, data []byte) (*FormatDefinition, error) {
	return l.decode(ctx, data, EncodingJSON)
}

func (l *Loader) FromYAML(ctx context.Context, data []byte) (*FormatDefinition, error) {
	return l.decode(ctx, data, EncodingYAML)
}

func (l *Loader) decode(ctx context.Context, data []byte, enc Encoding) (*FormatDefinition, error) {
	doc, err := DecodeDocument(data, enc)
	if err != nil {
		return nil, err
	}
	return l.FromDocument(ctx, doc), nil
}

// LoadFile reads a .json, .yaml or .yml description.
func (l *Loader) LoadFile(ctx context.Context, path string) (*FormatDefinition, error) {
	ctx, span := tracer.Start(ctx, "format.LoadFile")
	defer span.End()
	span.SetAttributes(attribute.String("format.path", path))

	enc, ok := EncodingForPath(path)
	if !ok {
		err := apperror.NewValidation(fmt.Sprintf("unsupported format file extension '%s'", filepath.Ext(path))).
			WithDetail("path", path)
		span.SetStatus(codes.Error, err.Message)
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		if os.IsNotExist(err) {
			return nil, apperror.NewNotFound("format file", path).WithCause(err)
		}
		return nil, apperror.NewInternal(err).WithDetail("path", path)
	}

	def, err := l.decode(ctx, data, enc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("format.name", def.Name()),
		attribute.Int("format.fields", def.Len()),
		attribute.Int("format.warnings", len(def.warnings)),
	)
	l.log.WithContext(ctx).Infow("format loaded", "path", path, "format", def.Name(), "fields", def.Len())
	return def, nil
}
