package format

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
	"magnetunits/pkg/logger"
)

func newTestLoader(t *testing.T) (*Loader, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	return NewLoader(units.NewSystem(), logger.FromZap(zap.New(core))), logs
}

const pupitreJSON = `{
  "format_name": "pupitre",
  "metadata": {
    "description": "Control desk export",
    "file_extension": ".txt",
    "delimiter": "\t",
    "header_row": true,
    "encoding": "utf-8",
    "skip_rows": 0
  },
  "fields": [
    {"name": "Field", "field_type": "magnetic_field", "unit": "tesla", "symbol": "B_res",
     "description": "Resulting field", "latex_symbol": "$B_{res}$", "aliases": ["B_total"]},
    {"name": "Tin1", "field_type": "temperature", "unit": "celsius", "symbol": "T_in1"},
    {"name": "Flow1", "field_type": "flow_rate", "unit": "l/min", "symbol": "Q1"},
    {"name": "Icoil1", "field_type": "current", "unit": "A"},
    {"name": "Rpm", "field_type": "rotation_speed", "unit": "rpm"}
  ]
}`

func TestLoader_FromJSON(t *testing.T) {
	l, logs := newTestLoader(t)

	def, err := l.FromJSON(context.Background(), []byte(pupitreJSON))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
	assert.Empty(t, def.Warnings())

	assert.Equal(t, "pupitre", def.Name())
	assert.Equal(t, 5, def.Len())
	assert.Equal(t, []string{"Field", "Tin1", "Flow1", "Icoil1", "Rpm"}, def.ColumnNames())
	assert.Equal(t, "\t", def.Metadata().Delimiter)
	assert.Nil(t, def.Metadata().CommentChar)

	b, ok := def.GetField("Field")
	require.True(t, ok)
	assert.Equal(t, "B_res", b.Symbol())
	assert.Equal(t, metadata.TypeMagneticField, b.FieldType())
	got, err := b.Convert(1.5, "Gauss")
	require.NoError(t, err)
	assert.InDelta(t, 15000.0, got, 1e-9)

	tin, ok := def.GetFieldBySymbol("T_in1")
	require.True(t, ok)
	assert.Equal(t, "°C", tin.Unit().Pretty())

	viaAlias, ok := def.GetFieldBySymbol("B_total")
	require.True(t, ok)
	assert.Same(t, b, viaAlias)

	icoil, _ := def.GetField("Icoil1")
	assert.Equal(t, "Icoil1", icoil.Symbol(), "symbol defaults to column name")
	assert.Equal(t, "ampere", icoil.Unit().String())

	assert.Len(t, def.ListFieldsByType(metadata.TypeTemperature), 1)
	assert.True(t, def.HasColumn("Flow1"))
	assert.False(t, def.HasColumn("flow1"))
	assert.Equal(t, `FormatDefinition(name="pupitre", fields=5)`, def.String())
}

func TestLoader_Defaults(t *testing.T) {
	l, _ := newTestLoader(t)

	def, err := l.FromMap(context.Background(), map[string]any{
		"fields": []any{map[string]any{"name": "ratio"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "unknown", def.Name())
	assert.Equal(t, DefaultMetadata(), def.Metadata())

	f, ok := def.GetField("ratio")
	require.True(t, ok)
	assert.True(t, f.Unit().IsDimensionless())
	assert.Equal(t, "ratio", f.Symbol())
	assert.Equal(t, DefaultUnit, def.Definitions()[0].Unit)
}

func TestLoader_MetadataPartialDefaults(t *testing.T) {
	l, _ := newTestLoader(t)

	def, err := l.FromYAML(context.Background(), []byte(`
format_name: csvdump
metadata:
  delimiter: ","
  comment_char: "#"
fields: []
`))
	require.NoError(t, err)

	m := def.Metadata()
	assert.Equal(t, ",", m.Delimiter)
	assert.Equal(t, ".txt", m.FileExtension)
	assert.True(t, m.HeaderRow)
	assert.Equal(t, "utf-8", m.Encoding)
	require.NotNil(t, m.CommentChar)
	assert.Equal(t, "#", *m.CommentChar)
	assert.Zero(t, def.Len())
}

func TestLoader_ToField_IncompatibleTypeWarnsOnce(t *testing.T) {
	l, logs := newTestLoader(t)

	f, err := l.ToField(context.Background(), FieldDefinition{Name: "B", Unit: "meter", FieldType: "magnetic_field"})
	require.NoError(t, err)
	assert.Equal(t, metadata.TypeNone, f.FieldType())
	assert.Equal(t, "meter", f.Unit().String())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "incompatible")
	assert.Equal(t, "magnetic_field", entry.ContextMap()["field_type"])
}

func TestLoader_ToField(t *testing.T) {
	l, logs := newTestLoader(t)
	ctx := context.Background()

	f, err := l.ToField(ctx, FieldDefinition{Name: "P_in", Unit: "bar", FieldType: "pressure",
		Aliases: []string{"Pin"}, ExcludeRegions: []string{"Air"}})
	require.NoError(t, err)
	assert.Equal(t, metadata.TypePressure, f.FieldType())
	assert.Equal(t, []string{"Pin"}, f.Aliases())
	assert.False(t, f.AppliesToRegion("Air"))

	// unknown type strings leave the field untyped without a warning
	f, err = l.ToField(ctx, FieldDefinition{Name: "X", Unit: "m", FieldType: "not_a_type"})
	require.NoError(t, err)
	assert.False(t, f.HasType())
	assert.Zero(t, logs.Len())

	_, err = l.ToField(ctx, FieldDefinition{Name: "Y", Unit: "blorp"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUndefinedUnit))
}

func TestLoader_EndToEnd_DowngradedType(t *testing.T) {
	l, logs := newTestLoader(t)

	def, err := l.FromMap(context.Background(), map[string]any{
		"format_name": "mixed",
		"fields": []any{
			map[string]any{"name": "Bz", "field_type": "magnetic_field", "unit": "tesla"},
			map[string]any{"name": "Tout", "field_type": "temperature", "unit": "meter"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, def.Len())
	assert.Empty(t, def.ListFieldsByType(metadata.TypeTemperature))
	assert.Len(t, def.ListFieldsByType(metadata.TypeMagneticField), 1)
	assert.Equal(t, 1, logs.Len())
	require.Len(t, def.Warnings(), 1)
	assert.Contains(t, def.Warnings()[0], "Tout")
}

func TestLoader_SkipsBrokenFields(t *testing.T) {
	l, logs := newTestLoader(t)

	def, err := l.FromJSON(context.Background(), []byte(`{
	  "format_name": "partial",
	  "fields": [
	    {"name": "good", "unit": "m"},
	    {"name": "bad", "unit": "furlongs_per_fortnight"},
	    {"name": "also_good", "unit": "s"}
	  ]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 2, def.Len())
	assert.Equal(t, []string{"good", "also_good"}, def.ColumnNames())
	assert.Len(t, def.Definitions(), 3)
	require.Len(t, def.Warnings(), 1)
	assert.Contains(t, def.Warnings()[0], "could not create field 'bad'")
	assert.Equal(t, 1, logs.Len())
}

func TestLoader_DecodeErrors(t *testing.T) {
	l, _ := newTestLoader(t)
	ctx := context.Background()

	_, err := l.FromJSON(ctx, []byte(`{"fields": [`))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = l.FromYAML(ctx, []byte("fields: [unclosed"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = l.FromJSON(ctx, []byte(`{"fields": [{"unit": "m"}]}`))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = DecodeDocument([]byte(`{}`), Encoding("toml"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLoader_LoadFile(t *testing.T) {
	l, _ := newTestLoader(t)
	ctx := context.Background()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "pupitre.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(pupitreJSON), 0o644))
	def, err := l.LoadFile(ctx, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 5, def.Len())

	// the YAML rendering of a document loads back to the same columns
	out, err := yaml.Marshal(def.Document())
	require.NoError(t, err)
	yamlPath := filepath.Join(dir, "pupitre.yml")
	require.NoError(t, os.WriteFile(yamlPath, out, 0o644))
	again, err := l.LoadFile(ctx, yamlPath)
	require.NoError(t, err)
	assert.Equal(t, def.ColumnNames(), again.ColumnNames())
	assert.Equal(t, def.Metadata(), again.Metadata())

	_, err = l.LoadFile(ctx, filepath.Join(dir, "missing.json"))
	assert.True(t, apperror.IsNotFound(err))

	_, err = l.LoadFile(ctx, filepath.Join(dir, "notes.txt"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestFormatDefinition_Document(t *testing.T) {
	l, _ := newTestLoader(t)

	def, err := l.FromJSON(context.Background(), []byte(pupitreJSON))
	require.NoError(t, err)

	b, err := json.Marshal(def.Document())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "pupitre", m["format_name"])
	meta := m["metadata"].(map[string]any)
	assert.Equal(t, "\t", meta["delimiter"])
	assert.Nil(t, meta["comment_char"])
	fields := m["fields"].([]any)
	require.Len(t, fields, 5)
	first := fields[0].(map[string]any)
	assert.Equal(t, "Field", first["name"])
	assert.Equal(t, "magnetic_field", first["field_type"])
	assert.Equal(t, "tesla", first["unit"])
}

func TestFormatDefinition_Summary(t *testing.T) {
	l, _ := newTestLoader(t)

	def, err := l.FromMap(context.Background(), map[string]any{
		"format_name": "s",
		"fields": []any{
			map[string]any{"name": "B", "field_type": "magnetic_field", "unit": "T"},
			map[string]any{"name": "n", "unit": "dimensionless"},
			map[string]any{"name": "I", "field_type": "current", "unit": "A"},
		},
	})
	require.NoError(t, err)

	s := def.Summary()
	assert.Contains(t, s, "Format: s")
	assert.Contains(t, s, "Fields: 3")
	assert.Contains(t, s, `Delimiter: "\t"`)
	iCurrent := strings.Index(s, "CURRENT:")
	iMagnetic := strings.Index(s, "MAGNETIC_FIELD:")
	iUntyped := strings.Index(s, "untyped:")
	assert.True(t, iCurrent < iMagnetic && iMagnetic < iUntyped, s)
	assert.Contains(t, s, "    - B (B): tesla")
}

func TestNormalizeUnit(t *testing.T) {
	assert.Equal(t, "degC", NormalizeUnit("celsius"))
	assert.Equal(t, "pascal", NormalizeUnit("Pa"))
	assert.Equal(t, "ampere", NormalizeUnit("A"))
	assert.Equal(t, "meter**3/hour", NormalizeUnit("m3/h"))
	assert.Equal(t, "furlong", NormalizeUnit("furlong"))

	sys := units.NewSystem()
	for from, to := range UnitAliases {
		_, err := sys.Parse(to)
		assert.NoError(t, err, "alias %q -> %q must parse", from, to)
	}
}
