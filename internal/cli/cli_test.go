package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnetunits/internal/metadata"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

const pupitreJSON = `{
  "format_name": "pupitre",
  "fields": [
    {"name": "Field", "field_type": "magnetic_field", "unit": "tesla", "symbol": "B", "latex_symbol": "$B$"},
    {"name": "Tin", "field_type": "temperature", "unit": "celsius", "exclude_regions": ["Air"]},
    {"name": "Flow", "field_type": "magnetic_field", "unit": "l/s"}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLookup(t *testing.T) {
	out, err := run(t, "lookup", "E", "-o", "json")
	require.NoError(t, err)
	var d metadata.FieldDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "YoungModulus", d.Name)

	out, err = run(t, "lookup", "Bx")
	require.NoError(t, err)
	assert.Contains(t, out, "MagneticField_x")

	_, err = run(t, "lookup", "nope")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", "B", "2", "gauss")
	require.NoError(t, err)
	assert.Equal(t, "20000 G\n", out)

	_, err = run(t, "convert", "B", "two", "gauss")
	assert.ErrorContains(t, err, "invalid value")

	_, err = run(t, "convert", "B", "1", "meter")
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	out, err := run(t, "label", "B", "mT")
	require.NoError(t, err)
	assert.Equal(t, "B [mT]\n", out)

	out, err = run(t, "label", "B", "--latex")
	require.NoError(t, err)
	assert.Equal(t, "$B$\n", out)
}

func TestList(t *testing.T) {
	out, err := run(t, "list", "--category", "thermal", "--where", `"Air" in exclude_regions`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "Temperature"))
	assert.True(t, strings.HasPrefix(lines[2], "ThermalConductivity"))

	_, err = run(t, "list", "--where", "name +")
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	domain := string(metadata.TypeMagneticField.Domain())
	out, err := run(t, "types", "--domain", domain, "-o", "json")
	require.NoError(t, err)

	var types []metadata.FieldTypeDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.NotEmpty(t, types)
	for _, ft := range types {
		assert.Equal(t, domain, ft.Domain)
	}

	out, err = run(t, "types", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "key: magnetic_field")
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "pupitre.json", pupitreJSON)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Format: pupitre")
	assert.Contains(t, out, "warning: field 'Flow'")

	_, err = run(t, "inspect", path, "--strict")
	assert.ErrorContains(t, err, "1 warning(s)")

	_, err = run(t, "inspect", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMagnetrun(t *testing.T) {
	path := writeFile(t, "pupitre.json", pupitreJSON)

	out, err := run(t, "magnetrun", path, "-o", "json")
	require.NoError(t, err)
	var dict map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dict))
	require.Contains(t, dict, "Field")
	assert.Equal(t, "B", dict["Field"]["Symbol"])
	assert.Equal(t, []any{"Air"}, dict["Tin"]["Exclude"])

	_, err = run(t, "magnetrun", path, "--distance-unit", "second")
	assert.Error(t, err)

	out, err = run(t, "magnetrun", path)
	require.NoError(t, err)
	assert.Contains(t, out, "FIELD")
}

func TestConfigFileUnits(t *testing.T) {
	cfg := writeFile(t, "fieldctl.yaml", "output: json\nunits:\n  - furlong = 201.168 * meter = fur\n")

	out, err := run(t, "--config", cfg, "convert", "Displacement", "201.168", "fur")
	require.NoError(t, err)
	var res conversion
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "1", res.Value.String())
	assert.Equal(t, "Displacement", res.Field)
}

func TestCatalogFlag(t *testing.T) {
	out, err := run(t, "--catalog", "materials", "lookup", "nu", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "PoissonRatio"`)

	_, err = run(t, "--catalog", "optics", "types")
	assert.Error(t, err)
}

func TestUnknownOutput(t *testing.T) {
	_, err := run(t, "types", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}
