package magnetrun

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
)

func newField(t *testing.T, sys *units.System, cfg metadata.FieldConfig) *metadata.Field {
	t.Helper()
	f, err := metadata.NewField(sys, cfg)
	require.NoError(t, err)
	return f
}

func TestFieldToDict(t *testing.T) {
	sys := units.NewSystem()
	def := 4.2
	b := newField(t, sys, metadata.FieldConfig{
		Name: "MagneticField", Symbol: "B", Unit: "tesla", LatexSymbol: "$B$",
		ExcludeRegions: []string{"Air"}, DefaultValue: &def,
	})

	e, err := FieldToDict(b, nil, "gauss")
	require.NoError(t, err)
	assert.Equal(t, "B", e.Symbol)
	assert.Equal(t, "$B$", e.MSymbol)
	assert.Equal(t, "tesla", e.Units.Input().String())
	assert.Equal(t, "Gauss", e.Units.Output().String())
	assert.Equal(t, []string{"Air"}, e.Exclude)
	require.NotNil(t, e.Val)
	assert.Equal(t, 4.2, *e.Val)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Symbol":"B","mSymbol":"$B$","Units":["tesla","Gauss"],"Exclude":["Air"],"Val":4.2}`, string(raw))
}

func TestFieldToDict_OptionalKeysOmitted(t *testing.T) {
	sys := units.NewSystem()
	v := newField(t, sys, metadata.FieldConfig{Name: "Velocity", Symbol: "v", Unit: "meter / second"})

	e, err := FieldToDict(v, "", "")
	require.NoError(t, err)
	assert.Empty(t, e.MSymbol, "latex symbol defaults to the symbol")
	assert.Nil(t, e.Val)
	assert.True(t, e.Units.Input().Equal(v.Unit()))
	assert.True(t, e.Units.Output().Equal(v.Unit()))

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Symbol":"v","Units":["meter / second","meter / second"],"Exclude":[]}`, string(raw))

	_, err = FieldToDict(v, "furlong", nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeUndefinedUnit))

	_, err = FieldToDict(nil, nil, nil)
	assert.Error(t, err)
}

func TestFieldUnitsDict(t *testing.T) {
	sys := units.NewSystem()
	fields := []*metadata.Field{
		newField(t, sys, metadata.FieldConfig{Name: "MagneticField", Symbol: "B", Unit: "tesla"}),
		newField(t, sys, metadata.FieldConfig{Name: "Temperature", Symbol: "T", Unit: "kelvin", ExcludeRegions: []string{"Air"}}),
	}

	dict, err := FieldUnitsDict(sys, fields, "")
	require.NoError(t, err)
	require.Len(t, dict, 2)
	assert.Equal(t, "T", dict["Temperature"].Symbol)
	assert.Equal(t, []string{"Air"}, dict["Temperature"].Exclude)

	_, err = FieldUnitsDict(sys, fields, "millimeter")
	assert.NoError(t, err)

	_, err = FieldUnitsDict(sys, fields, "second")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestConvertData(t *testing.T) {
	sys := units.NewSystem()
	pairs, err := ParsePairs(sys, map[string][2]string{
		"MagneticField": {"tesla", "gauss"},
		"Temperature":   {"kelvin", "degC"},
		"Length":        {"meter", "second"},
	})
	require.NoError(t, err)

	out, err := ConvertData(pairs, []float64{1, 2}, "MagneticField")
	require.NoError(t, err)
	assert.Equal(t, []float64{10000, 20000}, out)

	v, err := ConvertValue(pairs, 1.5, "MagneticField")
	require.NoError(t, err)
	assert.InDelta(t, 15000.0, v, 1e-9)

	v, err = ConvertValue(pairs, 273.15, "Temperature")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	// unknown fields pass through untouched
	in := []float64{3, 4}
	out, err = ConvertData(pairs, in, "Unknown")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ConvertData(pairs, []float64{1}, "Length")
	assert.True(t, apperror.HasCode(err, apperror.CodeDimensionality))

	_, err = ParsePairs(sys, map[string][2]string{"x": {"bogus", "meter"}})
	assert.True(t, apperror.HasCode(err, apperror.CodeUndefinedUnit))
}

func TestPairsFromDict(t *testing.T) {
	sys := units.NewSystem()
	b := newField(t, sys, metadata.FieldConfig{Name: "MagneticField", Symbol: "B", Unit: "tesla"})
	e, err := FieldToDict(b, nil, "millitesla")
	require.NoError(t, err)

	pairs := Pairs(map[string]Entry{"MagneticField": e})
	v, err := ConvertValue(pairs, 1.5, "MagneticField")
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, v, 1e-9)
}
