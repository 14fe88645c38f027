package units

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"magnetunits/internal/core/apperror"
)

func TestParse_Pretty(t *testing.T) {
	sys := NewSystem()

	tests := []struct {
		expr   string
		pretty string
		long   string
	}{
		{"tesla", "T", "tesla"},
		{"volt/meter", "V/m", "volt / meter"},
		{"V/m", "V/m", "volt / meter"},
		{"ampere / meter**2", "A/m²", "ampere / meter ** 2"},
		{"watt/(meter*kelvin)", "W/(m·K)", "watt / meter / kelvin"},
		{"W/m²/K", "W/(m²·K)", "watt / meter ** 2 / kelvin"},
		{"meter**3/hour", "m³/h", "meter ** 3 / hour"},
		{"1/kelvin", "1/K", "1 / kelvin"},
		{"K^-1", "1/K", "1 / kelvin"},
		{"degC", "°C", "degree_Celsius"},
		{"celsius", "°C", "degree_Celsius"},
		{"millitesla", "mT", "millitesla"},
		{"mT", "mT", "millitesla"},
		{"MPa", "MPa", "megapascal"},
		{"megavar", "Mvar", "megavar"},
		{"kg m^-3", "kg/m³", "kilogram / meter ** 3"},
		{"kg·m⁻³", "kg/m³", "kilogram / meter ** 3"},
		{"J/(kg*K)", "J/(kg·K)", "joule / kilogram / kelvin"},
		{"gauss", "G", "Gauss"},
		{"percent", "%", "percent"},
		{"dimensionless", "", "dimensionless"},
		{"", "", "dimensionless"},
		{"meter/meter", "", "dimensionless"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			u, err := sys.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.pretty, u.Pretty())
			assert.Equal(t, tt.long, u.String())

			back, err := sys.Parse(u.String())
			require.NoError(t, err)
			assert.True(t, u.Equal(back), "long form must parse back to the same unit")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	sys := NewSystem()

	_, err := sys.Parse("invalid_unit_xyz")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUndefinedUnit))
	assert.True(t, errors.Is(err, ErrUndefinedUnit))

	for _, expr := range []string{"meter**", "(meter", "meter)", "2 meter", "meter ** 1.5", "meter $"} {
		_, err := sys.Parse(expr)
		require.Error(t, err, expr)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), expr)
	}
}

func TestParse_ExponentRange(t *testing.T) {
	sys := NewSystem()

	for _, expr := range []string{
		"meter**4611686018427387904",
		"meter**99999999999999999999",
		"(meter**4611686018427387904)**2",
		"km**30000000",
		"meter**65",
		"meter^-65",
		"(meter**8)**9",
		"meter**64 * meter",
		"1/(second**40 * second**40)",
	} {
		_, err := sys.Parse(expr)
		require.Error(t, err, expr)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), expr)
		assert.ErrorIs(t, err, ErrExponentRange, expr)
		assert.False(t, sys.AreCompatible(expr, "meter"), expr)
	}

	u, err := sys.Parse("(meter**8)**8")
	require.NoError(t, err)
	assert.Equal(t, 64, u.Dimension()[DimLength])

	u, err = sys.Parse("km**-64")
	require.NoError(t, err)
	assert.InDelta(t, 1e-192, u.Scale(), 1e-200)
}

func TestUnit_PowRange(t *testing.T) {
	m := NewSystem().MustParse("meter**32")

	_, err := m.Pow(3)
	assert.ErrorIs(t, err, ErrExponentRange)

	_, err = m.Pow(1 << 62)
	assert.ErrorIs(t, err, ErrExponentRange)

	sq, err := m.Pow(2)
	require.NoError(t, err)
	assert.Equal(t, 64, sq.Dimension()[DimLength])

	_, err = sq.Mul(m)
	assert.ErrorIs(t, err, ErrExponentRange)
}

func TestConvertValue(t *testing.T) {
	sys := NewSystem()

	tests := []struct {
		name     string
		value    float64
		from, to string
		want     float64
	}{
		{"tesla to gauss", 1, "tesla", "gauss", 10000},
		{"tesla to millitesla", 1.5, "T", "mT", 1500},
		{"meter to centimeter", 1, "meter", "centimeter", 100},
		{"kelvin to celsius", 273.15, "kelvin", "degC", 0},
		{"celsius to kelvin", 20, "degC", "kelvin", 293.15},
		{"fahrenheit to celsius", 212, "degF", "degC", 100},
		{"bar to pascal", 1, "bar", "Pa", 1e5},
		{"liter per minute to cubic meter per hour", 1000, "liter/minute", "meter**3/hour", 60},
		{"rpm to hertz", 60, "rpm", "Hz", 2 * math.Pi},
		{"percent to dimensionless", 50, "percent", "dimensionless", 0.5},
		{"megawatt to watt", 2, "MW", "W", 2e6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sys.ConvertValue(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9*math.Max(1, math.Abs(tt.want)))
		})
	}
}

func TestConvertValue_Exact(t *testing.T) {
	sys := NewSystem()

	got, err := sys.ConvertValue(1, "tesla", "gauss")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, got)

	got, err = sys.ConvertValue(273.15, "kelvin", "degC")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = sys.ConvertValue(1, "meter", "cm")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)
}

func TestConvertValue_Errors(t *testing.T) {
	sys := NewSystem()

	_, err := sys.ConvertValue(1, "tesla", "meter")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDimensionality))
	assert.True(t, errors.Is(err, ErrDimensionality))

	_, err = sys.ConvertValue(1, "degC/second", "kelvin/second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOffsetUnit))

	_, err = sys.ConvertValue(1, "nope", "meter")
	assert.True(t, errors.Is(err, ErrUndefinedUnit))
}

func TestConvertArray(t *testing.T) {
	sys := NewSystem()

	out, err := sys.ConvertArray([]float64{0, 10, 100}, "degC", "K")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.InDelta(t, 273.15, out[0], 1e-9)
	assert.InDelta(t, 283.15, out[1], 1e-9)
	assert.InDelta(t, 373.15, out[2], 1e-9)

	out, err = sys.ConvertArray(nil, "T", "mT")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = sys.ConvertArray([]float64{1}, "T", "m")
	assert.True(t, apperror.HasCode(err, apperror.CodeDimensionality))
}

func TestAreCompatible(t *testing.T) {
	sys := NewSystem()

	assert.True(t, sys.AreCompatible("tesla", "gauss"))
	assert.True(t, sys.AreCompatible("kelvin", "degC"))
	assert.True(t, sys.AreCompatible("V/m", "kV/mm"))
	assert.True(t, sys.AreCompatible("percent", "dimensionless"))
	assert.True(t, sys.AreCompatible("radian", ""))
	assert.False(t, sys.AreCompatible("tesla", "meter"))
	assert.False(t, sys.AreCompatible("tesla", "not_a_unit"))
	assert.False(t, sys.AreCompatible(42, "meter"))
}

func TestDefine(t *testing.T) {
	sys := NewSystem()

	require.NoError(t, sys.Define("furlong = 201.168 * meter = fur"))
	got, err := sys.ConvertValue(1, "fur", "m")
	require.NoError(t, err)
	assert.InDelta(t, 201.168, got, 1e-9)

	// identical redefinition is idempotent
	require.NoError(t, sys.Define("furlong = 201.168 * meter = fur"))
	require.NoError(t, sys.Define("Gauss = 1e-4 * tesla = G = gauss = Gs"))

	err = sys.Define("furlong = 200 * meter")
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	err = sys.Define("other = 2 * meter = m")
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	err = sys.Define("broken")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = sys.Define("weird = 3 * flubber")
	assert.True(t, apperror.HasCode(err, apperror.CodeUndefinedUnit))
}

func TestDefine_FlushesParseCache(t *testing.T) {
	sys := NewSystem()

	_, err := sys.Parse("smoot")
	require.Error(t, err)

	require.NoError(t, sys.Define("smoot = 1.7018 * meter"))
	u, err := sys.Parse("smoot")
	require.NoError(t, err)
	assert.Equal(t, "smoot", u.Pretty())
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestToFloat_RejectsBool(t *testing.T) {
	_, ok := ToFloat(true)
	assert.False(t, ok)

	_, err := NewSystem().NewQuantity(true, "meter")
	assert.Error(t, err)
}

func TestNewQuantity(t *testing.T) {
	sys := NewSystem()

	for _, v := range []any{1, int8(2), uint16(3), float32(1.5), 2.5, decimal.RequireFromString("0.25")} {
		q, err := sys.NewQuantity(v, "tesla")
		require.NoError(t, err, "%T", v)
		assert.Equal(t, "tesla", q.Unit.String())
	}
	for _, v := range []any{nil, "1.0", true, []float64{1}, map[string]int{}, complex(1, 1)} {
		_, err := sys.NewQuantity(v, "tesla")
		assert.Error(t, err, "%T", v)
	}

	q, err := sys.NewQuantity(20, "degC")
	require.NoError(t, err)
	k, err := q.To(sys.MustParse("K"))
	require.NoError(t, err)
	assert.InDelta(t, 293.15, k.Magnitude, 1e-9)
	assert.Equal(t, "293.15 K", k.String())
}

func TestUnitString(t *testing.T) {
	sys := NewSystem()
	u := sys.MustParse("V/m")

	assert.Equal(t, "V/m", UnitString(u, true))
	assert.Equal(t, "volt / meter", UnitString(u, false))
	assert.Equal(t, "whatever", UnitString("whatever", true))
	assert.Equal(t, "T", UnitString(&Unit{terms: sys.MustParse("T").terms}, true))
}

func TestDimension_String(t *testing.T) {
	sys := NewSystem()
	assert.Equal(t, "[mass] / [time] ** 2 / [current]", sys.MustParse("tesla").Dimension().String())
	assert.Equal(t, "dimensionless", sys.MustParse("radian").Dimension().String())
	assert.Equal(t, "1 / [temperature]", sys.MustParse("1/K").Dimension().String())
}

func TestConvert_RoundTrip(t *testing.T) {
	sys := NewSystem()
	pairs := [][2]string{
		{"tesla", "gauss"},
		{"degC", "degF"},
		{"kelvin", "degC"},
		{"Pa", "bar"},
		{"m³/s", "l/min"},
		{"W/(m·K)", "mW/(cm·K)"},
	}

	rapid.Check(t, func(rt *rapid.T) {
		pair := rapid.SampledFrom(pairs).Draw(rt, "pair")
		v := rapid.Float64Range(-1e6, 1e6).Draw(rt, "value")

		there, err := sys.ConvertValue(v, pair[0], pair[1])
		if err != nil {
			rt.Fatalf("convert %s -> %s: %v", pair[0], pair[1], err)
		}
		back, err := sys.ConvertValue(there, pair[1], pair[0])
		if err != nil {
			rt.Fatalf("convert %s -> %s: %v", pair[1], pair[0], err)
		}
		if math.Abs(back-v) > 1e-9*math.Max(1, math.Abs(v)) {
			rt.Fatalf("round trip %v %s -> %v %s -> %v", v, pair[0], there, pair[1], back)
		}
	})
}
