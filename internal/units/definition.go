package units

import (
	"math"
	"strconv"
	"strings"

	"magnetunits/internal/core/apperror"
)

// Definition is a named unit registered in a System.
type Definition struct {
	Name    string
	Symbol  string
	Aliases []string

	scale  float64   // SI value of one unit
	offset float64   // SI value of the unit's zero point (degC, degF)
	dim    Dimension // dimension over SI base quantities
	source string    // definition line, for idempotent redefinition
}

// Scale returns the factor to SI base units.
func (d *Definition) Scale() float64 { return d.scale }

// Offset returns the zero-point shift to SI base units.
func (d *Definition) Offset() float64 { return d.offset }

// Dimension returns the definition's dimension vector.
func (d *Definition) Dimension() Dimension { return d.dim }

// IsOffset reports whether the unit has a non-multiplicative zero point.
func (d *Definition) IsOffset() bool { return d.offset != 0 }

// display returns the short form used by pretty rendering.
func (d *Definition) display() string {
	if d.Symbol != "" {
		return d.Symbol
	}
	return d.Name
}

// Prefix is an SI prefix such as milli or mega.
type Prefix struct {
	Name    string
	Symbol  string
	Factor  float64
	aliases []string
}

var prefixes = []Prefix{
	{Name: "exa", Symbol: "E", Factor: 1e18},
	{Name: "peta", Symbol: "P", Factor: 1e15},
	{Name: "tera", Symbol: "T", Factor: 1e12},
	{Name: "giga", Symbol: "G", Factor: 1e9},
	{Name: "mega", Symbol: "M", Factor: 1e6},
	{Name: "kilo", Symbol: "k", Factor: 1e3},
	{Name: "hecto", Symbol: "h", Factor: 1e2},
	{Name: "deca", Symbol: "da", Factor: 1e1, aliases: []string{"deka"}},
	{Name: "deci", Symbol: "d", Factor: 1e-1},
	{Name: "centi", Symbol: "c", Factor: 1e-2},
	{Name: "milli", Symbol: "m", Factor: 1e-3},
	{Name: "micro", Symbol: "µ", Factor: 1e-6, aliases: []string{"u", "μ"}},
	{Name: "nano", Symbol: "n", Factor: 1e-9},
	{Name: "pico", Symbol: "p", Factor: 1e-12},
	{Name: "femto", Symbol: "f", Factor: 1e-15},
}

// baseUnits are the SI anchors every other definition reduces to.
var baseUnits = []struct {
	name, symbol string
	aliases      []string
	dim          BaseDimension
}{
	{"meter", "m", []string{"metre"}, DimLength},
	{"kilogram", "kg", nil, DimMass},
	{"second", "s", []string{"sec"}, DimTime},
	{"ampere", "A", []string{"amp"}, DimCurrent},
	{"kelvin", "K", nil, DimTemperature},
	{"mole", "mol", nil, DimAmount},
	{"candela", "cd", nil, DimLuminosity},
}

// builtinDefinitions use the same line syntax as System.Define:
// "name = expression = symbol = alias...", with "_" for no symbol.
var builtinDefinitions = []string{
	"radian = 1 = rad",
	"steradian = radian ** 2 = sr",
	"revolution = 6.283185307179586 * radian = rev = turn",
	"degree = 0.017453292519943295 * radian = deg",

	"gram = 1e-3 * kilogram = g",
	"tonne = 1e3 * kilogram = t = metric_ton",
	"minute = 60 * second = min",
	"hour = 3600 * second = h = hr",
	"day = 86400 * second = d",
	"rpm = revolution / minute = _ = revolutions_per_minute",

	"inch = 0.0254 * meter = in",
	"foot = 0.3048 * meter = ft = feet",
	"liter = 1e-3 * meter ** 3 = l = L = litre",

	"hertz = 1 / second = Hz",
	"newton = kilogram * meter / second ** 2 = N",
	"pascal = newton / meter ** 2 = Pa",
	"bar = 1e5 * pascal = bar",
	"atmosphere = 101325 * pascal = atm",
	"psi = 6894.757293168361 * pascal = psi = pound_force_per_square_inch",
	"joule = newton * meter = J",
	"watt = joule / second = W",
	"coulomb = ampere * second = C",
	"volt = watt / ampere = V",
	"ohm = volt / ampere = Ω = Ohm",
	"siemens = ampere / volt = S",
	"farad = coulomb / volt = F",
	"henry = volt * second / ampere = H",
	"weber = volt * second = Wb",
	"tesla = weber / meter ** 2 = T",

	"degree_Celsius = kelvin; offset: 273.15 = °C = celsius = degC",
	"degree_Fahrenheit = 0.5555555555555556 * kelvin; offset: 255.37222222222223 = °F = fahrenheit = degF",
	"degree_Rankine = 0.5555555555555556 * kelvin = °R = rankine = degR",
}

// CustomDefinitions are applied to every System built with NewSystem.
var CustomDefinitions = []string{
	"Gauss = 1e-4 * tesla = G = gauss = Gs",
	"percent = 0.01 = %",
	"ppm = 1e-6 = _ = parts_per_million",
	"var = volt * ampere = var = volt_ampere_reactive",
}

// definitionLine is a parsed "name = expr = symbol = alias..." line.
type definitionLine struct {
	name    string
	expr    string
	offset  float64
	symbol  string
	aliases []string
}

func parseDefinitionLine(line string) (definitionLine, error) {
	parts := strings.Split(line, "=")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return definitionLine{}, apperror.NewValidation("unit definition must have the form 'name = expression [= symbol [= alias ...]]'").
			WithDetail("definition", line)
	}

	out := definitionLine{name: parts[0], expr: parts[1]}
	if strings.ContainsAny(out.name, " */^()") {
		return definitionLine{}, apperror.NewValidation("unit name must be a single identifier").
			WithDetail("definition", line)
	}

	if expr, off, ok := strings.Cut(out.expr, ";"); ok {
		out.expr = strings.TrimSpace(expr)
		off = strings.TrimSpace(off)
		value, found := strings.CutPrefix(off, "offset:")
		if !found {
			return definitionLine{}, apperror.NewValidation("unknown definition modifier").
				WithDetail("definition", line)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return definitionLine{}, apperror.NewValidation("invalid offset in unit definition").
				WithDetail("definition", line).WithCause(err)
		}
		out.offset = f
	}

	if len(parts) > 2 && parts[2] != "_" {
		out.symbol = parts[2]
	}
	for _, a := range parts[min(3, len(parts)):] {
		if a != "" && a != "_" {
			out.aliases = append(out.aliases, a)
		}
	}
	return out, nil
}
