package format

// UnitAliases maps unit spellings common in data-file descriptions to
// expressions understood by the unit system.
var UnitAliases = map[string]string{
	// Temperature
	"celsius":    "degC",
	"fahrenheit": "degF",
	"kelvin":     "kelvin",

	// Pressure
	"bar":    "bar",
	"pascal": "pascal",
	"Pa":     "pascal",
	"MPa":    "megapascal",
	"psi":    "psi",

	// Flow rate
	"liter/minute":  "liter/minute",
	"l/min":         "liter/minute",
	"m3/h":          "meter**3/hour",
	"meter**3/hour": "meter**3/hour",

	// Power
	"megawatt": "megawatt",
	"MW":       "megawatt",
	"watt":     "watt",
	"W":        "watt",
	"megavar":  "megavar",
	"Mvar":     "megavar",

	// Current
	"ampere": "ampere",
	"A":      "ampere",

	// Voltage
	"volt": "volt",
	"V":    "volt",

	// Magnetic field
	"tesla": "tesla",
	"T":     "tesla",

	// Rotation
	"rpm": "revolution/minute",

	// Dimensionless
	"dimensionless": "dimensionless",
	"percent":       "percent",
	"%":             "percent",
}

// NormalizeUnit maps a known spelling through UnitAliases; unknown strings pass through.
func NormalizeUnit(unit string) string {
	if n, ok := UnitAliases[unit]; ok {
		return n
	}
	return unit
}
