package metadata

import (
	"fmt"
	"strings"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/units"
)

// FieldType is a canonical physical-quantity kind. TypeNone marks an untyped field.
type FieldType string

const (
	TypeNone FieldType = ""

	// Time
	TypeTime FieldType = "time"

	// Electromagnetic fields
	TypeMagneticField  FieldType = "magnetic_field"
	TypeElectricField  FieldType = "electric_field"
	TypeCurrent        FieldType = "current"
	TypeCurrentDensity FieldType = "current_density"
	TypeVoltage        FieldType = "voltage"

	// Electromagnetic material properties
	TypeResistance             FieldType = "resistance"
	TypeInductance             FieldType = "inductance"
	TypeElectricalResistivity  FieldType = "electrical_resistivity"
	TypeElectricalConductivity FieldType = "electrical_conductivity"
	TypeRelativePermittivity   FieldType = "relative_permittivity"
	TypeRelativePermeability   FieldType = "relative_permeability"
	TypeMagneticSusceptibility FieldType = "magnetic_susceptibility"

	// Electrical power
	TypePower         FieldType = "power"
	TypeReactivePower FieldType = "reactive_power"

	// Thermal fields
	TypeTemperature FieldType = "temperature"
	TypeHeatFlux    FieldType = "heat_flux"

	// Thermal material properties
	TypeThermalConductivity     FieldType = "thermal_conductivity"
	TypeHeatTransferCoefficient FieldType = "heat_transfer_coefficient"
	TypeSpecificHeat            FieldType = "specific_heat"
	TypeThermalExpansion        FieldType = "thermal_expansion"
	TypeThermalDiffusivity      FieldType = "thermal_diffusivity"

	// Hydraulics
	TypePressure           FieldType = "pressure"
	TypeFlowRate           FieldType = "flow_rate"
	TypeVelocity           FieldType = "velocity"
	TypeDynamicViscosity   FieldType = "dynamic_viscosity"
	TypeKinematicViscosity FieldType = "kinematic_viscosity"

	// Mechanical fields
	TypeForce  FieldType = "force"
	TypeStress FieldType = "stress"
	TypeStrain FieldType = "strain"

	// Mechanical material properties
	TypeDensity      FieldType = "density"
	TypeYoungModulus FieldType = "young_modulus"
	TypePoissonRatio FieldType = "poisson_ratio"

	// Other
	TypeRotationSpeed FieldType = "rotation_speed"
	TypePercentage    FieldType = "percentage"

	// Geometry
	TypeCoordinate FieldType = "coordinate"
	TypeLength     FieldType = "length"
	TypeArea       FieldType = "area"
	TypeVolume     FieldType = "volume"
	TypeIndex      FieldType = "index"
)

// Domain groups field types by physics area.
type Domain string

const (
	DomainElectromagnetic Domain = "electromagnetic"
	DomainThermal         Domain = "thermal"
	DomainHydraulic       Domain = "hydraulic"
	DomainMechanical      Domain = "mechanical"
	DomainGeometric       Domain = "geometric"
	DomainOther           Domain = "other"
)

type fieldTypeInfo struct {
	unit   string // unit expression in the units package syntax
	symbol string
	latex  string
	domain Domain
}

// fieldTypes lists every kind in declaration order.
var fieldTypes = []FieldType{
	TypeTime,
	TypeMagneticField, TypeElectricField, TypeCurrent, TypeCurrentDensity, TypeVoltage,
	TypeResistance, TypeInductance, TypeElectricalResistivity, TypeElectricalConductivity,
	TypeRelativePermittivity, TypeRelativePermeability, TypeMagneticSusceptibility,
	TypePower, TypeReactivePower,
	TypeTemperature, TypeHeatFlux,
	TypeThermalConductivity, TypeHeatTransferCoefficient, TypeSpecificHeat,
	TypeThermalExpansion, TypeThermalDiffusivity,
	TypePressure, TypeFlowRate, TypeVelocity, TypeDynamicViscosity, TypeKinematicViscosity,
	TypeForce, TypeStress, TypeStrain,
	TypeDensity, TypeYoungModulus, TypePoissonRatio,
	TypeRotationSpeed, TypePercentage,
	TypeCoordinate, TypeLength, TypeArea, TypeVolume, TypeIndex,
}

var fieldTypeTable = map[FieldType]fieldTypeInfo{
	TypeTime: {"second", "t", `$t$`, DomainOther},

	TypeMagneticField:  {"tesla", "B", `$B$`, DomainElectromagnetic},
	TypeElectricField:  {"volt / meter", "E", `$E$`, DomainElectromagnetic},
	TypeCurrent:        {"ampere", "I", `$I$`, DomainElectromagnetic},
	TypeCurrentDensity: {"ampere / meter ** 2", "J", `$J$`, DomainElectromagnetic},
	TypeVoltage:        {"volt", "U", `$U$`, DomainElectromagnetic},

	TypeResistance:             {"ohm", "R", `$R$`, DomainElectromagnetic},
	TypeInductance:             {"henry", "L", `$L$`, DomainElectromagnetic},
	TypeElectricalResistivity:  {"ohm * meter", "ρ_e", `$\rho_e$`, DomainElectromagnetic},
	TypeElectricalConductivity: {"siemens / meter", "σ", `$\sigma$`, DomainElectromagnetic},
	TypeRelativePermittivity:   {"dimensionless", "ε_r", `$\varepsilon_r$`, DomainElectromagnetic},
	TypeRelativePermeability:   {"dimensionless", "μ_r", `$\mu_r$`, DomainElectromagnetic},
	TypeMagneticSusceptibility: {"dimensionless", "χ", `$\chi$`, DomainElectromagnetic},

	TypePower:         {"watt", "P", `$P$`, DomainElectromagnetic},
	TypeReactivePower: {"var", "Q", `$Q$`, DomainElectromagnetic},

	TypeTemperature: {"kelvin", "T", `$T$`, DomainThermal},
	TypeHeatFlux:    {"watt / meter ** 2", "q", `$q$`, DomainThermal},

	TypeThermalConductivity:     {"watt / (meter * kelvin)", "k", `$k$`, DomainThermal},
	TypeHeatTransferCoefficient: {"watt / (meter ** 2 * kelvin)", "h", `$h$`, DomainThermal},
	TypeSpecificHeat:            {"joule / (kilogram * kelvin)", "c_p", `$c_p$`, DomainThermal},
	TypeThermalExpansion:        {"1 / kelvin", "α", `$\alpha$`, DomainThermal},
	TypeThermalDiffusivity:      {"meter ** 2 / second", "α_th", `$\alpha_{th}$`, DomainThermal},

	TypePressure:           {"pascal", "P", `$P$`, DomainHydraulic},
	TypeFlowRate:           {"meter ** 3 / second", "Q", `$Q$`, DomainHydraulic},
	TypeVelocity:           {"meter / second", "v", `$v$`, DomainHydraulic},
	TypeDynamicViscosity:   {"pascal * second", "μ", `$\mu$`, DomainHydraulic},
	TypeKinematicViscosity: {"meter ** 2 / second", "ν", `$\nu$`, DomainHydraulic},

	TypeForce:  {"newton", "F", `$F$`, DomainMechanical},
	TypeStress: {"pascal", "σ", `$\sigma$`, DomainMechanical},
	TypeStrain: {"dimensionless", "ε", `$\varepsilon$`, DomainMechanical},

	TypeDensity:      {"kilogram / meter ** 3", "ρ", `$\rho$`, DomainMechanical},
	TypeYoungModulus: {"pascal", "E", `$E$`, DomainMechanical},
	TypePoissonRatio: {"dimensionless", "ν", `$\nu$`, DomainMechanical},

	TypeRotationSpeed: {"radian / second", "ω", `$\omega$`, DomainOther},
	TypePercentage:    {"percent", "%", `$\%$`, DomainOther},

	TypeCoordinate: {"meter", "x", `$x$`, DomainGeometric},
	TypeLength:     {"meter", "L", `$L$`, DomainGeometric},
	TypeArea:       {"meter ** 2", "A", `$A$`, DomainGeometric},
	TypeVolume:     {"meter ** 3", "V", `$V$`, DomainGeometric},
	TypeIndex:      {"dimensionless", "i", `$i$`, DomainGeometric},
}

func init() {
	if len(fieldTypes) != len(fieldTypeTable) {
		panic("metadata: field type order and table are out of sync")
	}
	for _, ft := range fieldTypes {
		if _, ok := fieldTypeTable[ft]; !ok {
			panic(fmt.Sprintf("metadata: field type %q has no table entry", ft))
		}
	}
}

// AllFieldTypes returns every field type in declaration order.
func AllFieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

// ParseFieldType resolves a canonical key ("magnetic_field") or enum name ("MAGNETIC_FIELD").
// The empty string yields TypeNone.
func ParseFieldType(key string) (FieldType, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return TypeNone, nil
	}
	ft := FieldType(strings.ToLower(key))
	if !ft.IsValid() {
		return TypeNone, apperror.NewValidation(fmt.Sprintf("unknown field type '%s'", key)).
			WithDetail("field_type", key)
	}
	return ft, nil
}

// IsValid reports whether t is one of the enumerated kinds.
func (t FieldType) IsValid() bool {
	_, ok := fieldTypeTable[t]
	return ok
}

// EnumName returns the upper-case identifier, e.g. "MAGNETIC_FIELD".
func (t FieldType) EnumName() string {
	return strings.ToUpper(string(t))
}

func (t FieldType) String() string {
	if t == TypeNone {
		return "none"
	}
	return string(t)
}

// Domain returns the physics area of t, or "" for unknown kinds.
func (t FieldType) Domain() Domain {
	return fieldTypeTable[t].domain
}

// DefaultUnitExpr returns the canonical unit expression, e.g. "volt / meter".
func (t FieldType) DefaultUnitExpr() string {
	return fieldTypeTable[t].unit
}

// DefaultUnit resolves the canonical unit of t in sys.
func (t FieldType) DefaultUnit(sys *units.System) (units.Unit, error) {
	info, ok := fieldTypeTable[t]
	if !ok {
		return units.Unit{}, apperror.NewValidation(fmt.Sprintf("unknown field type '%s'", string(t)))
	}
	return sys.Parse(info.unit)
}

// DefaultSymbol returns the short display symbol, e.g. "B".
func (t FieldType) DefaultSymbol() string {
	return fieldTypeTable[t].symbol
}

// LatexSymbol returns the dollar-delimited LaTeX symbol, e.g. "$B$".
func (t FieldType) LatexSymbol() string {
	return fieldTypeTable[t].latex
}

// IsCompatible reports whether unit (string or units.Unit) converts to the default unit of t.
// Any parse or conversion failure yields false.
func (t FieldType) IsCompatible(sys *units.System, unit any) bool {
	def, err := t.DefaultUnit(sys)
	if err != nil {
		return false
	}
	u, err := sys.Resolve(unit)
	if err != nil {
		return false
	}
	_, err = units.Quantity{Magnitude: 1, Unit: u}.To(def)
	return err == nil
}
