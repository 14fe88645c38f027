package catalogs

import "magnetunits/internal/metadata"

// Electromagnetic groups.
const (
	GroupMagneticField  = "magnetic_field"
	GroupElectricField  = "electric_field"
	GroupCurrentDensity = "current_density"
	GroupPotential      = "potential"
)

var (
	magneticField = entry{
		group: GroupMagneticField, name: "MagneticField", symbol: "B", unit: "tesla",
		fieldType: metadata.TypeMagneticField, description: "Magnetic flux density", latex: `$B$`,
		aliases: []string{"B", "B_field", "magnetic_field", "magnetic_flux_density"},
		kind:    KindScalar,
	}
	electricField = entry{
		group: GroupElectricField, name: "ElectricField", symbol: "E", unit: "volt / meter",
		fieldType: metadata.TypeElectricField, description: "Electric field strength", latex: `$E$`,
		aliases: []string{"E", "E_field", "electric_field"},
	}
	currentDensity = entry{
		group: GroupCurrentDensity, name: "CurrentDensity", symbol: "J", unit: "ampere / meter ** 2",
		fieldType: metadata.TypeCurrentDensity, description: "Current density", latex: `$J$`,
		aliases: []string{"J", "J_field", "current_density"},
	}
	potential = entry{
		group: GroupPotential, name: "Potential", symbol: "V", unit: "volt",
		fieldType: metadata.TypeVoltage, description: "Electric potential", latex: `$V$`,
		aliases: []string{"V", "potential", "electric_potential"},
	}
)

// Electromagnetic holds B, E and J with their components plus the electric potential.
var Electromagnetic = Catalog{
	name:     "electromagnetic",
	category: "electromagnetic",
	entries: join(
		[]entry{magneticField},
		components(magneticField, "Magnetic field", KindComponent, vectorAxes, func(a string) []string {
			return []string{"B" + a, "B_" + a, "magnetic_field_" + a}
		}),
		[]entry{electricField},
		components(electricField, "Electric field", KindComponent, vectorAxes, func(a string) []string {
			return []string{"E" + a, "E_" + a, "electric_field_" + a}
		}),
		[]entry{currentDensity},
		components(currentDensity, "Current density", KindComponent, vectorAxes, func(a string) []string {
			return []string{"J" + a, "J_" + a}
		}),
		[]entry{potential},
	),
}
