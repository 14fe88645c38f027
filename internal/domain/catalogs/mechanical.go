package catalogs

import "magnetunits/internal/metadata"

// Mechanical groups.
const (
	GroupForce                = "force"
	GroupStress               = "stress"
	GroupStrain               = "strain"
	GroupDisplacement         = "displacement"
	GroupMechanicalProperties = "mechanical_properties"
)

var (
	force = entry{
		group: GroupForce, name: "Force", symbol: "F", unit: "newton",
		fieldType: metadata.TypeForce, description: "Force magnitude", latex: `$F$`,
		aliases: []string{"F", "force"},
		kind:    KindVectorMagnitude,
	}
	stress = entry{
		group: GroupStress, name: "Stress", symbol: "σ", unit: "pascal",
		fieldType: metadata.TypeStress, description: "Stress (general / von Mises)", latex: `$\sigma$`,
		aliases: []string{"sigma", "stress", "von_mises_stress"},
		kind:    KindTensorScalar,
	}
	strain = entry{
		group: GroupStrain, name: "Strain", symbol: "ε", unit: "dimensionless",
		fieldType: metadata.TypeStrain, description: "Strain (general / equivalent)", latex: `$\varepsilon$`,
		aliases: []string{"epsilon", "strain", "equivalent_strain"},
		kind:    KindTensorScalar,
	}
	displacement = entry{
		group: GroupDisplacement, name: "Displacement", symbol: "u", unit: "meter",
		fieldType: metadata.TypeLength, description: "Displacement magnitude", latex: `$u$`,
		aliases: []string{"u", "displacement", "disp"},
		kind:    KindVectorMagnitude,
	}
)

// Mechanical holds force, stress and strain tensors, displacement and elastic
// constants. Density is provided by Hydraulics.
var Mechanical = Catalog{
	name:     "mechanical",
	category: "mechanical",
	entries: join(
		[]entry{force},
		components(force, "Force", KindComponent, vectorAxes, func(a string) []string {
			return []string{"F" + a, "F_" + a, "force_" + a}
		}),
		[]entry{stress},
		components(stress, "Normal stress", KindTensorComponent, normalAxes, func(a string) []string {
			return []string{"sigma_" + a, "stress_" + a}
		}),
		components(stress, "Shear stress", KindTensorComponent, shearAxes, func(a string) []string {
			return []string{"sigma_" + a, "stress_" + a, "tau_" + a}
		}),
		[]entry{strain},
		components(strain, "Normal strain", KindTensorComponent, normalAxes, func(a string) []string {
			return []string{"epsilon_" + a, "strain_" + a}
		}),
		[]entry{displacement},
		components(displacement, "Displacement", KindComponent, vectorAxes, func(a string) []string {
			return []string{"u" + a, "u_" + a, "displacement_" + a}
		}),
		[]entry{
			{
				group: GroupMechanicalProperties, name: "YoungModulus", symbol: "E", unit: "pascal",
				fieldType: metadata.TypeYoungModulus, description: "Young's modulus (elastic modulus)", latex: `$E$`,
				aliases: []string{"E_modulus", "young_modulus", "elastic_modulus"},
				kind:    KindMaterial,
			},
			{
				group: GroupMechanicalProperties, name: "PoissonRatio", symbol: "ν", unit: "dimensionless",
				fieldType: metadata.TypePoissonRatio, description: "Poisson's ratio", latex: `$\nu$`,
				aliases: []string{"nu_poisson", "poisson_ratio", "poisson"},
				kind:    KindMaterial,
			},
		},
	),
}
