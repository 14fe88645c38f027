package catalogs

import "magnetunits/internal/metadata"

// Hydraulics groups.
const (
	GroupPressure        = "pressure"
	GroupFlowRate        = "flow_rate"
	GroupVelocity        = "velocity"
	GroupFluidProperties = "fluid_properties"
)

var velocity = entry{
	group: GroupVelocity, name: "Velocity", symbol: "v", unit: "meter / second",
	fieldType: metadata.TypeVelocity, description: "Flow velocity magnitude", latex: `$v$`,
	aliases: []string{"v", "velocity", "flow_velocity"},
	kind:    KindVectorMagnitude,
}

// Hydraulics holds pressure, flow rate, velocity and fluid properties.
// Density lives here; the mechanical catalog does not repeat it.
var Hydraulics = Catalog{
	name:     "hydraulics",
	category: "hydraulics",
	entries: join(
		[]entry{
			{
				group: GroupPressure, name: "Pressure", symbol: "P", unit: "pascal",
				fieldType: metadata.TypePressure, description: "Static pressure", latex: `$P$`,
				aliases: []string{"P", "pressure", "static_pressure"},
				kind:    KindScalar,
			},
			{
				group: GroupPressure, name: "PressureDrop", symbol: "ΔP", unit: "pascal",
				fieldType: metadata.TypePressure, description: "Pressure drop", latex: `$\Delta P$`,
				aliases: []string{"dP", "delta_P", "pressure_drop"},
				kind:    KindScalar,
			},
			{
				group: GroupFlowRate, name: "FlowRate", symbol: "Q", unit: "meter ** 3 / second",
				fieldType: metadata.TypeFlowRate, description: "Volumetric flow rate", latex: `$Q$`,
				aliases: []string{"Q", "flow_rate", "volumetric_flow_rate", "flow"},
				kind:    KindScalar,
			},
			// no field type covers kg/s
			{
				group: GroupFlowRate, name: "MassFlowRate", symbol: "ṁ", unit: "kilogram / second",
				description: "Mass flow rate", latex: `$\dot{m}$`,
				aliases: []string{"mdot", "m_dot", "mass_flow_rate", "mass_flow"},
				kind:    KindScalar,
			},
			velocity,
		},
		components(velocity, "Velocity", KindComponent, vectorAxes, func(a string) []string {
			return []string{"v" + a, "v_" + a, "velocity_" + a}
		}),
		[]entry{
			{
				group: GroupFluidProperties, name: "DynamicViscosity", symbol: "μ", unit: "pascal * second",
				fieldType: metadata.TypeDynamicViscosity, description: "Dynamic viscosity", latex: `$\mu$`,
				aliases: []string{"mu", "dynamic_viscosity", "viscosity"},
				kind:    KindMaterial,
			},
			{
				group: GroupFluidProperties, name: "KinematicViscosity", symbol: "ν", unit: "meter ** 2 / second",
				fieldType: metadata.TypeKinematicViscosity, description: "Kinematic viscosity", latex: `$\nu$`,
				aliases: []string{"nu_kinematic", "kinematic_viscosity"},
				kind:    KindMaterial,
			},
			{
				group: GroupFluidProperties, name: "Density", symbol: "ρ", unit: "kilogram / meter ** 3",
				fieldType: metadata.TypeDensity, description: "Mass density", latex: `$\rho$`,
				aliases: []string{"rho", "density", "mass_density"},
				kind:    KindMaterial,
			},
		},
	),
}
