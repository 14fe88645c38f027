package catalogs

import "magnetunits/internal/metadata"

// Material property groups, keyed by the physics they feed.
const (
	PhysicsMechanical = "mechanical"
	PhysicsElectrical = "electrical"
	PhysicsThermal    = "thermal"
	PhysicsMagnetic   = "magnetic"
)

func material(physics, name, symbol, unit string, ft metadata.FieldType, description, latex string, aliases ...string) entry {
	return entry{
		group:       physics,
		name:        name,
		symbol:      symbol,
		unit:        unit,
		fieldType:   ft,
		description: description,
		latex:       latex,
		aliases:     aliases,
		physics:     physics,
	}
}

// MaterialProperties is a standalone catalog of material constants. Several
// names overlap the physics catalogs, so it is kept out of RegisterAll and
// belongs in its own registry.
var MaterialProperties = Catalog{
	name:     "material_properties",
	category: "material_property",
	entries: []entry{
		material(PhysicsMechanical, "Density", "ρ", "kilogram / meter ** 3", metadata.TypeDensity,
			"Mass density", `$\rho$`, "density", "rho", "mass_density"),
		material(PhysicsMechanical, "YoungModulus", "E", "pascal", metadata.TypeYoungModulus,
			"Young's modulus (elastic modulus)", `$E$`, "young_modulus", "elastic_modulus", "E_modulus"),
		material(PhysicsMechanical, "PoissonRatio", "ν", "dimensionless", metadata.TypePoissonRatio,
			"Poisson's ratio", `$\nu$`, "poisson_ratio", "nu", "poisson"),

		material(PhysicsElectrical, "ElectricalResistivity", "ρ_e", "ohm * meter", metadata.TypeElectricalResistivity,
			"Electrical resistivity", `$\rho_e$`, "resistivity", "rho_e", "electrical_resistivity"),
		material(PhysicsElectrical, "ElectricalConductivity", "σ", "siemens / meter", metadata.TypeElectricalConductivity,
			"Electrical conductivity", `$\sigma$`, "conductivity", "sigma", "electrical_conductivity"),
		material(PhysicsElectrical, "RelativePermittivity", "ε_r", "dimensionless", metadata.TypeRelativePermittivity,
			"Relative permittivity (dielectric constant)", `$\varepsilon_r$`, "permittivity", "epsilon_r", "dielectric_constant"),

		material(PhysicsThermal, "ThermalConductivity", "k", "watt / (meter * kelvin)", metadata.TypeThermalConductivity,
			"Thermal conductivity", `$k$`, "thermal_conductivity", "k_thermal"),
		material(PhysicsThermal, "SpecificHeat", "c_p", "joule / (kilogram * kelvin)", metadata.TypeSpecificHeat,
			"Specific heat capacity at constant pressure", `$c_p$`, "specific_heat", "heat_capacity", "cp"),
		material(PhysicsThermal, "ThermalExpansion", "α", "1 / kelvin", metadata.TypeThermalExpansion,
			"Coefficient of thermal expansion", `$\alpha$`, "thermal_expansion", "alpha", "expansion_coefficient"),
		material(PhysicsThermal, "ThermalDiffusivity", "α_th", "meter ** 2 / second", metadata.TypeThermalDiffusivity,
			"Thermal diffusivity", `$\alpha_{th}$`, "thermal_diffusivity", "alpha_th", "diffusivity"),

		material(PhysicsMagnetic, "RelativePermeability", "μ_r", "dimensionless", metadata.TypeRelativePermeability,
			"Relative magnetic permeability", `$\mu_r$`, "permeability", "mu_r", "magnetic_permeability"),
		material(PhysicsMagnetic, "MagneticSusceptibility", "χ", "dimensionless", metadata.TypeMagneticSusceptibility,
			"Magnetic susceptibility", `$\chi$`, "susceptibility", "chi", "magnetic_susceptibility"),
	},
}
