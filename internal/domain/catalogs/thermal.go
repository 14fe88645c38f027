package catalogs

import "magnetunits/internal/metadata"

// Thermal groups.
const (
	GroupTemperature       = "temperature"
	GroupHeatFlux          = "heat_flux"
	GroupThermalProperties = "thermal_properties"
)

var heatFlux = entry{
	group: GroupHeatFlux, name: "HeatFlux", symbol: "q", unit: "watt / meter ** 2",
	fieldType: metadata.TypeHeatFlux, description: "Heat flux (power per unit area)", latex: `$q$`,
	aliases: []string{"q", "heat_flux", "thermal_flux"},
	kind:    KindScalar,
}

// Thermal holds temperature, heat flux and thermal material properties.
// Temperature and conductivity are not solved in Air regions.
var Thermal = Catalog{
	name:     "thermal",
	category: "thermal",
	entries: join(
		[]entry{{
			group: GroupTemperature, name: "Temperature", symbol: "T", unit: "kelvin",
			fieldType: metadata.TypeTemperature, description: "Absolute temperature", latex: `$T$`,
			aliases: []string{"T", "temp", "temperature"},
			exclude: []string{"Air"},
			kind:    KindScalar,
		}},
		[]entry{heatFlux},
		components(heatFlux, "Heat flux", KindComponent, vectorAxes, func(a string) []string {
			return []string{"q" + a, "q_" + a, "heat_flux_" + a}
		}),
		[]entry{
			{
				group: GroupThermalProperties, name: "ThermalConductivity", symbol: "k", unit: "watt / (meter * kelvin)",
				fieldType: metadata.TypeThermalConductivity, description: "Thermal conductivity", latex: `$k$`,
				aliases: []string{"k", "k_thermal", "thermal_conductivity"},
				exclude: []string{"Air"},
				kind:    KindMaterial,
			},
			{
				group: GroupThermalProperties, name: "HeatTransferCoefficient", symbol: "h", unit: "watt / (meter ** 2 * kelvin)",
				fieldType: metadata.TypeHeatTransferCoefficient, description: "Convective heat transfer coefficient", latex: `$h$`,
				aliases: []string{"h", "htc", "heat_transfer_coefficient", "convection_coefficient"},
				kind:    KindMaterial,
			},
			{
				group: GroupThermalProperties, name: "SpecificHeat", symbol: "c_p", unit: "joule / (kilogram * kelvin)",
				fieldType: metadata.TypeSpecificHeat, description: "Specific heat capacity at constant pressure", latex: `$c_p$`,
				aliases: []string{"cp", "c_p", "specific_heat", "heat_capacity"},
				kind:    KindMaterial,
			},
			{
				group: GroupThermalProperties, name: "ThermalExpansion", symbol: "α", unit: "1 / kelvin",
				fieldType: metadata.TypeThermalExpansion, description: "Coefficient of thermal expansion", latex: `$\alpha$`,
				aliases: []string{"alpha", "thermal_expansion", "expansion_coefficient", "cte"},
				kind:    KindMaterial,
			},
			{
				group: GroupThermalProperties, name: "ThermalDiffusivity", symbol: "α_th", unit: "meter ** 2 / second",
				fieldType: metadata.TypeThermalDiffusivity, description: "Thermal diffusivity", latex: `$\alpha_{th}$`,
				aliases: []string{"alpha_th", "thermal_diffusivity", "diffusivity"},
				kind:    KindMaterial,
			},
		},
	),
}
