package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
)

func TestCatalogs_BuildAgainstFreshSystem(t *testing.T) {
	sys := units.NewSystem()

	tests := []struct {
		catalog Catalog
		want    int
	}{
		{Electromagnetic, 13},
		{Thermal, 10},
		{Hydraulics, 11},
		{Mechanical, 21},
		{MaterialProperties, 12},
	}

	for _, tt := range tests {
		t.Run(tt.catalog.Name(), func(t *testing.T) {
			fields, err := tt.catalog.Fields(sys)
			require.NoError(t, err)
			assert.Len(t, fields, tt.want)
			assert.Equal(t, tt.want, tt.catalog.Len())

			names := map[string]bool{}
			for _, f := range fields {
				assert.False(t, names[f.Name()], "duplicate name %s", f.Name())
				names[f.Name()] = true
				assert.Equal(t, tt.catalog.Category(), f.Category())
				assert.Same(t, sys, f.Units())
			}
		})
	}
}

func TestStandardRegistry(t *testing.T) {
	reg, err := StandardRegistry(units.NewSystem())
	require.NoError(t, err)

	assert.Equal(t, 55, reg.Len())
	assert.Equal(t, []string{"electromagnetic", "hydraulics", "mechanical", "thermal"}, reg.ListCategories())
	assert.Len(t, reg.ListFields("thermal"), 10)

	b, ok := reg.Get("B")
	require.True(t, ok)
	assert.Equal(t, "MagneticField", b.Name())
	assert.Equal(t, metadata.TypeMagneticField, b.FieldType())

	// E is a symbol of both ElectricField and YoungModulus, the later catalog wins
	e, ok := reg.Get("E")
	require.True(t, ok)
	assert.Equal(t, "YoungModulus", e.Name())

	e, ok = reg.Get("E_field")
	require.True(t, ok)
	assert.Equal(t, "ElectricField", e.Name())

	nu, ok := reg.Get("ν")
	require.True(t, ok)
	assert.Equal(t, "PoissonRatio", nu.Name())

	tau, ok := reg.Get("tau_xy")
	require.True(t, ok)
	assert.Equal(t, "Stress_xy", tau.Name())
	assert.Equal(t, `$\sigma_{xy}$`, tau.LatexSymbol())
	assert.Equal(t, "xy", tau.Metadata()[ComponentKey])
	assert.Equal(t, KindTensorComponent, tau.Metadata()[KindKey])

	bx, ok := reg.Get("Bx")
	require.True(t, ok)
	assert.Equal(t, "MagneticField_x", bx.Name())
	assert.Equal(t, "B_x", bx.Symbol())
	assert.Equal(t, `$B_x$`, bx.LatexSymbol())
	assert.Equal(t, "Magnetic field x-component", bx.Description())
}

func TestThermal_RegionExclusion(t *testing.T) {
	reg, err := StandardRegistry(units.NewSystem())
	require.NoError(t, err)

	temp, err := reg.Lookup("temp")
	require.NoError(t, err)
	assert.False(t, temp.AppliesToRegion("Air"))
	assert.True(t, temp.AppliesToRegion("Copper"))

	k, err := reg.Lookup("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"Air"}, k.ExcludeRegions())

	q, err := reg.Lookup("q")
	require.NoError(t, err)
	assert.True(t, q.AppliesToRegion("Air"))

	c, err := temp.Convert(293.15, "degC")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, c, 1e-9)
}

func TestHydraulics_MassFlowRateIsUntyped(t *testing.T) {
	fields, err := Hydraulics.Group(units.NewSystem(), GroupFlowRate)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	assert.Equal(t, "FlowRate", fields[0].Name())
	assert.Equal(t, metadata.TypeFlowRate, fields[0].FieldType())
	assert.Equal(t, "MassFlowRate", fields[1].Name())
	assert.False(t, fields[1].HasType())
	assert.Equal(t, "kg/s", fields[1].Unit().Pretty())
}

func TestCatalog_Groups(t *testing.T) {
	assert.Equal(t,
		[]string{GroupForce, GroupStress, GroupStrain, GroupDisplacement, GroupMechanicalProperties},
		Mechanical.Groups())

	sys := units.NewSystem()
	reg := metadata.NewRegistry()
	require.NoError(t, Hydraulics.RegisterGroup(reg, sys, GroupVelocity))
	assert.Equal(t, 4, reg.Len())
	assert.True(t, reg.Has("velocity_z"))

	_, err := Hydraulics.Group(sys, "nope")
	assert.True(t, apperror.IsNotFound(err))
	assert.Error(t, Hydraulics.RegisterGroup(reg, sys, "nope"))
}

func TestMaterialRegistry(t *testing.T) {
	reg, err := MaterialRegistry(units.NewSystem())
	require.NoError(t, err)

	assert.Equal(t, 12, reg.Len())
	assert.Equal(t, []string{"material_property"}, reg.ListCategories())

	nu, ok := reg.Get("nu")
	require.True(t, ok)
	assert.Equal(t, "PoissonRatio", nu.Name())
	assert.Equal(t, PhysicsMechanical, nu.Metadata()[PhysicsKey])

	chi, ok := reg.Get("χ")
	require.True(t, ok)
	assert.Equal(t, metadata.TypeMagneticSusceptibility, chi.FieldType())
	assert.True(t, chi.Unit().IsDimensionless())

	assert.Equal(t,
		[]string{PhysicsMechanical, PhysicsElectrical, PhysicsThermal, PhysicsMagnetic},
		MaterialProperties.Groups())
}

func TestByName(t *testing.T) {
	c, err := ByName("thermal")
	require.NoError(t, err)
	assert.Equal(t, "thermal", c.Category())

	c, err = ByName("material_properties")
	require.NoError(t, err)
	assert.Equal(t, "material_property", c.Category())

	_, err = ByName("acoustics")
	assert.True(t, apperror.IsNotFound(err))

	assert.Len(t, Physics(), 4)
	assert.Len(t, All(), 5)
}
