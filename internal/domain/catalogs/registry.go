package catalogs

import (
	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
)

// Physics returns the domain catalogs registered by RegisterAll, in registration order.
func Physics() []Catalog {
	return []Catalog{Electromagnetic, Thermal, Hydraulics, Mechanical}
}

// All returns every catalog including MaterialProperties.
func All() []Catalog {
	return append(Physics(), MaterialProperties)
}

// ByName finds a catalog by its name.
func ByName(name string) (Catalog, error) {
	for _, c := range All() {
		if c.name == name {
			return c, nil
		}
	}
	return Catalog{}, apperror.NewNotFound("catalog", name)
}

// RegisterAll registers the physics catalogs into reg. Symbols shared across
// domains (E, ν) resolve to the later catalog.
func RegisterAll(reg *metadata.Registry, sys *units.System) error {
	for _, c := range Physics() {
		if err := c.Register(reg, sys); err != nil {
			return err
		}
	}
	return nil
}

// StandardRegistry returns a fresh registry holding the physics catalogs.
func StandardRegistry(sys *units.System) (*metadata.Registry, error) {
	reg := metadata.NewRegistry()
	if err := RegisterAll(reg, sys); err != nil {
		return nil, err
	}
	return reg, nil
}

// MaterialRegistry returns a fresh registry holding only material properties.
func MaterialRegistry(sys *units.System) (*metadata.Registry, error) {
	reg := metadata.NewRegistry()
	if err := MaterialProperties.Register(reg, sys); err != nil {
		return nil, err
	}
	return reg, nil
}
