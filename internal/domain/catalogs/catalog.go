// Package catalogs provides the standard field collections grouped by physics
// domain. Catalogs are declarative tables resolved against a unit system on
// demand, so every registry gets its own Field instances.
package catalogs

import (
	"fmt"
	"strings"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
)

// Metadata keys set on catalog fields besides metadata.CategoryKey.
const (
	KindKey      = "type"
	ComponentKey = "component"
	PhysicsKey   = "physics"
)

// Field kinds stored under KindKey.
const (
	KindScalar          = "scalar"
	KindComponent       = "component"
	KindVectorMagnitude = "vector_magnitude"
	KindTensorScalar    = "tensor_scalar"
	KindTensorComponent = "tensor_component"
	KindMaterial        = "material_property"
)

var (
	vectorAxes = []string{"x", "y", "z"}
	normalAxes = []string{"xx", "yy", "zz"}
	shearAxes  = []string{"xy", "xz", "yz"}
)

type entry struct {
	group       string
	name        string
	symbol      string
	unit        string
	fieldType   metadata.FieldType
	description string
	latex       string
	aliases     []string
	exclude     []string
	kind        string
	component   string
	physics     string
}

// Catalog is a named, ordered set of field definitions.
type Catalog struct {
	name     string
	category string
	entries  []entry
}

func (c Catalog) Name() string     { return c.name }
func (c Catalog) Category() string { return c.category }
func (c Catalog) Len() int         { return len(c.entries) }

// Groups returns the sub-collection names in first-appearance order.
func (c Catalog) Groups() []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range c.entries {
		if !seen[e.group] {
			seen[e.group] = true
			out = append(out, e.group)
		}
	}
	return out
}

// Fields builds every field of the catalog.
func (c Catalog) Fields(sys *units.System) ([]*metadata.Field, error) {
	return c.build(sys, "")
}

// Group builds the fields of one sub-collection.
func (c Catalog) Group(sys *units.System, group string) ([]*metadata.Field, error) {
	for _, g := range c.Groups() {
		if g == group {
			return c.build(sys, group)
		}
	}
	return nil, apperror.NewNotFound("field group", c.name+"/"+group)
}

// Register adds every field of the catalog to reg.
func (c Catalog) Register(reg *metadata.Registry, sys *units.System) error {
	fields, err := c.Fields(sys)
	if err != nil {
		return err
	}
	return reg.BulkRegister(fields...)
}

// RegisterGroup adds one sub-collection to reg.
func (c Catalog) RegisterGroup(reg *metadata.Registry, sys *units.System, group string) error {
	fields, err := c.Group(sys, group)
	if err != nil {
		return err
	}
	return reg.BulkRegister(fields...)
}

func (c Catalog) build(sys *units.System, group string) ([]*metadata.Field, error) {
	out := make([]*metadata.Field, 0, len(c.entries))
	for _, e := range c.entries {
		if group != "" && e.group != group {
			continue
		}
		f, err := metadata.NewField(sys, e.config(c.category))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: field %s: %w", c.name, e.name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (e entry) config(category string) metadata.FieldConfig {
	meta := map[string]any{metadata.CategoryKey: category}
	if e.kind != "" {
		meta[KindKey] = e.kind
	}
	if e.component != "" {
		meta[ComponentKey] = e.component
	}
	if e.physics != "" {
		meta[PhysicsKey] = e.physics
	}
	return metadata.FieldConfig{
		Name:           e.name,
		Symbol:         e.symbol,
		Unit:           e.unit,
		FieldType:      e.fieldType,
		Description:    e.description,
		LatexSymbol:    e.latex,
		Aliases:        e.aliases,
		ExcludeRegions: e.exclude,
		Metadata:       meta,
	}
}

// components derives per-axis entries from a magnitude entry. label prefixes
// the description, aliases supplies the per-axis aliases.
func components(base entry, label, kind string, axes []string, aliases func(axis string) []string) []entry {
	body := strings.Trim(base.latex, "$")
	out := make([]entry, 0, len(axes))
	for _, a := range axes {
		sub := "_" + a
		if len(a) > 1 {
			sub = "_{" + a + "}"
		}
		out = append(out, entry{
			group:       base.group,
			name:        base.name + "_" + a,
			symbol:      base.symbol + "_" + a,
			unit:        base.unit,
			fieldType:   base.fieldType,
			description: fmt.Sprintf("%s %s-component", label, a),
			latex:       "$" + body + sub + "$",
			aliases:     aliases(a),
			exclude:     base.exclude,
			kind:        kind,
			component:   a,
		})
	}
	return out
}

func join(parts ...[]entry) []entry {
	var out []entry
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
