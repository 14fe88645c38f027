package metadata

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/units"
)

// CategoryKey is the reserved metadata key used for registry grouping.
const CategoryKey = "category"

// FieldConfig holds the construction inputs of a Field.
// Unit accepts a unit expression string, units.Unit or *units.Unit.
type FieldConfig struct {
	Name           string
	Symbol         string
	Unit           any
	FieldType      FieldType
	Description    string
	LatexSymbol    string
	Aliases        []string
	ExcludeRegions []string
	DefaultValue   *float64
	Metadata       map[string]any
}

// Field is a named physical quantity with a resolved unit. Identity, unit and
// type are fixed at construction.
type Field struct {
	sys *units.System

	name           string
	symbol         string
	unit           units.Unit
	fieldType      FieldType
	description    string
	latexSymbol    string
	aliases        []string
	excludeRegions map[string]struct{}
	defaultValue   *float64
	metadata       map[string]any
}

// NewField resolves the unit once and, for typed fields, enforces dimensional
// compatibility with the type's default unit.
func NewField(sys *units.System, cfg FieldConfig) (*Field, error) {
	if sys == nil {
		sys = units.Default()
	}
	if cfg.Name == "" {
		return nil, apperror.NewValidation("field name is required")
	}

	unit, err := resolveUnit(sys, cfg.Unit)
	if err != nil {
		return nil, err
	}

	if cfg.FieldType != TypeNone {
		if !cfg.FieldType.IsValid() {
			return nil, apperror.NewValidation(fmt.Sprintf("unknown field type '%s'", string(cfg.FieldType))).
				WithDetail("field", cfg.Name)
		}
		if !cfg.FieldType.IsCompatible(sys, unit) {
			return nil, apperror.NewIncompatibleFieldType(unit.String(), cfg.FieldType.EnumName(), cfg.FieldType.DefaultUnitExpr()).
				WithDetail("field", cfg.Name)
		}
	}

	f := &Field{
		sys:            sys,
		name:           cfg.Name,
		symbol:         cfg.Symbol,
		unit:           unit,
		fieldType:      cfg.FieldType,
		description:    cfg.Description,
		latexSymbol:    cfg.LatexSymbol,
		aliases:        slices.Clone(cfg.Aliases),
		excludeRegions: make(map[string]struct{}, len(cfg.ExcludeRegions)),
		metadata:       maps.Clone(cfg.Metadata),
	}
	if f.latexSymbol == "" {
		f.latexSymbol = f.symbol
	}
	if f.aliases == nil {
		f.aliases = []string{}
	}
	if f.metadata == nil {
		f.metadata = map[string]any{}
	}
	for _, r := range cfg.ExcludeRegions {
		f.excludeRegions[r] = struct{}{}
	}
	if cfg.DefaultValue != nil {
		v := *cfg.DefaultValue
		f.defaultValue = &v
	}
	return f, nil
}

// MustNewField is like NewField but panics on error. Used by static catalogs.
func MustNewField(sys *units.System, cfg FieldConfig) *Field {
	f, err := NewField(sys, cfg)
	if err != nil {
		panic(fmt.Sprintf("metadata: field %q: %v", cfg.Name, err))
	}
	return f
}

// FieldFromType builds a field from a taxonomy entry. Name, Symbol, Unit and
// LatexSymbol left empty in cfg are taken from the type; the name defaults to
// the enum name ("MAGNETIC_FIELD"). An incompatible override unit still fails.
func FieldFromType(sys *units.System, ft FieldType, cfg FieldConfig) (*Field, error) {
	if sys == nil {
		sys = units.Default()
	}
	if !ft.IsValid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown field type '%s'", string(ft)))
	}
	if cfg.Name == "" {
		cfg.Name = ft.EnumName()
	}
	if cfg.Symbol == "" {
		cfg.Symbol = ft.DefaultSymbol()
	}
	if isEmptyUnit(cfg.Unit) {
		cfg.Unit = ft.DefaultUnitExpr()
	}
	if cfg.LatexSymbol == "" {
		cfg.LatexSymbol = ft.LatexSymbol()
	}
	cfg.FieldType = ft
	return NewField(sys, cfg)
}

func isEmptyUnit(u any) bool {
	switch v := u.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *units.Unit:
		return v == nil
	}
	return false
}

func resolveUnit(sys *units.System, unit any) (units.Unit, error) {
	if unit == nil {
		return units.Dimensionless, nil
	}
	return sys.Resolve(unit)
}

func (f *Field) Name() string { return f.name }
func (f *Field) Symbol() string { return f.symbol }
func (f *Field) Unit() units.Unit { return f.unit }
func (f *Field) FieldType() FieldType { return f.fieldType }
func (f *Field) Description() string { return f.description }
func (f *Field) LatexSymbol() string { return f.latexSymbol }
func (f *Field) Aliases() []string { return slices.Clone(f.aliases) }
func (f *Field) Units() *units.System { return f.sys }
func (f *Field) HasType() bool { return f.fieldType != TypeNone }
func (f *Field) Metadata() map[string]any { return maps.Clone(f.metadata) }

// ExcludeRegions returns the excluded region names, sorted.
func (f *Field) ExcludeRegions() []string {
	return slices.Sorted(maps.Keys(f.excludeRegions))
}

// DefaultValue returns the optional default and whether it is set.
func (f *Field) DefaultValue() (float64, bool) {
	if f.defaultValue == nil {
		return 0, false
	}
	return *f.defaultValue, true
}

// Category returns metadata["category"] when it is a string.
func (f *Field) Category() string {
	c, _ := f.metadata[CategoryKey].(string)
	return c
}

// Convert converts value from the field unit to target.
func (f *Field) Convert(value float64, target any) (float64, error) {
	return f.sys.ConvertValue(value, f.unit, target)
}

// ConvertArray converts values element-wise, preserving order and length.
func (f *Field) ConvertArray(values []float64, target any) ([]float64, error) {
	return f.sys.ConvertArray(values, f.unit, target)
}

// ConvertDecimal converts a decimal magnitude. Arithmetic runs in float64 and
// the result is the shortest decimal that round-trips.
func (f *Field) ConvertDecimal(value decimal.Decimal, target any) (decimal.Decimal, error) {
	out, err := f.Convert(value.InexactFloat64(), target)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromFloat(out), nil
}

// ValidateValue reports whether value can form a quantity in the field unit.
// Nil, strings, containers and booleans are rejected. It never panics.
func (f *Field) ValidateValue(value any) bool {
	_, err := f.sys.NewQuantity(value, f.unit)
	return err == nil
}

// AppliesToRegion is false iff region is listed in the exclusions (exact match).
func (f *Field) AppliesToRegion(region string) bool {
	_, excluded := f.excludeRegions[region]
	return !excluded
}

// FormatLabel returns the symbol (or LaTeX symbol) followed by " [unit]" when a
// target unit is given, e.g. "B [mT]". A nil or empty target renders the symbol alone.
func (f *Field) FormatLabel(target any, useLatex bool) (string, error) {
	symbol := f.symbol
	if useLatex {
		symbol = f.latexSymbol
	}
	if isEmptyUnit(target) {
		return symbol, nil
	}
	u, err := f.sys.Resolve(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s [%s]", symbol, u.Pretty()), nil
}

// String renders a debugging representation.
func (f *Field) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Field(name=%q, symbol=%q, unit=%q", f.name, f.symbol, f.unit.String())
	if f.fieldType != TypeNone {
		fmt.Fprintf(&b, ", type=%s", f.fieldType.EnumName())
	}
	b.WriteString(")")
	return b.String()
}
