// Package magnetrun exports fields in the legacy magnetrun "fieldunits"
// layout and converts data through its input/output unit pairs.
package magnetrun

import (
	"encoding/json"
	"fmt"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
)

// UnitPair is the [input, output] unit couple of one legacy entry.
type UnitPair [2]units.Unit

func (p UnitPair) Input() units.Unit  { return p[0] }
func (p UnitPair) Output() units.Unit { return p[1] }

// Entry is the legacy per-field record. MSymbol is set only when the LaTeX
// symbol differs from Symbol, Val only when the field has a default value.
type Entry struct {
	Symbol  string
	MSymbol string
	Units   UnitPair
	Exclude []string
	Val     *float64
}

type entryJSON struct {
	Symbol  string    `json:"Symbol"`
	MSymbol string    `json:"mSymbol,omitempty"`
	Units   [2]string `json:"Units"`
	Exclude []string  `json:"Exclude"`
	Val     *float64  `json:"Val,omitempty"`
}

// MarshalJSON renders units by their long names, e.g. "volt / meter".
func (e Entry) MarshalJSON() ([]byte, error) {
	exclude := e.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	return json.Marshal(entryJSON{
		Symbol:  e.Symbol,
		MSymbol: e.MSymbol,
		Units:   [2]string{e.Units[0].String(), e.Units[1].String()},
		Exclude: exclude,
		Val:     e.Val,
	})
}

// FieldToDict builds the legacy entry of f. A nil or empty input/output unit
// falls back to the field's own unit.
func FieldToDict(f *metadata.Field, input, output any) (Entry, error) {
	if f == nil {
		return Entry{}, apperror.NewValidation("field must not be nil")
	}
	in, err := resolveOr(f, input)
	if err != nil {
		return Entry{}, err
	}
	out, err := resolveOr(f, output)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Symbol:  f.Symbol(),
		Units:   UnitPair{in, out},
		Exclude: f.ExcludeRegions(),
	}
	if l := f.LatexSymbol(); l != "" && l != f.Symbol() {
		e.MSymbol = l
	}
	if v, ok := f.DefaultValue(); ok {
		e.Val = &v
	}
	return e, nil
}

func resolveOr(f *metadata.Field, unit any) (units.Unit, error) {
	if unit == nil {
		return f.Unit(), nil
	}
	if s, ok := unit.(string); ok && s == "" {
		return f.Unit(), nil
	}
	return f.Units().Resolve(unit)
}

// FieldUnitsDict maps each field name to its legacy entry. distanceUnit must
// be a length unit; an empty value means meter.
func FieldUnitsDict(sys *units.System, fields []*metadata.Field, distanceUnit string) (map[string]Entry, error) {
	if sys == nil {
		sys = units.Default()
	}
	if distanceUnit == "" {
		distanceUnit = "meter"
	}
	if !sys.AreCompatible(distanceUnit, "meter") {
		return nil, apperror.NewValidation(fmt.Sprintf("distance unit '%s' is not a length", distanceUnit)).
			WithDetail("distance_unit", distanceUnit)
	}

	out := make(map[string]Entry, len(fields))
	for _, f := range fields {
		e, err := FieldToDict(f, nil, nil)
		if err != nil {
			return nil, err
		}
		out[f.Name()] = e
	}
	return out, nil
}

// Pairs extracts the unit pairs of a fieldunits dict.
func Pairs(dict map[string]Entry) map[string]UnitPair {
	out := make(map[string]UnitPair, len(dict))
	for name, e := range dict {
		out[name] = e.Units
	}
	return out
}

// ParsePairs resolves a legacy {"name": [input, output]} table of unit strings.
func ParsePairs(sys *units.System, raw map[string][2]string) (map[string]UnitPair, error) {
	if sys == nil {
		sys = units.Default()
	}
	out := make(map[string]UnitPair, len(raw))
	for name, pair := range raw {
		in, err := sys.Parse(pair[0])
		if err != nil {
			return nil, err
		}
		o, err := sys.Parse(pair[1])
		if err != nil {
			return nil, err
		}
		out[name] = UnitPair{in, o}
	}
	return out, nil
}

// ConvertData converts values of field name from its input to its output
// unit. Values of a field missing from pairs are returned unchanged.
func ConvertData(pairs map[string]UnitPair, values []float64, name string) ([]float64, error) {
	pair, ok := pairs[name]
	if !ok {
		return values, nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		q, err := units.Quantity{Magnitude: v, Unit: pair.Input()}.To(pair.Output())
		if err != nil {
			return nil, err
		}
		out[i] = q.Magnitude
	}
	return out, nil
}

// ConvertValue is ConvertData for a single value.
func ConvertValue(pairs map[string]UnitPair, value float64, name string) (float64, error) {
	out, err := ConvertData(pairs, []float64{value}, name)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
