package units

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"

	"magnetunits/internal/core/apperror"
)

// Quantity is a magnitude paired with a unit.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

// String renders the quantity with its pretty unit, e.g. "1.5 T".
func (q Quantity) String() string {
	mag := strconv.FormatFloat(q.Magnitude, 'g', -1, 64)
	if p := q.Unit.Pretty(); p != "" {
		return mag + " " + p
	}
	return mag
}

// To converts q to target. Offset units convert affinely when they stand alone.
func (q Quantity) To(target Unit) (Quantity, error) {
	v, err := convert(q.Magnitude, q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: v, Unit: target}, nil
}

// NewQuantity builds a quantity from any real numeric value and a unit
// (string, Unit or *Unit).
func (s *System) NewQuantity(value any, unit any) (Quantity, error) {
	f, ok := ToFloat(value)
	if !ok {
		return Quantity{}, apperror.NewValidation(fmt.Sprintf("value of type %T is not a real number", value))
	}
	u, err := s.Resolve(unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: f, Unit: u}, nil
}

// ConvertValue converts a magnitude between two units.
func (s *System) ConvertValue(value float64, from, to any) (float64, error) {
	fu, err := s.Resolve(from)
	if err != nil {
		return 0, err
	}
	tu, err := s.Resolve(to)
	if err != nil {
		return 0, err
	}
	return convert(value, fu, tu)
}

// ConvertArray converts every element, preserving length and order.
func (s *System) ConvertArray(values []float64, from, to any) ([]float64, error) {
	fu, err := s.Resolve(from)
	if err != nil {
		return nil, err
	}
	tu, err := s.Resolve(to)
	if err != nil {
		return nil, err
	}
	if err := checkConvertible(fu, tu); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = apply(v, fu, tu)
	}
	return out, nil
}

// AreCompatible reports whether two units share a dimension. Unparseable units
// are never compatible.
func (s *System) AreCompatible(a, b any) bool {
	au, err := s.Resolve(a)
	if err != nil {
		return false
	}
	bu, err := s.Resolve(b)
	if err != nil {
		return false
	}
	return au.Dimension() == bu.Dimension()
}

// UnitString renders a unit. Strings are returned unchanged.
func UnitString(unit any, pretty bool) string {
	switch u := unit.(type) {
	case string:
		return u
	case Unit:
		if pretty {
			return u.Pretty()
		}
		return u.String()
	case *Unit:
		if u == nil {
			return ""
		}
		return UnitString(*u, pretty)
	default:
		return fmt.Sprint(unit)
	}
}

func checkConvertible(from, to Unit) error {
	if from.Dimension() != to.Dimension() {
		return apperror.NewDimensionality(from.String(), to.String(),
			from.Dimension().String(), to.Dimension().String()).
			WithCause(ErrDimensionality)
	}
	for _, u := range []Unit{from, to} {
		if _, lone := u.offsetTerm(); u.HasOffset() && !lone {
			return apperror.NewOffsetUnit(u.String()).WithCause(ErrOffsetUnit)
		}
	}
	return nil
}

func convert(value float64, from, to Unit) (float64, error) {
	if err := checkConvertible(from, to); err != nil {
		return 0, err
	}
	return apply(value, from, to), nil
}

// apply assumes checkConvertible passed.
func apply(value float64, from, to Unit) float64 {
	if from.Equal(to) {
		return value
	}
	si := value * from.Scale()
	if t, ok := from.offsetTerm(); ok {
		si += t.Def.offset
	}
	if t, ok := to.offsetTerm(); ok {
		si -= t.Def.offset
	}
	return si / to.Scale()
}

// ToFloat converts real numeric values, including decimal.Decimal, to float64.
// Booleans, strings, complex numbers and containers are rejected.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case *decimal.Decimal:
		if v == nil {
			return 0, false
		}
		return v.InexactFloat64(), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
