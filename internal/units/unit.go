package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Term is one factor of a unit expression: an optionally prefixed definition raised to a power.
type Term struct {
	Prefix *Prefix
	Def    *Definition
	Power  int
}

func (t Term) factor() float64 {
	f := t.Def.scale
	if t.Prefix != nil {
		f *= t.Prefix.Factor
	}
	return f
}

func (t Term) sameBase(o Term) bool {
	return t.Def == o.Def && t.Prefix == o.Prefix
}

func (t Term) longName() string {
	if t.Prefix != nil {
		return t.Prefix.Name + t.Def.Name
	}
	return t.Def.Name
}

func (t Term) shortName() string {
	if t.Prefix != nil {
		return t.Prefix.Symbol + t.Def.display()
	}
	return t.Def.display()
}

// MaxExponent bounds the power of any single factor of a Unit.
const MaxExponent = 64

// Unit is a parsed unit expression. The zero value is dimensionless.
type Unit struct {
	terms []Term
}

// Dimensionless is the unit of pure numbers.
var Dimensionless = Unit{}

// Terms returns a copy of the canonical factor list.
func (u Unit) Terms() []Term {
	return append([]Term(nil), u.terms...)
}

// IsDimensionless reports whether u has no dimension and unit scale.
func (u Unit) IsDimensionless() bool {
	return u.Dimension().IsZero() && u.Scale() == 1
}

// Dimension returns the SI dimension vector of u.
func (u Unit) Dimension() Dimension {
	var d Dimension
	for _, t := range u.terms {
		d = d.Mul(t.Def.dim.Pow(t.Power))
	}
	return d
}

// Scale returns the multiplicative factor from u to SI base units.
func (u Unit) Scale() float64 {
	s := 1.0
	for _, t := range u.terms {
		s *= math.Pow(t.factor(), float64(t.Power))
	}
	return s
}

// offsetTerm returns the offset definition if u is exactly one offset unit to the first power.
func (u Unit) offsetTerm() (Term, bool) {
	if len(u.terms) == 1 && u.terms[0].Power == 1 && u.terms[0].Def.IsOffset() {
		return u.terms[0], true
	}
	return Term{}, false
}

// HasOffset reports whether u involves an offset unit anywhere.
func (u Unit) HasOffset() bool {
	for _, t := range u.terms {
		if t.Def.IsOffset() {
			return true
		}
	}
	return false
}

// Equal reports structural equality of canonical forms.
func (u Unit) Equal(o Unit) bool {
	if len(u.terms) != len(o.terms) {
		return false
	}
	for i := range u.terms {
		if !u.terms[i].sameBase(o.terms[i]) || u.terms[i].Power != o.terms[i].Power {
			return false
		}
	}
	return true
}

// Mul returns u·o.
func (u Unit) Mul(o Unit) (Unit, error) {
	return canonical(append(u.Terms(), o.terms...))
}

// Div returns u/o.
func (u Unit) Div(o Unit) (Unit, error) {
	inv, err := o.Pow(-1)
	if err != nil {
		return Unit{}, err
	}
	return u.Mul(inv)
}

// Pow returns u raised to n. Exponents, and the powers they produce, are
// limited to ±MaxExponent.
func (u Unit) Pow(n int) (Unit, error) {
	if abs(n) > MaxExponent {
		return Unit{}, fmt.Errorf("exponent %d: %w", n, ErrExponentRange)
	}
	out := make([]Term, len(u.terms))
	for i, t := range u.terms {
		if abs(t.Power) > MaxExponent {
			return Unit{}, fmt.Errorf("power %d of %s: %w", t.Power, t.longName(), ErrExponentRange)
		}
		t.Power *= n
		out[i] = t
	}
	return canonical(out)
}

// canonical merges repeated factors, keeping first-appearance order, and drops zero powers.
func canonical(terms []Term) (Unit, error) {
	var out []Term
	for _, t := range terms {
		merged := false
		for i := range out {
			if out[i].sameBase(t) {
				out[i].Power += t.Power
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, t)
		}
	}
	kept := out[:0]
	for _, t := range out {
		if abs(t.Power) > MaxExponent {
			return Unit{}, fmt.Errorf("power %d of %s: %w", t.Power, t.longName(), ErrExponentRange)
		}
		if t.Power != 0 {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return Unit{}, nil
	}
	return Unit{terms: kept}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// String returns the long form, e.g. "volt / meter" or "meter ** 3 / hour".
// The result parses back to an equal unit.
func (u Unit) String() string {
	if len(u.terms) == 0 {
		return "dimensionless"
	}
	var num, den []string
	for _, t := range u.terms {
		p := t.Power
		if p < 0 {
			p = -p
		}
		s := t.longName()
		if p != 1 {
			s += " ** " + strconv.Itoa(p)
		}
		if t.Power > 0 {
			num = append(num, s)
		} else {
			den = append(den, s)
		}
	}
	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, s := range den {
		b.WriteString(" / ")
		b.WriteString(s)
	}
	return b.String()
}

// Pretty returns the compact symbolic form, e.g. "V/m", "T", "m³/h", "W/(m·K)", "1/K".
// Dimensionless renders as the empty string.
func (u Unit) Pretty() string {
	if len(u.terms) == 0 {
		return ""
	}
	var num, den []string
	for _, t := range u.terms {
		p := t.Power
		if p < 0 {
			p = -p
		}
		s := t.shortName()
		if p != 1 {
			s += superscript(p)
		}
		if t.Power > 0 {
			num = append(num, s)
		} else {
			den = append(den, s)
		}
	}
	out := strings.Join(num, "·")
	if out == "" {
		out = "1"
	}
	switch len(den) {
	case 0:
	case 1:
		out += "/" + den[0]
	default:
		out += "/(" + strings.Join(den, "·") + ")"
	}
	return out
}

var superscriptDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(n int) string {
	var b strings.Builder
	for _, r := range strconv.Itoa(n) {
		b.WriteRune(superscriptDigits[r-'0'])
	}
	return b.String()
}
