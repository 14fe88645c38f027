package units

import (
	"fmt"
	"strings"
)

// BaseDimension indexes the SI base quantities.
type BaseDimension int

const (
	DimLength BaseDimension = iota
	DimMass
	DimTime
	DimCurrent
	DimTemperature
	DimAmount
	DimLuminosity

	numDimensions
)

var dimensionNames = [numDimensions]string{
	DimLength:      "length",
	DimMass:        "mass",
	DimTime:        "time",
	DimCurrent:     "current",
	DimTemperature: "temperature",
	DimAmount:      "substance",
	DimLuminosity:  "luminosity",
}

// Dimension is the exponent vector of a unit over the base dimensions.
// Angles are dimensionless.
type Dimension [numDimensions]int

// Base returns the dimension of a single base quantity.
func Base(d BaseDimension) Dimension {
	var out Dimension
	out[d] = 1
	return out
}

// Mul returns the dimension of a product.
func (d Dimension) Mul(o Dimension) Dimension {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

// Pow raises every exponent to n.
func (d Dimension) Pow(n int) Dimension {
	for i := range d {
		d[i] *= n
	}
	return d
}

// IsZero reports whether d is dimensionless.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// String renders d the way the unit library prints dimensionalities,
// e.g. "[mass] / [time] ** 2 / [current]".
func (d Dimension) String() string {
	if d.IsZero() {
		return "dimensionless"
	}
	var num, den []string
	for i, p := range d {
		if p == 0 {
			continue
		}
		part := "[" + dimensionNames[i] + "]"
		abs := p
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 {
			part += fmt.Sprintf(" ** %d", abs)
		}
		if p > 0 {
			num = append(num, part)
		} else {
			den = append(den, part)
		}
	}
	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, part := range den {
		b.WriteString(" / ")
		b.WriteString(part)
	}
	return b.String()
}
