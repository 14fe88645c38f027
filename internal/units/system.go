// Package units implements the physical unit system behind fields: parsing of unit
// expressions, dimensional analysis, conversion, and compact symbolic rendering.
package units

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"magnetunits/internal/core/apperror"
)

// Sentinel causes attached to unit AppErrors, usable with errors.Is.
var (
	ErrUndefinedUnit  = errors.New("undefined unit")
	ErrDimensionality = errors.New("dimensionality mismatch")
	ErrOffsetUnit     = errors.New("offset unit in compound expression")
	ErrExponentRange  = errors.New("exponent out of range")
)

const (
	parseCacheTTL     = 30 * time.Minute
	parseCacheCleanup = 10 * time.Minute
)

// System is a registry of unit definitions. A System is safe for concurrent
// Parse calls; Define is expected at startup but is also guarded.
type System struct {
	mu      sync.RWMutex
	defs    map[string]*Definition // by canonical name
	order   []*Definition
	lookup  map[string]*Definition // name, symbol or alias
	symbols map[string]*Definition // symbols only, for prefix-symbol splitting
	names   map[string]*Definition // names and aliases, for prefix-name splitting
	cache   *cache.Cache
}

// NewSystem returns a System with SI base units, the builtin derived units and
// CustomDefinitions applied.
func NewSystem() *System {
	s := newBareSystem()
	for _, line := range CustomDefinitions {
		if err := s.Define(line); err != nil {
			panic(fmt.Sprintf("units: custom definition %q: %v", line, err))
		}
	}
	return s
}

func newBareSystem() *System {
	s := &System{
		defs:    make(map[string]*Definition),
		lookup:  make(map[string]*Definition),
		symbols: make(map[string]*Definition),
		names:   make(map[string]*Definition),
		cache:   cache.New(parseCacheTTL, parseCacheCleanup),
	}
	for _, b := range baseUnits {
		d := &Definition{
			Name:    b.name,
			Symbol:  b.symbol,
			Aliases: b.aliases,
			scale:   1,
			dim:     Base(b.dim),
			source:  b.name,
		}
		if err := s.add(d); err != nil {
			panic(fmt.Sprintf("units: base unit %q: %v", b.name, err))
		}
	}
	for _, line := range builtinDefinitions {
		if err := s.Define(line); err != nil {
			panic(fmt.Sprintf("units: builtin definition %q: %v", line, err))
		}
	}
	return s
}

var (
	defaultOnce   sync.Once
	defaultSystem *System
)

// Default returns the process-wide System, built on first use.
func Default() *System {
	defaultOnce.Do(func() {
		defaultSystem = NewSystem()
	})
	return defaultSystem
}

// Define adds a unit from a definition line, e.g. "Gauss = 1e-4 * tesla = G = gauss".
// Redefining a name with an identical line is a no-op.
func (s *System) Define(line string) error {
	dl, err := parseDefinitionLine(line)
	if err != nil {
		return err
	}
	source := strings.Join(strings.Fields(line), " ")

	s.mu.RLock()
	existing, ok := s.defs[dl.name]
	s.mu.RUnlock()
	if ok {
		if existing.source == source {
			return nil
		}
		return apperror.NewConflict(fmt.Sprintf("unit '%s' is already defined", dl.name)).
			WithDetail("unit", dl.name).
			WithDetail("definition", existing.source)
	}

	p, err := s.evaluate(dl.expr, true)
	if err != nil {
		return err
	}
	if p.unit.HasOffset() {
		return apperror.NewOffsetUnit(dl.expr).WithCause(ErrOffsetUnit)
	}

	d := &Definition{
		Name:    dl.name,
		Symbol:  dl.symbol,
		Aliases: dl.aliases,
		scale:   p.factor * p.unit.Scale(),
		offset:  dl.offset,
		dim:     p.unit.Dimension(),
		source:  source,
	}
	return s.add(d)
}

func (s *System) add(d *Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append([]string{d.Name}, d.Aliases...)
	if d.Symbol != "" {
		keys = append(keys, d.Symbol)
	}
	for _, k := range keys {
		if other, taken := s.lookup[k]; taken && other != d {
			return apperror.NewConflict(fmt.Sprintf("unit identifier '%s' is already used by '%s'", k, other.Name)).
				WithDetail("identifier", k).
				WithDetail("unit", other.Name)
		}
	}

	s.defs[d.Name] = d
	s.order = append(s.order, d)
	for _, k := range keys {
		s.lookup[k] = d
	}
	s.names[d.Name] = d
	for _, a := range d.Aliases {
		s.names[a] = d
	}
	if d.Symbol != "" {
		s.symbols[d.Symbol] = d
	}
	s.cache.Flush()
	return nil
}

// Definitions returns every definition in registration order.
func (s *System) Definitions() []*Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Definition(nil), s.order...)
}

// Lookup returns the definition registered under a name, symbol or alias.
func (s *System) Lookup(name string) (*Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.lookup[name]
	return d, ok
}

// resolveName maps one identifier to a term, splitting off an SI prefix when
// the identifier is not registered verbatim.
func (s *System) resolveName(name string) (Term, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.lookup[name]; ok {
		return Term{Def: d, Power: 1}, true
	}
	for i := range prefixes {
		pf := &prefixes[i]
		for _, ps := range append([]string{pf.Symbol}, pf.aliases...) {
			if rest, ok := strings.CutPrefix(name, ps); ok && rest != "" {
				if d, ok := s.symbols[rest]; ok {
					return Term{Prefix: pf, Def: d, Power: 1}, true
				}
			}
		}
		if rest, ok := strings.CutPrefix(name, pf.Name); ok && rest != "" {
			if d, ok := s.names[rest]; ok {
				return Term{Prefix: pf, Def: d, Power: 1}, true
			}
		}
	}
	return Term{}, false
}

// Parse resolves a unit expression. Supported syntax: '*', '·' or whitespace for
// products, '/', '**' or '^' with integer exponents, Unicode superscripts,
// parentheses, the literal 1, and SI prefixes. The empty string and
// "dimensionless" both parse to Dimensionless.
func (s *System) Parse(expr string) (Unit, error) {
	key := strings.TrimSpace(expr)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(Unit), nil
	}
	p, err := s.evaluate(key, false)
	if err != nil {
		return Unit{}, err
	}
	s.cache.SetDefault(key, p.unit)
	return p.unit, nil
}

// MustParse is like Parse but panics on error. Intended for static catalogs.
func (s *System) MustParse(expr string) Unit {
	u, err := s.Parse(expr)
	if err != nil {
		panic(fmt.Sprintf("units: parse %q: %v", expr, err))
	}
	return u
}

func (s *System) evaluate(expr string, allowFactor bool) (parsed, error) {
	if expr == "" {
		return parsed{Dimensionless, 1}, nil
	}
	toks, err := tokenize(expr)
	if err != nil {
		return parsed{}, apperror.NewValidation(fmt.Sprintf("invalid unit expression '%s'", expr)).
			WithDetail("unit", expr).WithCause(err)
	}
	p := &parser{sys: s, toks: toks, factor: allowFactor}
	out, err := p.expr()
	if err == nil && p.peek().kind != tokEOF {
		err = fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	if err != nil {
		var undef *undefinedError
		if errors.As(err, &undef) {
			return parsed{}, apperror.NewUndefinedUnit(undef.name).
				WithDetail("expression", expr).
				WithCause(ErrUndefinedUnit)
		}
		return parsed{}, apperror.NewValidation(fmt.Sprintf("invalid unit expression '%s'", expr)).
			WithDetail("unit", expr).WithCause(err)
	}
	return out, nil
}

// Resolve accepts a unit expression string, a Unit or a *Unit.
func (s *System) Resolve(unit any) (Unit, error) {
	switch u := unit.(type) {
	case string:
		return s.Parse(u)
	case Unit:
		return u, nil
	case *Unit:
		if u == nil {
			return Unit{}, apperror.NewValidation("unit must not be nil")
		}
		return *u, nil
	case fmt.Stringer:
		return s.Parse(u.String())
	default:
		return Unit{}, apperror.NewValidation(fmt.Sprintf("unsupported unit value of type %T", unit))
	}
}
