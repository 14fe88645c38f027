package metadata

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"magnetunits/internal/core/apperror"
)

// DuplicatePolicy controls what Register does with an already registered name.
type DuplicatePolicy int

const (
	// DuplicateOverwrite replaces the previous field silently.
	DuplicateOverwrite DuplicatePolicy = iota
	// DuplicateReject fails with CodeDuplicate.
	DuplicateReject
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDuplicatePolicy sets the duplicate-name policy. Default is DuplicateOverwrite.
func WithDuplicatePolicy(p DuplicatePolicy) RegistryOption {
	return func(r *Registry) { r.policy = p }
}

// Registry indexes fields by name, symbol, alias and category.
// It is not safe for concurrent mutation; callers serialize access.
type Registry struct {
	policy DuplicatePolicy

	fields     map[string]*Field
	order      []string
	bySymbol   map[string]*Field
	byAlias    map[string][]*Field
	byCategory map[string][]*Field
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.fields = make(map[string]*Field)
	r.order = nil
	r.bySymbol = make(map[string]*Field)
	r.byAlias = make(map[string][]*Field)
	r.byCategory = make(map[string][]*Field)
}

// Register inserts f under its name. The symbol index is last-writer-wins and
// every alias appends f to its bucket.
func (r *Registry) Register(f *Field) error {
	if f == nil {
		return apperror.NewValidation("cannot register a nil field")
	}

	if prev, exists := r.fields[f.name]; exists {
		if r.policy == DuplicateReject {
			return apperror.NewDuplicate("field", "name", f.name)
		}
		if prev != f {
			r.unindex(prev)
		}
	} else {
		r.order = append(r.order, f.name)
	}

	r.fields[f.name] = f
	if f.symbol != "" {
		r.bySymbol[f.symbol] = f
	}
	for _, alias := range f.aliases {
		r.byAlias[alias] = append(r.byAlias[alias], f)
	}
	if c := f.Category(); c != "" && !slices.Contains(r.byCategory[c], f) {
		r.byCategory[c] = append(r.byCategory[c], f)
	}
	return nil
}

// BulkRegister registers fields in order. On error, fields registered before
// the failing one stay registered.
func (r *Registry) BulkRegister(fields ...*Field) error {
	for _, f := range fields {
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves an identifier by name, then symbol, then alias. An alias
// resolves only when exactly one distinct field carries it.
func (r *Registry) Get(identifier string) (*Field, bool) {
	if f, ok := r.fields[identifier]; ok {
		return f, true
	}
	if f, ok := r.bySymbol[identifier]; ok {
		return f, true
	}
	bucket := r.byAlias[identifier]
	if len(bucket) == 0 {
		return nil, false
	}
	for _, f := range bucket[1:] {
		if f != bucket[0] {
			return nil, false
		}
	}
	return bucket[0], true
}

// Lookup is Get returning a NOT_FOUND error on a miss.
func (r *Registry) Lookup(identifier string) (*Field, error) {
	if f, ok := r.Get(identifier); ok {
		return f, nil
	}
	err := apperror.NewNotFound("field", identifier)
	if r.isAmbiguousAlias(identifier) {
		err = err.WithDetail("reason", "ambiguous alias")
	}
	return nil, err
}

func (r *Registry) isAmbiguousAlias(identifier string) bool {
	bucket := r.byAlias[identifier]
	for _, f := range bucket {
		if f != bucket[0] {
			return true
		}
	}
	return false
}

// Has reports whether Get would find identifier.
func (r *Registry) Has(identifier string) bool {
	_, ok := r.Get(identifier)
	return ok
}

// ListFields returns fields in registration order, optionally restricted to a category.
func (r *Registry) ListFields(category string) []*Field {
	out := make([]*Field, 0, len(r.order))
	for _, name := range r.order {
		f := r.fields[name]
		if category != "" && !slices.Contains(r.byCategory[category], f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ListCategories returns the known categories, sorted.
func (r *Registry) ListCategories() []string {
	out := make([]string, 0, len(r.byCategory))
	for c := range r.byCategory {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Remove deletes the field registered under name. It returns false and
// changes nothing when the name is unknown.
func (r *Registry) Remove(name string) bool {
	f, ok := r.fields[name]
	if !ok {
		return false
	}
	delete(r.fields, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	r.unindex(f)
	return true
}

// unindex purges f from the symbol, alias and category indices. A symbol
// owned by f passes to the latest remaining field that carries it.
func (r *Registry) unindex(f *Field) {
	if r.bySymbol[f.symbol] == f {
		delete(r.bySymbol, f.symbol)
		for i := len(r.order) - 1; i >= 0; i-- {
			if g := r.fields[r.order[i]]; g != nil && g != f && g.symbol == f.symbol {
				r.bySymbol[f.symbol] = g
				break
			}
		}
	}
	for _, alias := range f.aliases {
		bucket := slices.DeleteFunc(r.byAlias[alias], func(x *Field) bool { return x == f })
		if len(bucket) == 0 {
			delete(r.byAlias, alias)
		} else {
			r.byAlias[alias] = bucket
		}
	}
	if c := f.Category(); c != "" {
		bucket := slices.DeleteFunc(r.byCategory[c], func(x *Field) bool { return x == f })
		if len(bucket) == 0 {
			delete(r.byCategory, c)
		} else {
			r.byCategory[c] = bucket
		}
	}
}

// Clear empties every index.
func (r *Registry) Clear() {
	r.reset()
}

func (r *Registry) Len() int {
	return len(r.fields)
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d fields)", len(r.fields))
}

// RegistrySummary is a count-only view of a registry.
type RegistrySummary struct {
	Fields     int            `json:"fields"`
	Symbols    int            `json:"symbols"`
	Aliases    int            `json:"aliases"`
	Categories map[string]int `json:"categories"`
}

func (r *Registry) Summary() RegistrySummary {
	s := RegistrySummary{
		Fields:     len(r.fields),
		Symbols:    len(r.bySymbol),
		Aliases:    len(r.byAlias),
		Categories: make(map[string]int, len(r.byCategory)),
	}
	for c, bucket := range r.byCategory {
		s.Categories[c] = len(bucket)
	}
	return s
}

// Describe renders the summary as text, one category per line.
func (s RegistrySummary) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d fields, %d symbols, %d aliases\n", s.Fields, s.Symbols, s.Aliases)
	cats := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(&b, "  %s: %d\n", c, s.Categories[c])
	}
	return b.String()
}
