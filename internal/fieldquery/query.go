// Package fieldquery filters fields with CEL expressions such as
//
//	category == "thermal" && "Air" in exclude_regions
//	field_type == "stress" || symbol.startsWith("σ")
package fieldquery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/patrickmn/go-cache"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/metadata"
)

// Variables exposed to expressions.
const (
	VarName           = "name"
	VarSymbol         = "symbol"
	VarUnit           = "unit"
	VarUnitSymbol     = "unit_symbol"
	VarDimension      = "dimension"
	VarFieldType      = "field_type"
	VarDomain         = "domain"
	VarCategory       = "category"
	VarDescription    = "description"
	VarAliases        = "aliases"
	VarExcludeRegions = "exclude_regions"
	VarMetadata       = "metadata"
	VarHasType        = "has_type"
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error

	programs = cache.New(30*time.Minute, 10*time.Minute)
)

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable(VarName, cel.StringType),
			cel.Variable(VarSymbol, cel.StringType),
			cel.Variable(VarUnit, cel.StringType),
			cel.Variable(VarUnitSymbol, cel.StringType),
			cel.Variable(VarDimension, cel.StringType),
			cel.Variable(VarFieldType, cel.StringType),
			cel.Variable(VarDomain, cel.StringType),
			cel.Variable(VarCategory, cel.StringType),
			cel.Variable(VarDescription, cel.StringType),
			cel.Variable(VarAliases, cel.ListType(cel.StringType)),
			cel.Variable(VarExcludeRegions, cel.ListType(cel.StringType)),
			cel.Variable(VarMetadata, cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable(VarHasType, cel.BoolType),
		)
	})
	return env, envErr
}

// Filter is a compiled boolean expression over a field.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression must yield a bool
// (or dyn, checked at evaluation).
func Compile(expr string) (*Filter, error) {
	if cached, ok := programs.Get(expr); ok {
		return cached.(*Filter), nil
	}

	e, err := environment()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	ast, iss := e.Compile(expr)
	if iss.Err() != nil {
		return nil, apperror.NewValidation("invalid filter expression").
			WithDetail("expression", expr).
			WithCause(iss.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, apperror.NewValidation(fmt.Sprintf("filter must evaluate to bool, got %s", out)).
			WithDetail("expression", expr)
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, apperror.NewValidation("invalid filter expression").
			WithDetail("expression", expr).
			WithCause(err)
	}

	f := &Filter{expr: expr, prg: prg}
	programs.SetDefault(expr, f)
	return f, nil
}

func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against one field.
func (f *Filter) Match(ctx context.Context, field *metadata.Field) (bool, error) {
	out, _, err := f.prg.ContextEval(ctx, Activation(field))
	if err != nil {
		return false, apperror.NewValidation("filter evaluation failed").
			WithDetail("expression", f.expr).
			WithDetail("field", field.Name()).
			WithCause(err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewValidation(fmt.Sprintf("filter returned %T, want bool", out.Value())).
			WithDetail("expression", f.expr)
	}
	return b, nil
}

// Apply keeps the fields the filter matches, preserving order.
func (f *Filter) Apply(ctx context.Context, fields []*metadata.Field) ([]*metadata.Field, error) {
	out := make([]*metadata.Field, 0, len(fields))
	for _, field := range fields {
		ok, err := f.Match(ctx, field)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, field)
		}
	}
	return out, nil
}

// Select compiles expr and applies it. An empty expression matches everything.
func Select(ctx context.Context, expr string, fields []*metadata.Field) ([]*metadata.Field, error) {
	if expr == "" {
		return fields, nil
	}
	f, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return f.Apply(ctx, fields)
}

// Activation returns the variable bindings for field.
func Activation(field *metadata.Field) map[string]any {
	aliases := field.Aliases()
	if aliases == nil {
		aliases = []string{}
	}
	regions := field.ExcludeRegions()
	if regions == nil {
		regions = []string{}
	}
	meta := field.Metadata()
	if meta == nil {
		meta = map[string]any{}
	}

	var domain string
	if field.HasType() {
		domain = string(field.FieldType().Domain())
	}

	return map[string]any{
		VarName:           field.Name(),
		VarSymbol:         field.Symbol(),
		VarUnit:           field.Unit().String(),
		VarUnitSymbol:     field.Unit().Pretty(),
		VarDimension:      field.Unit().Dimension().String(),
		VarFieldType:      string(field.FieldType()),
		VarDomain:         domain,
		VarCategory:       field.Category(),
		VarDescription:    field.Description(),
		VarAliases:        aliases,
		VarExcludeRegions: regions,
		VarMetadata:       meta,
		VarHasType:        field.HasType(),
	}
}
