package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"magnetunits/internal/compat/magnetrun"
	"magnetunits/internal/fieldquery"
	"magnetunits/internal/metadata"
)

func (a *app) typesCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the field type taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			types := metadata.InspectTypes()
			if domain != "" {
				kept := types[:0]
				for _, t := range types {
					if t.Domain == domain {
						kept = append(kept, t)
					}
				}
				types = kept
			}
			return a.out.value(types, func(w io.Writer) error {
				rows := make([][]string, 0, len(types))
				for _, t := range types {
					rows = append(rows, []string{t.Key, t.Domain, t.DefaultUnit, t.Symbol})
				}
				return table(w, []string{"key", "domain", "unit", "symbol"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "only types of this domain")
	return cmd
}

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name|symbol|alias>",
		Short: "Resolve a field and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			d := metadata.Inspect(f)
			return a.out.value(d, func(w io.Writer) error {
				rows := [][]string{
					{"name", d.Name},
					{"symbol", d.Symbol},
					{"latex", d.LatexSymbol},
					{"unit", d.Unit + " (" + d.UnitSymbol + ")"},
					{"dimension", d.Dimension},
					{"type", d.FieldType},
					{"category", d.Category},
					{"description", d.Description},
					{"aliases", strings.Join(d.Aliases, ", ")},
					{"excluded", strings.Join(d.ExcludeRegions, ", ")},
				}
				return table(w, []string{"property", "value"}, rows)
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var category, where string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered fields",
		Long: `List registered fields, optionally restricted to a category and a CEL expression.

Examples:
  fieldctl list --category thermal
  fieldctl list --where 'field_type == "pressure"'
  fieldctl list --where '"Air" in exclude_regions' -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := fieldquery.Select(cmd.Context(), where, a.registry.ListFields(category))
			if err != nil {
				return err
			}
			descs := metadata.InspectAll(fields)
			return a.out.value(descs, func(w io.Writer) error {
				rows := make([][]string, 0, len(descs))
				for _, d := range descs {
					rows = append(rows, []string{d.Name, d.Symbol, d.UnitSymbol, d.FieldType, d.Category})
				}
				return table(w, []string{"name", "symbol", "unit", "type", "category"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only fields of this category")
	cmd.Flags().StringVar(&where, "where", "", "CEL filter expression")
	return cmd
}

type conversion struct {
	Field string          `json:"field" yaml:"field"`
	Value decimal.Decimal `json:"value" yaml:"value"`
	From  string          `json:"from" yaml:"from"`
	To    string          `json:"to" yaml:"to"`
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <field> <value> <unit>",
		Short: "Convert a value from the field unit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			target, err := a.sys.Resolve(args[2])
			if err != nil {
				return err
			}
			out, err := f.ConvertDecimal(value, target)
			if err != nil {
				return err
			}
			res := conversion{Field: f.Name(), Value: out, From: f.Unit().Pretty(), To: target.Pretty()}
			return a.out.value(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s %s\n", out.String(), target.Pretty())
				return err
			})
		},
	}
}

func (a *app) labelCmd() *cobra.Command {
	var latex bool
	cmd := &cobra.Command{
		Use:   "label <field> [unit]",
		Short: "Print an axis label such as \"B [mT]\"",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			unit := ""
			if len(args) == 2 {
				unit = args[1]
			}
			label, err := f.FormatLabel(unit, latex)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), label)
			return err
		},
	}
	cmd.Flags().BoolVar(&latex, "latex", false, "use the LaTeX symbol")
	return cmd
}

type inspection struct {
	Name     string                     `json:"name" yaml:"name"`
	Columns  []string                   `json:"columns" yaml:"columns"`
	Fields   []metadata.FieldDescriptor `json:"fields" yaml:"fields"`
	Warnings []string                   `json:"warnings" yaml:"warnings"`
}

func (a *app) inspectCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "inspect <format-file>",
		Short: "Load a format description and report its fields and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res := inspection{
				Name:     def.Name(),
				Columns:  def.ColumnNames(),
				Fields:   metadata.InspectAll(def.Fields()),
				Warnings: def.Warnings(),
			}
			err = a.out.value(res, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, def.Summary()); err != nil {
					return err
				}
				for _, warning := range res.Warnings {
					if _, err := fmt.Fprintln(w, "warning: "+warning); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if strict && len(res.Warnings) > 0 {
				return fmt.Errorf("%s: %d warning(s)", def.Name(), len(res.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the description produced warnings")
	return cmd
}

func (a *app) magnetrunCmd() *cobra.Command {
	var distance string
	cmd := &cobra.Command{
		Use:   "magnetrun <format-file>",
		Short: "Print the legacy units dictionary of a format",
		Long: `Print the per-field unit dictionary used by magnetrun-style tools:
{"<field>": {"Symbol", "mSymbol", "Units": [input, output], "Exclude", "Val"}}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dict, err := magnetrun.FieldUnitsDict(a.sys, def.Fields(), distance)
			if err != nil {
				return err
			}
			// the dictionary is a JSON contract, yaml output keeps it JSON
			if a.out.structured() {
				return a.out.json(dict)
			}
			names := make([]string, 0, len(dict))
			for n := range dict {
				names = append(names, n)
			}
			sort.Strings(names)
			rows := make([][]string, 0, len(names))
			for _, n := range names {
				e := dict[n]
				rows = append(rows, []string{n, e.Symbol, e.Units.Input().Pretty(), e.Units.Output().Pretty()})
			}
			return table(cmd.OutOrStdout(), []string{"field", "symbol", "input", "output"}, rows)
		},
	}
	cmd.Flags().StringVar(&distance, "distance-unit", "meter", "length unit for coordinate fields")
	return cmd
}
