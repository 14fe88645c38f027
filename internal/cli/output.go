package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

type printer struct {
	w    io.Writer
	mode string
}

func newPrinter(w io.Writer, mode string) (*printer, error) {
	switch mode {
	case "", "text":
		return &printer{w: w, mode: "text"}, nil
	case "json", "yaml":
		return &printer{w: w, mode: mode}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", mode)
	}
}

func (p *printer) structured() bool { return p.mode != "text" }

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// value writes v as JSON or YAML. In text mode it calls text instead.
func (p *printer) value(v any, text func(io.Writer) error) error {
	switch p.mode {
	case "json":
		return p.json(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}

// table writes tab-aligned rows under an upper-case header.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}
