package dto

import (
	"magnetunits/internal/format"
	"magnetunits/internal/metadata"
)

// FormatSummary is one entry of GET /formats.
type FormatSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FieldCount  int    `json:"fieldCount"`
	Warnings    int    `json:"warnings"`
}

// FormatResponse describes one format with its built fields by column.
type FormatResponse struct {
	Name     string                              `json:"name"`
	Metadata format.Metadata                     `json:"metadata"`
	Columns  []string                            `json:"columns"`
	Fields   map[string]metadata.FieldDescriptor `json:"fields"`
	Warnings []string                            `json:"warnings"`
}

func FromFormatSummary(def *format.FormatDefinition) FormatSummary {
	return FormatSummary{
		Name:        def.Name(),
		Description: def.Metadata().Description,
		FieldCount:  def.Len(),
		Warnings:    len(def.Warnings()),
	}
}

func FromFormat(def *format.FormatDefinition) FormatResponse {
	resp := FormatResponse{
		Name:     def.Name(),
		Metadata: def.Metadata(),
		Columns:  def.ColumnNames(),
		Fields:   make(map[string]metadata.FieldDescriptor, def.Len()),
		Warnings: def.Warnings(),
	}
	for _, col := range resp.Columns {
		if f, ok := def.GetField(col); ok {
			resp.Fields[col] = metadata.Inspect(f)
		}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}
