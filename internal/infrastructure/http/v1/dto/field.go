package dto

import (
	"github.com/shopspring/decimal"

	"magnetunits/internal/metadata"
)

// FieldListFilter holds query parameters of GET /fields.
type FieldListFilter struct {
	Category string `form:"category"`
	Filter   string `form:"filter"`
}

type LabelQuery struct {
	Unit  string `form:"unit"`
	Latex bool   `form:"latex"`
}

// ConvertFieldRequest converts either a single value or a series from the
// field unit to Unit.
type ConvertFieldRequest struct {
	Value  *decimal.Decimal `json:"value"`
	Values []float64        `json:"values"`
	Unit   string           `json:"unit" binding:"required"`
}

type ConvertFieldResponse struct {
	Field  string           `json:"field"`
	From   string           `json:"from"`
	To     string           `json:"to"`
	Value  *decimal.Decimal `json:"value,omitempty"`
	Values []float64        `json:"values,omitempty"`
	Label  string           `json:"label"`
}

type LabelResponse struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

func FromFields(fields []*metadata.Field) ListResponse[metadata.FieldDescriptor] {
	return NewListResponse(metadata.InspectAll(fields))
}
