package handlers

import (
	"github.com/gin-gonic/gin"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/fieldquery"
	"magnetunits/internal/infrastructure/http/v1/dto"
	"magnetunits/internal/metadata"
)

// FieldHandler serves the standard field registry. The registry is built at
// startup and only read afterwards.
type FieldHandler struct {
	*BaseHandler
	registry *metadata.Registry
}

func NewFieldHandler(base *BaseHandler, registry *metadata.Registry) *FieldHandler {
	return &FieldHandler{BaseHandler: base, registry: registry}
}

// ListTypes returns the field type taxonomy.
// GET /api/v1/field-types
func (h *FieldHandler) ListTypes(c *gin.Context) {
	h.OK(c, dto.NewListResponse(metadata.InspectTypes()))
}

// ListCategories GET /api/v1/categories
func (h *FieldHandler) ListCategories(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.registry.ListCategories()))
}

// List returns fields, optionally restricted to a category and a CEL filter.
// GET /api/v1/fields?category=&filter=
func (h *FieldHandler) List(c *gin.Context) {
	var q dto.FieldListFilter
	if !h.BindQuery(c, &q) {
		return
	}
	fields, err := fieldquery.Select(c.Request.Context(), q.Filter, h.registry.ListFields(q.Category))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFields(fields))
}

func (h *FieldHandler) lookup(c *gin.Context) (*metadata.Field, bool) {
	f, err := h.registry.Lookup(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return f, true
}

// Get resolves a name, symbol or alias.
// GET /api/v1/fields/:id
func (h *FieldHandler) Get(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}
	h.OK(c, metadata.Inspect(f))
}

// Label GET /api/v1/fields/:id/label?unit=&latex=
func (h *FieldHandler) Label(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}
	var q dto.LabelQuery
	if !h.BindQuery(c, &q) {
		return
	}
	label, err := f.FormatLabel(q.Unit, q.Latex)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LabelResponse{Field: f.Name(), Label: label})
}

// Convert converts a value or a series from the field unit.
// POST /api/v1/fields/:id/convert
func (h *FieldHandler) Convert(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.ConvertFieldRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Value == nil && req.Values == nil {
		h.Error(c, apperror.NewValidation("either value or values is required"))
		return
	}

	target, err := f.Units().Resolve(req.Unit)
	if err != nil {
		h.Error(c, err)
		return
	}
	resp := dto.ConvertFieldResponse{
		Field: f.Name(),
		From:  f.Unit().Pretty(),
		To:    target.Pretty(),
	}
	if req.Value != nil {
		v, err := f.ConvertDecimal(*req.Value, target)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Value = &v
	}
	if req.Values != nil {
		vs, err := f.ConvertArray(req.Values, target)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Values = vs
	}
	if resp.Label, err = f.FormatLabel(target, false); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, resp)
}
