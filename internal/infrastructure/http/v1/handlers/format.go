package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/format"
	"magnetunits/internal/infrastructure/cache"
	"magnetunits/internal/infrastructure/http/v1/dto"
	"magnetunits/internal/metadata"
	"magnetunits/pkg/logger"
)

// maxFormatBody bounds uploaded descriptions.
const maxFormatBody = 1 << 20

// FormatStore persists uploaded descriptions. Optional.
type FormatStore interface {
	Save(ctx context.Context, doc format.Document) error
	Delete(ctx context.Context, name string) error
}

// FormatHandler serves formats from the shared cache.
type FormatHandler struct {
	*BaseHandler
	loader  *format.Loader
	formats *cache.FormatCache
	store   FormatStore
}

func NewFormatHandler(base *BaseHandler, loader *format.Loader, formats *cache.FormatCache, store FormatStore) *FormatHandler {
	return &FormatHandler{BaseHandler: base, loader: loader, formats: formats, store: store}
}

// List GET /api/v1/formats
func (h *FormatHandler) List(c *gin.Context) {
	defs := h.formats.List()
	items := make([]dto.FormatSummary, 0, len(defs))
	for _, def := range defs {
		items = append(items, dto.FromFormatSummary(def))
	}
	h.OK(c, dto.NewListResponse(items))
}

// Get GET /api/v1/formats/:name
func (h *FormatHandler) Get(c *gin.Context) {
	def, err := h.formats.Lookup(c.Param("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFormat(def))
}

// Column returns the field bound to one data-file column.
// GET /api/v1/formats/:name/columns/:column
func (h *FormatHandler) Column(c *gin.Context) {
	def, err := h.formats.Lookup(c.Param("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	column := c.Param("column")
	f, ok := def.GetField(column)
	if !ok {
		h.Error(c, apperror.NewNotFound("column", column).WithDetail("format", def.Name()))
		return
	}
	h.OK(c, metadata.Inspect(f))
}

func bodyEncoding(contentType string) format.Encoding {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") {
		return format.EncodingYAML
	}
	return format.EncodingJSON
}

// Create loads a JSON or YAML description. Loading is best effort: fields that
// fail to build are reported as warnings in the 201 response.
// POST /api/v1/formats
func (h *FormatHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormatBody+1))
	if err != nil {
		h.Error(c, apperror.NewValidation("failed to read request body").WithCause(err))
		return
	}
	if len(data) > maxFormatBody {
		h.Error(c, apperror.NewValidation("format description too large").WithDetail("limit", maxFormatBody))
		return
	}

	doc, err := format.DecodeDocument(data, bodyEncoding(c.ContentType()))
	if err != nil {
		h.Error(c, err)
		return
	}
	if h.store != nil {
		if err := h.store.Save(ctx, doc); err != nil {
			h.Error(c, err)
			return
		}
	}

	def := h.loader.FromDocument(ctx, doc)
	h.formats.Put(def)
	logger.Info(ctx, "format uploaded", "format", def.Name(), "fields", def.Len(), "warnings", len(def.Warnings()))
	h.Created(c, dto.FromFormat(def))
}

// Delete DELETE /api/v1/formats/:name
func (h *FormatHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	stored := false
	if h.store != nil {
		err := h.store.Delete(c.Request.Context(), name)
		switch {
		case err == nil:
			stored = true
		case !apperror.IsNotFound(err):
			h.Error(c, err)
			return
		}
	}
	if !h.formats.Remove(name) && !stored {
		h.Error(c, apperror.NewNotFound("format", name))
		return
	}
	h.NoContent(c)
}
