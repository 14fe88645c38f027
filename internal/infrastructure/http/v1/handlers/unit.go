package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"magnetunits/internal/infrastructure/http/v1/dto"
	"magnetunits/internal/units"
)

// UnitHandler exposes the unit system directly.
type UnitHandler struct {
	*BaseHandler
	sys *units.System
}

func NewUnitHandler(base *BaseHandler, sys *units.System) *UnitHandler {
	return &UnitHandler{BaseHandler: base, sys: sys}
}

// Convert POST /api/v1/units/convert
func (h *UnitHandler) Convert(c *gin.Context) {
	var req dto.ConvertUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	from, err := h.sys.Resolve(req.From)
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := h.sys.Resolve(req.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	q, err := h.sys.NewQuantity(req.Value.InexactFloat64(), from)
	if err != nil {
		h.Error(c, err)
		return
	}
	out, err := q.To(to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ConvertUnitResponse{
		Value: decimal.NewFromFloat(out.Magnitude),
		From:  from.Pretty(),
		To:    to.Pretty(),
	})
}

// Compatible GET /api/v1/units/compatible?from=&to=
func (h *UnitHandler) Compatible(c *gin.Context) {
	var q dto.CompatibleQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, err := h.sys.Resolve(q.From)
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := h.sys.Resolve(q.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CompatibleResponse{
		From:          from.Pretty(),
		To:            to.Pretty(),
		FromDimension: from.Dimension().String(),
		ToDimension:   to.Dimension().String(),
		Compatible:    h.sys.AreCompatible(from, to),
	})
}
