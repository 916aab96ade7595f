// Package handlers implements the v1 HTTP handlers. Handlers stay thin:
// parse, delegate to the domain service, attach errors for the error
// middleware.
package handlers

import (
	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// actorHeader carries the acting user; authentication lives in front of this
// service.
const actorHeader = "X-User-ID"

// baseID parses the :baseId path parameter.
func baseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("baseId"))
	if err != nil {
		_ = c.Error(apperror.NewValidation("invalid base id").
			WithDetail("value", c.Param("baseId")))
		return id.Nil(), false
	}
	return parsed, true
}

// pathID parses a named id path parameter.
func pathID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperror.NewValidation("invalid id").
			WithDetail("param", name).
			WithDetail("value", c.Param(name)))
		return id.Nil(), false
	}
	return parsed, true
}

// bodyID parses an id carried in a request body; empty is allowed when
// optional is set.
func bodyID(c *gin.Context, value, field string, optional bool) (id.ID, bool) {
	if value == "" {
		if optional {
			return id.Nil(), true
		}
		_ = c.Error(apperror.NewValidation(field + " is required").
			WithDetail("field", field))
		return id.Nil(), false
	}

	parsed, err := id.Parse(value)
	if err != nil {
		_ = c.Error(apperror.NewValidation("invalid " + field).
			WithDetail("field", field).
			WithDetail("value", value))
		return id.Nil(), false
	}
	return parsed, true
}

// actorFrom returns the acting user id, "system" when absent.
func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return "system"
}

func toQty(p dto.QtyPayload) unit.Qty {
	return unit.Qty{Box: p.BoxQty, Pack: p.PackQty, Piece: p.PieceQty}
}
