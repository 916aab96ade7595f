package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/audit"
)

// AuditHandler serves the recorded change trail for ledger entities.
type AuditHandler struct {
	history audit.HistoryReader
}

func NewAuditHandler(history audit.HistoryReader) *AuditHandler {
	return &AuditHandler{history: history}
}

// History returns the recorded changes for one entity, newest first.
// GET /bases/:baseId/audit/:entityId
func (h *AuditHandler) History(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	entityID, ok := pathID(c, "entityId")
	if !ok {
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return
	}

	events, err := h.history.History(c.Request.Context(), base, entityID, query.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}
