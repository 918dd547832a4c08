package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/internal/domain/models"
	"github.com/peoplekit/hradmin/pkg/errors"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// auditTrail reads back recorded admin actions.
type auditTrail interface {
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// AuditHandler serves the admin action audit trail.
type AuditHandler struct {
	trail auditTrail
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(trail auditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// Recent lists the latest audit entries, newest first.
// GET /api/admin/audit
func (h *AuditHandler) Recent(c *gin.Context) {
	limit := utils.ToInt(c.Query("limit"))

	entries, err := h.trail.Recent(c.Request.Context(), limit)
	if err != nil {
		RespondAppError(c, errors.NewInternalError("failed to read audit trail", err))
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
