package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/internal/application/services"
)

// RecordHandler serves record mutations within a page session.
type RecordHandler struct {
	pages *services.PageService
	crud  *services.CrudService
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler(pages *services.PageService, crud *services.CrudService) *RecordHandler {
	return &RecordHandler{pages: pages, crud: crud}
}

// Create submits a create form payload.
// POST /api/admin/pages/:sessionID/records
func (h *RecordHandler) Create(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	var values map[string]any
	if !BindJSON(c, &values) {
		return
	}

	record, err := h.crud.Create(c.Request.Context(), sess, values, GetToken(c), GetActor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "record created",
		"record":        record,
		"refresh_token": sess.RefreshToken(),
	})
}

// Update submits an edit form payload for one record.
// PATCH /api/admin/pages/:sessionID/records/:recordID
func (h *RecordHandler) Update(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	var values map[string]any
	if !BindJSON(c, &values) {
		return
	}

	record, err := h.crud.Update(c.Request.Context(), sess, c.Param("recordID"), values, GetToken(c), GetActor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "record updated",
		"record":        record,
		"refresh_token": sess.RefreshToken(),
	})
}

// Delete removes one record.
// DELETE /api/admin/pages/:sessionID/records/:recordID
func (h *RecordHandler) Delete(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	if err := h.crud.Delete(c.Request.Context(), sess, c.Param("recordID"), GetToken(c), GetActor(c)); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "record deleted",
		"refresh_token": sess.RefreshToken(),
	})
}
