package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/internal/application/services"
	"github.com/peoplekit/hradmin/internal/infrastructure/hrapi"
	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// TransferHandler serves bulk CSV import and export for a page session.
type TransferHandler struct {
	pages    *services.PageService
	transfer *services.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(pages *services.PageService, transfer *services.TransferService) *TransferHandler {
	return &TransferHandler{pages: pages, transfer: transfer}
}

// Export streams the current table view as CSV, honoring search, ordering
// and filters but never pagination.
// GET /api/admin/pages/:sessionID/export
func (h *TransferHandler) Export(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	download, err := h.transfer.Export(c.Request.Context(), sess, GetToken(c), GetActor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	writeDownload(c, download)
}

// Template streams the blank import template for the resource.
// GET /api/admin/pages/:sessionID/template
func (h *TransferHandler) Template(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	download, err := h.transfer.Template(c.Request.Context(), sess, GetToken(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	writeDownload(c, download)
}

// Import uploads a CSV file and returns the per-row outcome for review.
// POST /api/admin/pages/:sessionID/import
func (h *TransferHandler) Import(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		RespondAppError(c, errors.NewValidationError("file", "a CSV file upload is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		RespondAppError(c, errors.NewInternalError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	result, err := h.transfer.Import(c.Request.Context(), sess, header.Filename, file, GetToken(c), GetActor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":        result,
		"refresh_token": sess.RefreshToken(),
	})
}

func writeDownload(c *gin.Context, download hrapi.Download) {
	contentType := download.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeCSV
	}
	c.Header(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Data(http.StatusOK, contentType, download.Data)
}
