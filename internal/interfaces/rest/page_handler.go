package rest

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/internal/application/services"
	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// filterParamPrefix marks list query parameters that map to backend filters:
// f_is_active=true filters on is_active.
const filterParamPrefix = "f_"

// PageHandler serves page session lifecycle and the generated views.
type PageHandler struct {
	pages *services.PageService
	forms *services.FormService
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(pages *services.PageService, forms *services.FormService) *PageHandler {
	return &PageHandler{pages: pages, forms: forms}
}

type mountRequest struct {
	Category string `json:"category" binding:"required"`
	Module   string `json:"module" binding:"required"`
}

// pageResponse is the mounted page description the frontend renders from.
type pageResponse struct {
	SessionID    string                   `json:"session_id"`
	Binding      schema.ResourceBinding   `json:"binding"`
	Fields       []schema.FieldDescriptor `json:"fields"`
	Table        schema.TableModel        `json:"table"`
	RefreshToken int64                    `json:"refresh_token"`
}

// Mount resolves a resource page and opens a session for it.
// POST /api/admin/pages
func (h *PageHandler) Mount(c *gin.Context) {
	var req mountRequest
	if !BindJSON(c, &req) {
		return
	}

	sess, err := h.pages.Mount(c.Request.Context(), req.Category, req.Module, GetToken(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pagePayload(sess))
}

// Describe returns the current description of a mounted page.
// GET /api/admin/pages/:sessionID
func (h *PageHandler) Describe(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagePayload(sess))
}

// Unmount closes a page session.
// DELETE /api/admin/pages/:sessionID
func (h *PageHandler) Unmount(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	h.pages.Unmount(sess.ID)
	c.JSON(http.StatusOK, gin.H{"message": "page session closed"})
}

// Rows answers one table interaction. A request carries at most one state
// action (sort, search, filter, page_size or page); a bare request serves
// the cached page, re-fetching only when the refresh token moved.
// GET /api/admin/pages/:sessionID/rows
func (h *PageHandler) Rows(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	ctx := c.Request.Context()
	token := GetToken(c)
	table := sess.Table()
	query := c.Request.URL.Query()

	var snap services.ListSnapshot
	switch {
	case query.Has(constants.ParamSort):
		column := c.Query(constants.ParamSort)
		snap = table.Apply(ctx, token, func(s schema.TableState) schema.TableState {
			return s.WithSort(column)
		})
	case query.Has(constants.ParamSearch):
		term := c.Query(constants.ParamSearch)
		snap = table.Apply(ctx, token, func(s schema.TableState) schema.TableState {
			return s.WithSearch(term)
		})
	case hasFilterParam(query):
		key, value := filterParam(query)
		snap = table.Apply(ctx, token, func(s schema.TableState) schema.TableState {
			return s.WithFilter(key, value)
		})
	case query.Has(constants.ParamPageSize):
		size := utils.ToInt(c.Query(constants.ParamPageSize))
		snap = table.Apply(ctx, token, func(s schema.TableState) schema.TableState {
			return s.WithPageSize(size)
		})
	case query.Has(constants.ParamPage):
		page := utils.ToInt(c.Query(constants.ParamPage))
		snap = table.Apply(ctx, token, func(s schema.TableState) schema.TableState {
			return s.WithPage(page)
		})
	default:
		snap = table.Refresh(ctx, token)
	}

	c.JSON(http.StatusOK, snap)
}

// CreateForm renders an empty create form and drops any row selection.
// GET /api/admin/pages/:sessionID/form
func (h *PageHandler) CreateForm(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	sess.ClearSelection()
	title := "New " + utils.Singularize(resourceLabel(sess.Binding))
	c.JSON(http.StatusOK, h.forms.BuildForm(schema.FormModeCreate, title, sess.Fields(), nil))
}

// EditForm renders an edit form seeded from the cached row and marks it
// selected. The row must be on the current page.
// GET /api/admin/pages/:sessionID/records/:recordID/form
func (h *PageHandler) EditForm(c *gin.Context) {
	sess, err := h.pages.Get(c.Param("sessionID"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	recordID := c.Param("recordID")
	row, ok := sess.Table().CachedRow(recordID)
	if !ok {
		RespondAppError(c, errors.NewNotFoundError(sess.Binding.Key(), recordID))
		return
	}

	sess.Select(recordID)
	draft := schema.NewFormDraft(sess.Fields(), row)
	title := "Edit " + utils.Singularize(resourceLabel(sess.Binding))
	c.JSON(http.StatusOK, h.forms.BuildForm(schema.FormModeEdit, title, sess.Fields(), draft))
}

// Catalog lists the manageable resources in menu order.
// GET /api/admin/catalog
func (h *PageHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalog": schema.Catalog()})
}

// pagePayload renders the session for the frontend.
func pagePayload(sess *services.PageSession) pageResponse {
	label := resourceLabel(sess.Binding)
	return pageResponse{
		SessionID: sess.ID,
		Binding:   sess.Binding,
		Fields:    sess.Fields(),
		Table: schema.TableModel{
			Columns:           sess.Columns(),
			SearchPlaceholder: "Search " + strings.ToLower(label) + "...",
			RowKey:            constants.FieldID,
			Transfer:          constants.IsTransferEnabled(sess.Binding.Module),
		},
		RefreshToken: sess.RefreshToken(),
	}
}

// resourceLabel prefers the curated catalog label, humanizing the module
// slug for resources outside the catalog.
func resourceLabel(binding schema.ResourceBinding) string {
	for _, entry := range schema.Catalog() {
		if entry.Category == binding.Category && entry.Module == binding.Module {
			return entry.Label
		}
	}
	return utils.Humanize(binding.Module)
}

// hasFilterParam reports whether any f_ filter parameter is present.
func hasFilterParam(query url.Values) bool {
	for key := range query {
		if strings.HasPrefix(key, filterParamPrefix) {
			return true
		}
	}
	return false
}

// filterParam returns the first filter parameter as (field, value).
func filterParam(query url.Values) (string, string) {
	for key, values := range query {
		if strings.HasPrefix(key, filterParamPrefix) && len(values) > 0 {
			return strings.TrimPrefix(key, filterParamPrefix), values[0]
		}
	}
	return "", ""
}
