package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplekit/hradmin/internal/application/services"
	"github.com/peoplekit/hradmin/internal/domain/models"
	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/internal/infrastructure/hrapi"
	"github.com/peoplekit/hradmin/internal/interfaces/rest"
	"github.com/peoplekit/hradmin/pkg/expression"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// fakeHR stands in for the HR backend client across every surface the
// handlers reach: introspection, list, writes and CSV transfer.
type fakeHR struct {
	mu sync.Mutex

	fields        map[string][]schema.FieldDescriptor
	introspectErr error

	pages    map[string]schema.Page
	listErr  map[string]error
	listSeen []url.Values

	created      schema.Record
	createErr    error
	updated      schema.Record
	updateErr    error
	deleteErr    error
	lastEndpoint string
	lastPayload  schema.FormDraft

	download     hrapi.Download
	downloadErr  error
	importResult hrapi.ImportResult
	importErr    error
	lastFilename string
}

func (f *fakeHR) Introspect(ctx context.Context, endpoint, authToken string) ([]schema.FieldDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.introspectErr != nil {
		return nil, f.introspectErr
	}
	return f.fields[endpoint], nil
}

func (f *fakeHR) List(ctx context.Context, endpoint string, query url.Values, authToken string) (schema.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listSeen = append(f.listSeen, query)
	if err := f.listErr[endpoint]; err != nil {
		return schema.Page{}, err
	}
	return f.pages[endpoint], nil
}

func (f *fakeHR) Create(ctx context.Context, endpoint string, payload schema.FormDraft, authToken string) (schema.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEndpoint = endpoint
	f.lastPayload = payload
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeHR) Update(ctx context.Context, detailEndpoint string, payload schema.FormDraft, authToken string) (schema.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEndpoint = detailEndpoint
	f.lastPayload = payload
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updated, nil
}

func (f *fakeHR) Delete(ctx context.Context, detailEndpoint string, authToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEndpoint = detailEndpoint
	return f.deleteErr
}

func (f *fakeHR) DownloadCSV(ctx context.Context, endpoint string, query url.Values, authToken string) (hrapi.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEndpoint = endpoint
	f.listSeen = append(f.listSeen, query)
	if f.downloadErr != nil {
		return hrapi.Download{}, f.downloadErr
	}
	return f.download, nil
}

func (f *fakeHR) ImportFile(ctx context.Context, endpoint, filename string, file io.Reader, authToken string) (hrapi.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEndpoint = endpoint
	f.lastFilename = filename
	if f.importErr != nil {
		return hrapi.ImportResult{}, f.importErr
	}
	return f.importResult, nil
}

// memTrail is an in-memory audit sink and trail.
type memTrail struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (m *memTrail) Write(ctx context.Context, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memTrail) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// handlerEnv wires real services over the fake backend the way main does.
type handlerEnv struct {
	hr       *fakeHR
	audit    *memTrail
	pageSvc  *services.PageService
	pages    *rest.PageHandler
	records  *rest.RecordHandler
	transfer *rest.TransferHandler
}

func departmentDescriptors() []schema.FieldDescriptor {
	return []schema.FieldDescriptor{
		{Name: "name", Label: "Name", Kind: schema.KindString, Required: true},
		{Name: "code", Label: "Code", Kind: schema.KindString, Required: true},
		{Name: "description", Label: "Description", Kind: schema.KindText},
		{Name: "parent", Label: "Parent", Kind: schema.KindChoice},
		{Name: "is_active", Label: "Is Active", Kind: schema.KindBoolean},
	}
}

func newHandlerEnv() *handlerEnv {
	hr := &fakeHR{
		fields: map[string][]schema.FieldDescriptor{
			"/api/v1/employees/departments/": departmentDescriptors(),
		},
		pages: map[string]schema.Page{
			"/api/v1/employees/departments/": {
				Count: 2,
				Results: []schema.Record{
					{"id": "dep-1", "name": "Operations", "code": "OPS", "is_active": true},
					{"id": "dep-2", "name": "Engineering", "code": "ENG", "is_active": true},
				},
			},
		},
		listErr: map[string]error{},
	}

	overrides := services.NewOverrideRegistry()
	resolver := services.NewSchemaResolver(hr, overrides)
	choices := services.NewChoiceLoader(hr)
	engine := expression.NewEngine()
	pageSvc := services.NewPageService(hr, resolver, choices, overrides, engine, 30*time.Minute)
	forms := services.NewFormService()
	audit := &memTrail{}

	return &handlerEnv{
		hr:       hr,
		audit:    audit,
		pageSvc:  pageSvc,
		pages:    rest.NewPageHandler(pageSvc, forms),
		records:  rest.NewRecordHandler(pageSvc, services.NewCrudService(hr, audit)),
		transfer: rest.NewTransferHandler(pageSvc, services.NewTransferService(hr, audit)),
	}
}

// mountPage opens a session through the handler and returns its id.
func mountPage(t *testing.T, env *handlerEnv, category, module string) string {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(map[string]string{"category": category, "module": module})
	c.Request = httptest.NewRequest("POST", "/api/admin/pages", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	env.pages.Mount(c)
	require.Equal(t, http.StatusCreated, w.Code, "mount failed: %s", w.Body.String())

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func sessionRequest(sessionID, method, target string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Params = gin.Params{{Key: "sessionID", Value: sessionID}}
	return w, c
}

func TestPageHandler_Mount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		env := newHandlerEnv()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(map[string]string{"category": "employees", "module": "departments"})
		c.Request = httptest.NewRequest("POST", "/api/admin/pages", bytes.NewBuffer(body))

		env.pages.Mount(c)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			SessionID string                   `json:"session_id"`
			Binding   schema.ResourceBinding   `json:"binding"`
			Fields    []schema.FieldDescriptor `json:"fields"`
			Table     schema.TableModel        `json:"table"`
			Refresh   int64                    `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.True(t, utils.IsValidUUID(resp.SessionID))
		assert.Equal(t, "departments", resp.Binding.Module)
		assert.Len(t, resp.Fields, 5)
		assert.True(t, resp.Table.Transfer)
		assert.Equal(t, "id", resp.Table.RowKey)
		assert.Equal(t, "Search departments...", resp.Table.SearchPlaceholder)
		assert.NotEmpty(t, resp.Table.Columns)
		assert.Zero(t, resp.Refresh)
	})

	t.Run("Missing Module", func(t *testing.T) {
		env := newHandlerEnv()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(map[string]string{"category": "employees"})
		c.Request = httptest.NewRequest("POST", "/api/admin/pages", bytes.NewBuffer(body))

		env.pages.Mount(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, env.pageSvc.Count())
	})

	t.Run("Malformed Slug", func(t *testing.T) {
		env := newHandlerEnv()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(map[string]string{"category": "Employees!", "module": "departments"})
		c.Request = httptest.NewRequest("POST", "/api/admin/pages", bytes.NewBuffer(body))

		env.pages.Mount(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	})
}

func TestPageHandler_DescribeAndUnmount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := newHandlerEnv()
	sessionID := mountPage(t, env, "employees", "departments")

	w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID)
	env.pages.Describe(c)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sessionID, resp.SessionID)

	w, c = sessionRequest(sessionID, "DELETE", "/api/admin/pages/"+sessionID)
	env.pages.Unmount(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w, c = sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID)
	env.pages.Describe(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPageHandler_Rows(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := newHandlerEnv()
	sessionID := mountPage(t, env, "employees", "departments")
	base := "/api/admin/pages/" + sessionID + "/rows"

	rows := func(target string) (*httptest.ResponseRecorder, services.ListSnapshot) {
		w, c := sessionRequest(sessionID, "GET", target)
		env.pages.Rows(c)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var snap services.ListSnapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		return w, snap
	}

	t.Run("Initial Load", func(t *testing.T) {
		_, snap := rows(base)
		assert.Len(t, snap.Rows, 2)
		assert.Equal(t, 2, snap.Count)
		assert.Equal(t, 1, snap.State.Page)
	})

	t.Run("Search", func(t *testing.T) {
		_, snap := rows(base + "?search=ops")
		assert.Equal(t, "ops", snap.State.Search)
		assert.Equal(t, 1, snap.State.Page)
	})

	t.Run("Sort Wins Over Page", func(t *testing.T) {
		_, snap := rows(base + "?sort=name&page=9")
		assert.Equal(t, "name", snap.State.SortBy)
		assert.Equal(t, 1, snap.State.Page)
	})

	t.Run("Filter", func(t *testing.T) {
		_, snap := rows(base + "?f_is_active=true")
		assert.Equal(t, "true", snap.State.Filters["is_active"])
	})

	t.Run("Page Size Then Page", func(t *testing.T) {
		_, snap := rows(base + "?page_size=50")
		assert.Equal(t, 50, snap.State.PageSize)

		_, snap = rows(base + "?page=2")
		assert.Equal(t, 2, snap.State.Page)
		assert.Equal(t, 50, snap.State.PageSize)
	})

	t.Run("Unknown Session", func(t *testing.T) {
		w, c := sessionRequest("not-a-session", "GET", base)
		env.pages.Rows(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPageHandler_Forms(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := newHandlerEnv()
	sessionID := mountPage(t, env, "employees", "departments")

	// Populate the row cache so the edit form has something to seed from.
	w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID+"/rows")
	env.pages.Rows(c)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Create Form", func(t *testing.T) {
		w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID+"/form")
		env.pages.CreateForm(c)

		require.Equal(t, http.StatusOK, w.Code)
		var form schema.FormModel
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		assert.Equal(t, schema.FormModeCreate, form.Mode)
		assert.Equal(t, "New Department", form.Title)
		assert.Len(t, form.Widgets, 5)
		for _, widget := range form.Widgets {
			assert.Nil(t, widget.Value)
		}
	})

	t.Run("Edit Form Seeds Cached Row", func(t *testing.T) {
		w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID+"/records/dep-1/form")
		c.Params = append(c.Params, gin.Param{Key: "recordID", Value: "dep-1"})
		env.pages.EditForm(c)

		require.Equal(t, http.StatusOK, w.Code)
		var form schema.FormModel
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
		assert.Equal(t, schema.FormModeEdit, form.Mode)
		assert.Equal(t, "Edit Department", form.Title)

		values := map[string]any{}
		for _, widget := range form.Widgets {
			values[widget.Name] = widget.Value
		}
		assert.Equal(t, "Operations", values["name"])
		assert.Equal(t, "OPS", values["code"])

		sess, err := env.pageSvc.Get(sessionID)
		require.NoError(t, err)
		assert.Equal(t, "dep-1", sess.SelectedID())
	})

	t.Run("Edit Form Unknown Record", func(t *testing.T) {
		w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID+"/records/ghost/form")
		c.Params = append(c.Params, gin.Param{Key: "recordID", Value: "ghost"})
		env.pages.EditForm(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Create Form Clears Selection", func(t *testing.T) {
		sess, err := env.pageSvc.Get(sessionID)
		require.NoError(t, err)
		sess.Select("dep-2")

		w, c := sessionRequest(sessionID, "GET", "/api/admin/pages/"+sessionID+"/form")
		env.pages.CreateForm(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sess.SelectedID())
	})
}

func TestPageHandler_Catalog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := newHandlerEnv()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/admin/catalog", nil)

	env.pages.Catalog(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Catalog []schema.CatalogEntry `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Catalog, len(schema.Catalog()))
	assert.Equal(t, "departments", resp.Catalog[0].Module)
}
