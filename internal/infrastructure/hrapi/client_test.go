package hrapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/errors"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestListPassesTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":1,"results":[{"id":"d1","name":"HR"}]}`))
	})
	defer srv.Close()

	q := url.Values{}
	q.Set("page", "2")
	q.Set("ordering", "-name")
	page, err := client.List(context.Background(), "/api/v1/employees/departments/", q, "tok123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "ordering=-name")
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "d1", page.Results[0].ID())
}

func TestListNormalizesBareArray(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	})
	defer srv.Close()

	page, err := client.List(context.Background(), "/api/v1/leave/types/", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
}

func TestBackendErrorSurfacesStatusAndBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":["This field is required."]}`))
	})
	defer srv.Close()

	_, err := client.Create(context.Background(), "/api/v1/employees/departments/", schema.FormDraft{"name": "x"}, "")
	require.Error(t, err)

	var upstream *errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Contains(t, upstream.Body, "This field is required.")
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.List(context.Background(), "/api/v1/employees/departments/", nil, "")
	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, errors.GetHTTPStatus(err))
}

func TestCreateSendsJSONAndUnwrapsRecord(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]any
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":"new1","name":"Engineering"}}`))
	})
	defer srv.Close()

	rec, err := client.Create(context.Background(), "/api/v1/employees/departments/", schema.FormDraft{"name": "Engineering", "parent": nil}, "")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Engineering", gotBody["name"])
	val, present := gotBody["parent"]
	assert.True(t, present, "null fields must be serialized, not dropped")
	assert.Nil(t, val)
	assert.Equal(t, "new1", rec.ID())
}

func TestUpdateUsesPatch(t *testing.T) {
	var gotMethod, gotPath string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"d9","name":"Renamed"}`))
	})
	defer srv.Close()

	rec, err := client.Update(context.Background(), "/api/v1/employees/departments/d9/", schema.FormDraft{"name": "Renamed"}, "")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/v1/employees/departments/d9/", gotPath)
	assert.Equal(t, "Renamed", rec.StringField("name"))
}

func TestDeleteToleratesEmptyBody(t *testing.T) {
	var gotMethod string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	err := client.Delete(context.Background(), "/api/v1/employees/departments/d9/", "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestIntrospectPreservesFieldOrder(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodOptions, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Shift List",
			"actions": {"POST": {
				"name": {"type": "string", "required": true, "read_only": false, "label": "Name"},
				"code": {"type": "string", "required": true, "read_only": false, "label": "Code"},
				"start_time": {"type": "time", "required": true, "read_only": false, "label": "Start time"},
				"grace_in_minutes": {"type": "integer", "required": false, "read_only": false, "label": "Grace in minutes"},
				"accrual_type": {"type": "choice", "required": false, "read_only": false, "label": "Accrual type",
					"choices": [{"value": "yearly", "display_name": "Yearly"}, {"value": "monthly", "display_name": "Monthly"}]}
			}}
		}`))
	})
	defer srv.Close()

	fields, err := client.Introspect(context.Background(), "/api/v1/attendance/shifts/", "")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "code", "start_time", "grace_in_minutes", "accrual_type"}, names,
		"backend field order must survive the decode")

	assert.Equal(t, schema.KindTime, fields[2].Kind)
	assert.Equal(t, schema.KindInteger, fields[3].Kind)
	assert.Equal(t, schema.KindChoice, fields[4].Kind)
	require.Len(t, fields[4].Choices, 2)
	assert.Equal(t, "Yearly", fields[4].Choices[0].Display)
}

func TestIntrospectWithoutPostActionYieldsNoFields(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Read Only List", "actions": {}}`))
	})
	defer srv.Close()

	fields, err := client.Introspect(context.Background(), "/api/v1/payroll/runs/", "")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestIntrospectUnsupportedVerb(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"detail":"Method \"OPTIONS\" not allowed."}`))
	})
	defer srv.Close()

	_, err := client.Introspect(context.Background(), "/api/v1/workflows/steps/", "")
	assert.True(t, errors.IsUpstream(err))
}

func TestHumanizeLabelFallback(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"actions":{"POST":{"cost_center": {"type": "string", "required": false, "read_only": false}}}}`))
	})
	defer srv.Close()

	fields, err := client.Introspect(context.Background(), "/api/v1/employees/departments/", "")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Cost Center", fields[0].Label)
}

func TestDownloadCSVSetsExportFormat(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("export_format"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="departments.csv"`)
		w.Write([]byte("name,code\nHR,HR01\n"))
	})
	defer srv.Close()

	dl, err := client.DownloadCSV(context.Background(), "/api/v1/employees/departments/export/", nil, "tok")
	require.NoError(t, err)

	assert.Equal(t, "departments.csv", dl.Filename)
	assert.Equal(t, "text/csv", dl.ContentType)
	assert.True(t, strings.HasPrefix(string(dl.Data), "name,code"))
}

func TestImportFileForwardsMultipart(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "upload.csv", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success_count":3,"error_count":1,"errors":[{"row":4,"error":"bad code"}]}`))
	})
	defer srv.Close()

	result, err := client.ImportFile(context.Background(), "/api/v1/employees/departments/import/", "upload.csv", strings.NewReader("name,code\nA,a\n"), "tok")
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.NotNil(t, result.Errors)
}

func TestImportFileUpstreamFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		w.Write([]byte(`{"detail":"Unsupported file type"}`))
	})
	defer srv.Close()

	_, err := client.ImportFile(context.Background(), "/api/v1/employees/departments/import/", "x.pdf", strings.NewReader("%PDF"), "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, errors.GetHTTPStatus(err))
}
