package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"github.com/qcbd/app-beneficiary/internal/validation"
)

func TestApplications_RequireAuthentication(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/v1/applications/orphan", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(http.MethodGet, "/v1/applications/orphan", bearer(t, "ben-1", models.RoleBeneficiary), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateApplication_Draft(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)

	values := testutil.CompleteApplication()
	values.ID = "client-chosen"
	values.Status = models.StatusGranted

	w := srv.doJSON(t, http.MethodPost, "/v1/applications/orphan", token, values)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[SaveResponse](t, w)
	assert.Equal(t, "app-1", resp.Application.ID)
	assert.Equal(t, models.StatusNew, resp.PreviousStatus)
	assert.Equal(t, models.StatusIncomplete, resp.Status)
	assert.Len(t, resp.Tabs, len(validation.AllTabs))
	assert.Equal(t, "agent-1", resp.Application.CreatedBy)
}

func TestCreateApplication_SubmitInvalid(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)

	values := testutil.CompleteApplication()
	values.ID = ""
	values.PrimaryInformation.FullName = ""

	w := srv.doJSON(t, http.MethodPost, "/v1/applications/orphan?submit=true", token, values)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decode[ValidationErrorResponse](t, w)
	assert.Equal(t, validation.TabPrimary, resp.Locator.Tab)
	assert.NotEmpty(t, resp.Errors)
	assert.Len(t, resp.Tabs, len(validation.AllTabs))
}

func TestCreateApplication_BadInput(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)

	w := srv.do(http.MethodPost, "/v1/applications/orphan", token, strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.doJSON(t, http.MethodPost, "/v1/applications/orphan?submit=maybe", token, testutil.CompleteApplication())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateApplication(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)
	id := srv.createSubmitted(t, token)

	values := testutil.CompleteApplication()
	values.PrimaryInformation.FullName = "Karim Uddin"

	w := srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/"+id, token, values)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SaveResponse](t, w)
	assert.Equal(t, id, resp.Application.ID)
	assert.Equal(t, "Karim Uddin", resp.Application.PrimaryInformation.FullName)
	assert.Equal(t, models.StatusComplete, resp.Status)

	w = srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/missing", token, values)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAndDeleteApplication(t *testing.T) {
	srv := newTestServer(t)
	agentToken := bearer(t, "agent-1", models.RoleAgent)
	id := srv.createSubmitted(t, agentToken)

	w := srv.do(http.MethodGet, "/v1/applications/orphan/"+id, agentToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	app := decode[models.OrphanApplication](t, w)
	assert.Equal(t, id, app.ID)

	w = srv.do(http.MethodDelete, "/v1/applications/orphan/"+id, agentToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := bearer(t, "admin-1", models.RoleAdmin)
	w = srv.do(http.MethodDelete, "/v1/applications/orphan/"+id, adminToken, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/v1/applications/orphan/"+id, agentToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListApplications(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)
	srv.createSubmitted(t, token)

	draft := testutil.CompleteApplication()
	draft.ID = ""
	w := srv.doJSON(t, http.MethodPost, "/v1/applications/orphan", token, draft)
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(http.MethodGet, "/v1/applications/orphan?status=complete", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.PaginatedApplications](t, w)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "app-1", page.Data[0].ID)

	w = srv.do(http.MethodGet, "/v1/applications/orphan?per_page=1&page=2", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[models.PaginatedApplications](t, w)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)

	for _, query := range []string{"status=unknown", "gender=x", "created_from=yesterday"} {
		w = srv.do(http.MethodGet, "/v1/applications/orphan?"+query, token, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestValidateApplication(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)
	id := srv.createSubmitted(t, token)

	w := srv.do(http.MethodPost, "/v1/applications/orphan/"+id+"/validate?depth=partial", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ValidateResponse](t, w)
	assert.True(t, resp.Valid)
	assert.Equal(t, "partial", resp.Depth)
	assert.NotNil(t, resp.Errors)

	w = srv.do(http.MethodPost, "/v1/applications/orphan/"+id+"/validate?depth=deep", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadRequiredDocuments(t *testing.T, srv *testServer, token, id string) models.UploadResponse {
	t.Helper()
	var files []formFile
	for _, docType := range models.RequiredDocuments {
		files = append(files, formFile{field: string(docType), filename: "scan.pdf", contentType: "application/pdf", content: "%PDF"})
	}
	body, contentType := multipartBody(t, files...)
	w := srv.do(http.MethodPost, "/v1/orphan/documents/"+id+"/bulk", token, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.UploadResponse](t, w)
}

func TestUpdateStatus(t *testing.T) {
	srv := newTestServer(t)
	agentToken := bearer(t, "agent-1", models.RoleAgent)
	id := srv.createSubmitted(t, agentToken)

	w := srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/"+id+"/status", agentToken,
		models.StatusUpdateRequest{Status: models.StatusAccepted})
	assert.Equal(t, http.StatusConflict, w.Code, "complete applications await documents")

	resp := uploadRequiredDocuments(t, srv, agentToken, id)
	require.Equal(t, models.StatusPending, resp.Status)

	investigator := bearer(t, "inv-1", models.RoleInvestigator)
	w = srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/"+id+"/status", investigator,
		models.StatusUpdateRequest{Status: models.StatusAccepted})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/"+id+"/status", agentToken,
		map[string]string{"status": "rejected", "rejectionMessage": "Missing guardian signature"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	app := decode[models.OrphanApplication](t, w)
	assert.Equal(t, models.StatusRejected, app.Status)
	require.NotNil(t, app.RejectionMessage)
	assert.Equal(t, "Missing guardian signature", *app.RejectionMessage)

	w = srv.doJSON(t, http.MethodPut, "/v1/applications/orphan/"+id+"/status", agentToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetApplicationDocument(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)
	id := srv.createSubmitted(t, token)

	w := srv.do(http.MethodGet, "/v1/applications/orphan/"+id+"/document", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<html")
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = srv.do(http.MethodGet, "/v1/applications/orphan/"+id+"/document?download=true", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="application-app-1.html"`, w.Header().Get("Content-Disposition"))
}

func TestExportApplications(t *testing.T) {
	srv := newTestServer(t)
	token := bearer(t, "agent-1", models.RoleAgent)
	srv.createSubmitted(t, token)

	w := srv.do(http.MethodGet, "/v1/applications/orphan/export/fields", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode[[]services.ExportFieldGroup](t, w)
	assert.NotEmpty(t, groups)

	w = srv.do(http.MethodGet, "/v1/applications/orphan/export?fields=id,status", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "status"}, {"app-1", "COMPLETE"}}, records)

	w = srv.do(http.MethodGet, "/v1/applications/orphan/export?fields=password", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
