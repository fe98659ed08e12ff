package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/internal/eligibility/handler"
	"github.com/talentflow/talentflow-backend/internal/eligibility/policy"
	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/internal/eligibility/service"
	"github.com/talentflow/talentflow-backend/internal/eligibility/uploadlink"
	"github.com/talentflow/talentflow-backend/pkg/database"
	"github.com/talentflow/talentflow-backend/pkg/httputil"
	"github.com/talentflow/talentflow-backend/pkg/i18n"
	"github.com/talentflow/talentflow-backend/pkg/logger"
	"github.com/talentflow/talentflow-backend/pkg/testutil"
)

type handlerHarness struct {
	router   chi.Router
	mockDB   *testutil.MockDB
	signer   *uploadlink.Signer
	fixtures *testutil.FixtureFactory
}

func newHandlerHarness(t *testing.T) *handlerHarness {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("test", "error")
	repo := repository.NewCheckRepository(database.NewFromSqlx(mockDB.DB, log))
	signer := uploadlink.NewSigner([]byte("test-secret"), time.Hour)

	svc := service.NewService(policy.NewEvaluator(), signer, stubExtractor{}, nil, repo, noopPublisher{}, log)

	eligHandler := handler.NewEligibilityHandler(svc, log)
	subHandler := handler.NewSubmissionHandler(svc, log)

	r := chi.NewRouter()
	r.Use(i18n.Middleware)
	r.Route("/api/v1/eligibility", func(r chi.Router) {
		r.Post("/checks", eligHandler.CreateCheck)
		r.Get("/checks/{id}", eligHandler.GetCheck)
		r.Post("/upload-links", eligHandler.IssueUploadLink)
	})
	r.Route("/api/v1/submissions/{token}", func(r chi.Router) {
		r.Get("/", subHandler.GetInfo)
		r.Post("/documents", subHandler.SubmitDocuments)
	})

	return &handlerHarness{
		router:   r,
		mockDB:   mockDB,
		signer:   signer,
		fixtures: testutil.NewFixtureFactory(),
	}
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, fileName string, _ []byte) (domain.DocumentExtraction, error) {
	return domain.EmptyExtraction(fileName), nil
}

type noopPublisher struct{}

func (noopPublisher) PublishCheckCompleted(context.Context, *repository.Check)           {}
func (noopPublisher) PublishUploadLinkIssued(context.Context, string, string, time.Time) {}

func (h *handlerHarness) expectInsert() {
	h.mockDB.ExpectQuery("INSERT INTO eligibility_checks").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
}

func (h *handlerHarness) do(req *http.Request) (*httptest.ResponseRecorder, httputil.Response) {
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	var resp httputil.Response
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return rr, resp
}

func (h *handlerHarness) token(t *testing.T, employeeID string) string {
	t.Helper()
	token, err := h.signer.Issue(h.signer.NewGrant("hr-user-1", employeeID))
	require.NoError(t, err)
	return token
}

func multipartBody(t *testing.T, fileCount int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i := 0; i < fileCount; i++ {
		part, err := writer.CreateFormFile("documents", "scan.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateCheck(t *testing.T) {
	h := newHandlerHarness(t)
	h.expectInsert()

	payload := map[string]interface{}{
		"employee_id": h.fixtures.EmployeeID(),
		"facts": map[string]interface{}{
			"citizenship": "eu_eea_swiss",
			"valid_to":    time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/eligibility/checks", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)

	h.mockDB.ExpectationsWereMet(t)
}

func TestCreateCheck_InvalidEmployeeID(t *testing.T) {
	h := newHandlerHarness(t)

	req := httptest.NewRequest("POST", "/api/v1/eligibility/checks",
		strings.NewReader(`{"employee_id": "not-a-uuid", "facts": {}}`))
	req.Header.Set("Content-Type", "application/json")

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "EmployeeID")
}

func TestIssueUploadLink_ReturnsTokenOnce(t *testing.T) {
	h := newHandlerHarness(t)

	raw, err := json.Marshal(map[string]string{"employee_id": h.fixtures.EmployeeID()})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/eligibility/upload-links", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
	assert.NotEmpty(t, data["expires_at"])
}

func TestGetSubmissionInfo(t *testing.T) {
	h := newHandlerHarness(t)
	token := h.token(t, h.fixtures.EmployeeID())

	req := httptest.NewRequest("GET", "/api/v1/submissions/"+token, nil)
	rr, resp := h.do(req)

	assert.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestGetSubmissionInfo_BadToken(t *testing.T) {
	h := newHandlerHarness(t)

	req := httptest.NewRequest("GET", "/api/v1/submissions/forged-token", nil)
	rr, resp := h.do(req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TOKEN_INVALID", resp.Error.Code)
}

func TestSubmitDocuments(t *testing.T) {
	h := newHandlerHarness(t)
	h.expectInsert()
	token := h.token(t, h.fixtures.EmployeeID())

	body, contentType := multipartBody(t, 2)
	req := httptest.NewRequest("POST", "/api/v1/submissions/"+token+"/documents", body)
	req.Header.Set("Content-Type", contentType)

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	assert.True(t, resp.Success)

	h.mockDB.ExpectationsWereMet(t)
}

func TestSubmitDocuments_NoFiles(t *testing.T) {
	h := newHandlerHarness(t)
	token := h.token(t, h.fixtures.EmployeeID())

	body, contentType := multipartBody(t, 0)
	req := httptest.NewRequest("POST", "/api/v1/submissions/"+token+"/documents", body)
	req.Header.Set("Content-Type", contentType)

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestSubmitDocuments_TooManyFiles(t *testing.T) {
	h := newHandlerHarness(t)
	token := h.token(t, h.fixtures.EmployeeID())

	body, contentType := multipartBody(t, service.MaxDocumentsPerSubmission+1)
	req := httptest.NewRequest("POST", "/api/v1/submissions/"+token+"/documents", body)
	req.Header.Set("Content-Type", contentType)

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "5")
}

func TestSubmitDocuments_GermanErrorMessages(t *testing.T) {
	h := newHandlerHarness(t)
	token := h.token(t, h.fixtures.EmployeeID())

	body, contentType := multipartBody(t, service.MaxDocumentsPerSubmission+1)
	req := httptest.NewRequest("POST", "/api/v1/submissions/"+token+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Language", "de")

	rr, resp := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "Dokumente")
}
