package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/talentflow/talentflow-backend/internal/eligibility/service"
	"github.com/talentflow/talentflow-backend/pkg/errors"
	"github.com/talentflow/talentflow-backend/pkg/httputil"
	"github.com/talentflow/talentflow-backend/pkg/i18n"
	"github.com/talentflow/talentflow-backend/pkg/logger"
)

// maxSubmissionBytes caps a whole submission at 25 MiB.
const maxSubmissionBytes = 25 << 20

// SubmissionHandler handles the anonymous candidate submission flow. Callers
// hold a signed upload link instead of an account; the token in the URL is
// the only credential.
type SubmissionHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(svc *service.Service, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: svc,
		logger:  log,
	}
}

// SubmissionInfo tells the candidate whether their link still works.
type SubmissionInfo struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// GetInfo validates the upload token so the frontend can render either the
// upload form or an error page before the candidate selects any files.
func (h *SubmissionHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	grant, err := h.service.VerifyUploadToken(token)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, SubmissionInfo{
		Valid:     true,
		ExpiresAt: grant.ExpiresAt,
		Message:   i18n.TFromContext(r.Context(), "submission.link_valid"),
	})
}

// SubmitDocuments accepts 1-5 document scans as multipart form files and
// runs the full evidence pipeline on them.
func (h *SubmissionHandler) SubmitDocuments(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		httputil.ErrorLocalized(w, r, errors.BadRequest("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["documents"]
	if len(fileHeaders) == 0 {
		httputil.ErrorLocalized(w, r, submissionError("at least one document is required", "submission.no_files", nil))
		return
	}
	if len(fileHeaders) > service.MaxDocumentsPerSubmission {
		httputil.ErrorLocalized(w, r, submissionError(
			"a submission may contain at most 5 documents",
			"submission.too_many_files",
			map[string]string{"max": "5"},
		))
		return
	}

	files := make([]service.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			httputil.ErrorLocalized(w, r, errors.BadRequest("unreadable file: "+fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			httputil.ErrorLocalized(w, r, errors.BadRequest("unreadable file: "+fh.Filename))
			return
		}
		files = append(files, service.UploadFile{Name: fh.Filename, Data: data})
	}

	check, err := h.service.SubmitDocuments(r.Context(), token, files)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.Created(w, check)
}

// submissionError builds a bad-request error that localizes to a
// submission-specific message instead of the generic one.
func submissionError(message, messageKey string, params map[string]string) *errors.AppError {
	appErr := errors.BadRequest(message)
	appErr.MessageKey = messageKey
	appErr.Params = params
	return appErr
}
