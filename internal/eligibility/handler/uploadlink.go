package handler

import (
	"net/http"
	"time"

	"github.com/talentflow/talentflow-backend/pkg/httputil"
)

// IssueUploadLinkRequest is the request structure for issuing an upload link
type IssueUploadLinkRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

// UploadLinkResponse carries the signed token back to the HR user. The token
// is shown exactly once; it is never stored server-side.
type UploadLinkResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueUploadLink mints a signed anonymous document upload link
func (h *EligibilityHandler) IssueUploadLink(w http.ResponseWriter, r *http.Request) {
	var req IssueUploadLinkRequest
	if err := httputil.DecodeJSONLocalized(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	token, grant, err := h.service.IssueUploadLink(r.Context(), req.EmployeeID)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.Created(w, UploadLinkResponse{
		Token:     token,
		ExpiresAt: grant.ExpiresAt,
	})
}
