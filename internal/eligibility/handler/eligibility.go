package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/internal/eligibility/service"
	"github.com/talentflow/talentflow-backend/pkg/httputil"
	"github.com/talentflow/talentflow-backend/pkg/logger"
)

// EligibilityHandler handles authenticated eligibility endpoints
type EligibilityHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(svc *service.Service, log *logger.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		service: svc,
		logger:  log,
	}
}

// CreateCheckRequest is the request structure for running an eligibility check
type CreateCheckRequest struct {
	EmployeeID string             `json:"employee_id" validate:"required,uuid"`
	Facts      domain.PermitFacts `json:"facts"`
}

// CreateCheck runs an eligibility check on HR-entered permit facts
func (h *EligibilityHandler) CreateCheck(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckRequest
	if err := httputil.DecodeJSONLocalized(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(&req.Facts); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	check, err := h.service.CheckEligibility(r.Context(), req.EmployeeID, req.Facts)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.Created(w, check)
}

// GetCheck fetches a stored check by ID
func (h *EligibilityHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	check, err := h.service.GetCheck(r.Context(), id)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, check)
}

// ListChecks lists all stored checks for an employee, newest first
func (h *EligibilityHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	checks, err := h.service.ListChecks(r.Context(), employeeID)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, checks)
}
