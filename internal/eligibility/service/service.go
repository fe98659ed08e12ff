// Package service orchestrates eligibility checks: facts in, assessment out,
// with persistence and event publication around the decision core.
package service

import (
	"context"
	"time"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/internal/eligibility/evidence"
	"github.com/talentflow/talentflow-backend/internal/eligibility/policy"
	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/internal/eligibility/uploadlink"
	"github.com/talentflow/talentflow-backend/pkg/actor"
	"github.com/talentflow/talentflow-backend/pkg/errors"
	"github.com/talentflow/talentflow-backend/pkg/logger"
)

// MaxDocumentsPerSubmission caps how many scans one submission may carry.
const MaxDocumentsPerSubmission = 5

// Extractor recognizes one uploaded document scan.
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (domain.DocumentExtraction, error)
}

// Assessor provides an advisory second opinion. Implementations must degrade
// to the unknown opinion instead of returning errors.
type Assessor interface {
	Assess(ctx context.Context, facts domain.PermitFacts, evidenceText string) domain.AiOpinion
}

// EventPublisher publishes eligibility lifecycle events.
type EventPublisher interface {
	PublishCheckCompleted(ctx context.Context, check *repository.Check)
	PublishUploadLinkIssued(ctx context.Context, employeeID, issuedBy string, expiresAt time.Time)
}

// Service wires the decision core to storage, recognition, AI review and
// messaging.
type Service struct {
	evaluator *policy.Evaluator
	signer    *uploadlink.Signer
	extractor Extractor
	assessor  Assessor
	checkRepo *repository.CheckRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new eligibility service. The assessor may be nil when
// AI review is not configured.
func NewService(
	evaluator *policy.Evaluator,
	signer *uploadlink.Signer,
	extractor Extractor,
	assessor Assessor,
	checkRepo *repository.CheckRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		evaluator: evaluator,
		signer:    signer,
		extractor: extractor,
		assessor:  assessor,
		checkRepo: checkRepo,
		publisher: publisher,
		logger:    log,
	}
}

// CheckEligibility runs a full check on HR-entered permit facts and persists
// the outcome as an audit record.
func (s *Service) CheckEligibility(ctx context.Context, employeeID string, facts domain.PermitFacts) (*repository.Check, error) {
	if employeeID == "" {
		return nil, errors.BadRequest("employee id is required")
	}

	assessment := s.decide(ctx, facts, "")
	return s.record(ctx, employeeID, repository.SourceManual, performedBy(ctx), assessment, facts, 0)
}

// IssueUploadLink mints a signed anonymous upload link for one employee.
func (s *Service) IssueUploadLink(ctx context.Context, employeeID string) (string, domain.UploadGrant, error) {
	if employeeID == "" {
		return "", domain.UploadGrant{}, errors.BadRequest("employee id is required")
	}

	issuedBy := performedBy(ctx)
	grant := s.signer.NewGrant(issuedBy, employeeID)
	token, err := s.signer.Issue(grant)
	if err != nil {
		return "", domain.UploadGrant{}, errors.Internal("failed to issue upload link")
	}

	s.publisher.PublishUploadLinkIssued(ctx, employeeID, issuedBy, grant.ExpiresAt)

	s.logger.Info().
		Str("employee_id", employeeID).
		Str("issued_by", issuedBy).
		Time("expires_at", grant.ExpiresAt).
		Msg("upload link issued")

	return token, grant, nil
}

// VerifyUploadToken checks a submission token and returns its grant.
func (s *Service) VerifyUploadToken(token string) (domain.UploadGrant, error) {
	return s.signer.Verify(token)
}

// UploadFile is one scan of a submission batch, in upload order.
type UploadFile struct {
	Name string
	Data []byte
}

// SubmitDocuments handles an anonymous candidate submission: recognize every
// scan, aggregate the evidence, decide, and record the outcome against the
// employee the upload link was issued for.
//
// Recognition failures never abort the batch; a failed scan contributes an
// empty extraction and the resulting gaps route the decision toward manual
// review.
func (s *Service) SubmitDocuments(ctx context.Context, token string, files []UploadFile) (*repository.Check, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.BadRequest("at least one document is required")
	}
	if len(files) > MaxDocumentsPerSubmission {
		return nil, errors.BadRequest("a submission may contain at most 5 documents")
	}

	extractions := make([]domain.DocumentExtraction, 0, len(files))
	for _, f := range files {
		ex, err := s.extractor.Extract(ctx, f.Name, f.Data)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("employee_id", grant.EmployeeID).
				Str("file", f.Name).
				Msg("document recognition failed, substituting empty extraction")
			ex = domain.EmptyExtraction(f.Name)
		}
		extractions = append(extractions, ex)
	}

	agg, err := evidence.Aggregate(extractions)
	if err != nil {
		return nil, err
	}

	facts := evidence.ToFacts(agg, "")
	assessment := s.decide(ctx, facts, agg.CombinedText)

	return s.record(ctx, grant.EmployeeID, repository.SourceSubmission, grant.IssuerID, assessment, facts, agg.DocumentCount)
}

// GetCheck fetches one stored check.
func (s *Service) GetCheck(ctx context.Context, id string) (*repository.Check, error) {
	return s.checkRepo.GetByID(ctx, id)
}

// ListChecks returns all stored checks for an employee, newest first.
func (s *Service) ListChecks(ctx context.Context, employeeID string) ([]*repository.Check, error) {
	return s.checkRepo.ListByEmployee(ctx, employeeID)
}

// decide runs the rules engine, asks the AI reviewer, and reconciles.
func (s *Service) decide(ctx context.Context, facts domain.PermitFacts, evidenceText string) domain.FinalAssessment {
	rules := s.evaluator.Evaluate(facts)

	opinion := domain.UnknownOpinion()
	if s.assessor != nil {
		opinion = s.assessor.Assess(ctx, facts, evidenceText)
	}

	return policy.Arbitrate(rules, opinion)
}

// record persists the assessment and publishes the completion event.
func (s *Service) record(ctx context.Context, employeeID, source, by string, assessment domain.FinalAssessment, facts domain.PermitFacts, documentCount int) (*repository.Check, error) {
	check := repository.NewCheck(employeeID, source, by, assessment, facts, documentCount)
	if err := s.checkRepo.Create(ctx, check); err != nil {
		return nil, err
	}

	s.publisher.PublishCheckCompleted(ctx, check)

	s.logger.Info().
		Str("check_id", check.ID).
		Str("employee_id", employeeID).
		Str("status", check.Status).
		Str("source", source).
		Msg("eligibility check completed")

	return check, nil
}

// performedBy names the acting user, falling back to the system actor for
// flows without an authenticated caller.
func performedBy(ctx context.Context) string {
	if a := actor.FromContext(ctx); a != nil {
		return a.ID
	}
	return actor.SystemActor().ID
}
