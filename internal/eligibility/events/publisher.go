package events

import (
	"context"
	"time"

	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/pkg/logger"
	"github.com/talentflow/talentflow-backend/pkg/messaging"
)

// EligibilityEventPublisher publishes eligibility-related events
type EligibilityEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewEligibilityEventPublisher creates a new eligibility event publisher
func NewEligibilityEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*EligibilityEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeEligibilityEvents, "eligibility-service", log)
	if err != nil {
		return nil, err
	}

	return &EligibilityEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishCheckCompleted publishes a check completed event. Publishing is
// best-effort: the check is already persisted when this runs.
func (p *EligibilityEventPublisher) PublishCheckCompleted(ctx context.Context, check *repository.Check) {
	data := messaging.CheckCompletedEvent{
		CheckID:       check.ID,
		EmployeeID:    check.EmployeeID,
		Status:        check.Status,
		Reasons:       check.Reasons,
		DocumentCount: check.DocumentCount,
		PerformedBy:   check.PerformedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventCheckCompleted, data); err != nil {
		p.logger.WithCheckID(check.ID).Error().Err(err).Msg("failed to publish check completed event")
	}
}

// PublishUploadLinkIssued publishes an upload link issued event. The token
// never appears in the event payload.
func (p *EligibilityEventPublisher) PublishUploadLinkIssued(ctx context.Context, employeeID, issuedBy string, expiresAt time.Time) {
	data := messaging.UploadLinkIssuedEvent{
		EmployeeID: employeeID,
		IssuedBy:   issuedBy,
		ExpiresAt:  expiresAt,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUploadLinkIssued, data); err != nil {
		p.logger.WithEmployeeID(employeeID).Error().Err(err).Msg("failed to publish upload link issued event")
	}
}
