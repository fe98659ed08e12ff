package consumers

import (
	"context"

	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/pkg/logger"
	"github.com/talentflow/talentflow-backend/pkg/messaging"
)

// StaffEventHandler purges stored checks when an employee is deleted
// (testable without RabbitMQ)
type StaffEventHandler struct {
	checkRepo *repository.CheckRepository
	logger    *logger.Logger
}

// NewStaffEventHandler creates a new handler for testing purposes
func NewStaffEventHandler(checkRepo *repository.CheckRepository, log *logger.Logger) *StaffEventHandler {
	return &StaffEventHandler{
		checkRepo: checkRepo,
		logger:    log,
	}
}

// StaffEventConsumer consumes staff events for data retention
type StaffEventConsumer struct {
	consumer *messaging.Consumer
	handler  *StaffEventHandler
	logger   *logger.Logger
}

// NewStaffEventConsumer creates a consumer that deletes eligibility checks
// for employees removed by the staff service.
func NewStaffEventConsumer(rmq *messaging.RabbitMQ, checkRepo *repository.CheckRepository, log *logger.Logger) (*StaffEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "eligibility-service.staff-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeStaffEvents, messaging.EventEmployeeDeleted); err != nil {
		return nil, err
	}

	handler := NewStaffEventHandler(checkRepo, log)

	c := &StaffEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventEmployeeDeleted, handler.handleEmployeeDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *StaffEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleEmployeeDeleted purges all stored checks for the deleted employee.
// Deleting zero rows is fine; the employee may never have been checked.
func (h *StaffEventHandler) handleEmployeeDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.EmployeeDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal EmployeeDeletedEvent")
		return err
	}
	if data.EmployeeID == "" {
		h.logger.Warn().Msg("employee deleted event without employee_id, skipping")
		return nil
	}

	deleted, err := h.checkRepo.DeleteByEmployee(ctx, data.EmployeeID)
	if err != nil {
		h.logger.Error().Err(err).Str("employee_id", data.EmployeeID).Msg("failed to purge eligibility checks")
		return err
	}

	h.logger.Info().
		Str("employee_id", data.EmployeeID).
		Int64("checks_deleted", deleted).
		Msg("purged eligibility checks for deleted employee")
	return nil
}
