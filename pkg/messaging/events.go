package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Eligibility events
	EventCheckCompleted   = "eligibility.check.completed"
	EventUploadLinkIssued = "eligibility.upload_link.issued"

	// Staff events consumed from the staff service
	EventEmployeeDeleted = "staff.employee.deleted"
)

// Exchange names
const (
	ExchangeEligibilityEvents = "eligibility.events"
	ExchangeStaffEvents       = "staff.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Eligibility Events

// CheckCompletedEvent is published whenever an eligibility check reaches a
// final assessment, regardless of outcome.
type CheckCompletedEvent struct {
	CheckID       string   `json:"check_id"`
	EmployeeID    string   `json:"employee_id"`
	Status        string   `json:"status"`
	Reasons       []string `json:"reasons"`
	DocumentCount int      `json:"document_count"`
	PerformedBy   string   `json:"performed_by"`
}

// UploadLinkIssuedEvent is published when an HR user issues an anonymous
// document upload link. The token itself is never part of the event.
type UploadLinkIssuedEvent struct {
	EmployeeID string    `json:"employee_id"`
	IssuedBy   string    `json:"issued_by"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Staff Events

// EmployeeDeletedEvent is consumed when the staff service deletes an
// employee; stored eligibility checks for that employee are purged.
type EmployeeDeletedEvent struct {
	EmployeeID string `json:"employee_id"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
