// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"insurance_intake_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Intake Domain Events
// =============================================================================

// QuoteSubmitted is published when a quote request completes the intake
// workflow and is persisted locally.
type QuoteSubmitted struct {
	BaseEvent
	ThreadID      string `json:"threadId"`
	SessionID     string `json:"sessionId"`
	InsuranceType string `json:"insuranceType"`
	ContactName   string `json:"contactName"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
}

func (e QuoteSubmitted) EventName() string { return "intake.quote.submitted" }

// LeadSubmitted is published when a lead was accepted by the CRM.
type LeadSubmitted struct {
	BaseEvent
	ThreadID      string `json:"threadId"`
	LeadID        string `json:"leadId"`
	InsuranceType string `json:"insuranceType"`
}

func (e LeadSubmitted) EventName() string { return "intake.lead.submitted" }

// LeadSubmissionFailed is published when the best-effort CRM submission failed.
// The locally persisted record remains authoritative.
type LeadSubmissionFailed struct {
	BaseEvent
	ThreadID      string `json:"threadId"`
	SessionID     string `json:"sessionId"`
	InsuranceType string `json:"insuranceType"`
	Reason        string `json:"reason"`
}

func (e LeadSubmissionFailed) EventName() string { return "intake.lead.submission_failed" }

// ThreadDeleted is published when a conversation thread is explicitly removed.
type ThreadDeleted struct {
	BaseEvent
	ThreadID string `json:"threadId"`
}

func (e ThreadDeleted) EventName() string { return "chat.thread.deleted" }
