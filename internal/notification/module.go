// Package notification turns domain events into outbound customer mail.
package notification

import (
	"context"

	"insurance_intake_backend/internal/email"
	"insurance_intake_backend/internal/events"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/logger"
)

// Module listens for intake events and sends the matching notifications.
// A nil sender disables outbound mail.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// NewModule creates the notification module.
func NewModule(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes to the domain events this module reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteSubmitted{}.EventName(), m)
	bus.Subscribe(events.LeadSubmissionFailed{}.EventName(), m)
}

// Handle routes events to the appropriate reaction.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteSubmitted:
		return m.sendQuoteConfirmation(ctx, e)
	case events.LeadSubmissionFailed:
		m.log.Warn("lead needs manual CRM entry",
			"thread_id", e.ThreadID, "session_id", e.SessionID, "insurance_type", e.InsuranceType, "reason", e.Reason)
		return nil
	default:
		return nil
	}
}

func (m *Module) sendQuoteConfirmation(ctx context.Context, e events.QuoteSubmitted) error {
	if m.sender == nil {
		return nil
	}
	if e.ContactEmail == "" || e.ContactEmail == intake.PendingEmail {
		m.log.Info("skipping quote confirmation, no usable email", "session_id", e.SessionID)
		return nil
	}
	if err := m.sender.SendQuoteConfirmation(ctx, e.ContactEmail, e.ContactName, e.InsuranceType); err != nil {
		m.log.Error("failed to send quote confirmation", "session_id", e.SessionID, "error", err)
		return err
	}
	m.log.Info("quote confirmation sent", "session_id", e.SessionID, "insurance_type", e.InsuranceType)
	return nil
}
