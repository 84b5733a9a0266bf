package intake

import (
	"time"

	"insurance_intake_backend/platform/apperr"
)

// Session holds the intake progress for a single conversation thread. It is
// pure state plus transition checks; persistence and lead submission live in
// the service. Callers serialize access per thread.
type Session struct {
	ID        string
	CreatedAt time.Time

	action    ActionType
	insType   InsuranceType
	record    Record
	submitted bool
}

// NewSession starts a fresh intake session keyed by the timestamp it was
// created at.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:        now.Format("20060102_150405"),
		CreatedAt: now,
	}
}

// Action returns the selected action type, or "" before one is set.
func (s *Session) Action() ActionType { return s.action }

// InsuranceType returns the selected branch, or "" before one is set.
func (s *Session) InsuranceType() InsuranceType { return s.insType }

// Record returns the collected record. Check Record.Empty before use.
func (s *Session) Record() Record { return s.record }

// Submitted reports whether the session's quote request has been submitted.
func (s *Session) Submitted() bool { return s.submitted }

// SetAction records whether the caller wants to add or update a policy. It
// must be called before any data is collected and can be changed freely until
// submission.
func (s *Session) SetAction(action ActionType) error {
	const op = "intake.SetAction"
	if !action.Valid() {
		return apperr.Validation("invalid action type, must be 'add' or 'update'").WithOp(op)
	}
	if s.submitted {
		return apperr.WorkflowState("this quote request has already been submitted").WithOp(op)
	}
	s.action = action
	return nil
}

// SetInsuranceType selects the intake branch. Changing the branch after data
// has been collected discards the collected record.
func (s *Session) SetInsuranceType(t InsuranceType) error {
	const op = "intake.SetInsuranceType"
	if !t.Valid() {
		return apperr.Validation("unsupported insurance type").WithOp(op)
	}
	if s.action == "" {
		return apperr.WorkflowState("specify whether you want to add or update a policy first").WithOp(op)
	}
	if s.submitted {
		return apperr.WorkflowState("this quote request has already been submitted").WithOp(op)
	}
	if s.insType != t {
		s.record = Record{Type: t}
	}
	s.insType = t
	return nil
}

// setRecord installs a validated record for the selected branch.
func (s *Session) setRecord(t InsuranceType, rec Record) error {
	const op = "intake.setRecord"
	if s.action == "" {
		return apperr.WorkflowState("specify whether you want to add or update a policy first").WithOp(op)
	}
	if s.insType == "" {
		return apperr.WorkflowState("select an insurance type before providing details").WithOp(op)
	}
	if s.insType != t {
		return apperr.WorkflowState("the session is collecting "+string(s.insType)+" insurance details, not "+string(t)).WithOp(op)
	}
	if s.submitted {
		return apperr.WorkflowState("this quote request has already been submitted").WithOp(op)
	}
	s.record = rec
	return nil
}

// MarkSubmitted finalizes the session after a successful submission. Further
// mutation attempts fail with a workflow state error.
func (s *Session) MarkSubmitted() error {
	const op = "intake.MarkSubmitted"
	if s.submitted {
		return apperr.WorkflowState("this quote request has already been submitted").WithOp(op)
	}
	if s.insType == "" || s.record.Empty() {
		return apperr.WorkflowState("no insurance details have been collected yet").WithOp(op)
	}
	s.submitted = true
	return nil
}
