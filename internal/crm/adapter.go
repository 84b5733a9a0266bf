package crm

import (
	"context"
	"fmt"
	"strings"

	"insurance_intake_backend/internal/agencyzoom"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/phone"
)

// Adapter maps completed intake records onto AgencyZoom leads. Submission is
// best effort: a single attempt, no retries.
type Adapter struct {
	client *agencyzoom.Client
	log    *logger.Logger
}

// NewAdapter wires the CRM adapter.
func NewAdapter(client *agencyzoom.Client, log *logger.Logger) *Adapter {
	return &Adapter{client: client, log: log}
}

// SubmitLead pushes a quote request into the CRM pipeline.
func (a *Adapter) SubmitLead(ctx context.Context, sessionID string, rec intake.Record) error {
	lead := BuildLead(sessionID, rec)
	result, err := a.client.CreateLead(ctx, lead)
	if err != nil {
		return err
	}
	a.log.Info("crm lead created", "session_id", sessionID, "insurance_type", rec.Type, "lead_id", result.ID.String())
	return nil
}

// BuildLead derives the CRM lead payload from an intake record. The contact
// name is split into first and last on the first space, missing emails fall
// back to a pending placeholder and phone numbers are normalized to E.164
// when possible.
func BuildLead(sessionID string, rec intake.Record) agencyzoom.Lead {
	first, last := splitName(rec.ContactName())

	email := rec.ContactEmail()
	if email == "" {
		email = intake.PendingEmail
	}

	phoneNumber := phone.NormalizeE164(rec.ContactPhone())

	lead := agencyzoom.Lead{
		FirstName: firstOr(first, "Unknown"),
		LastName:  last,
		Email:     email,
		Phone:     phoneNumber,
		Notes:     fmt.Sprintf("Quote submitted via AI intake assistant. Session: %s", sessionID),
		CustomFields: []agencyzoom.CustomField{
			customField("insurance_type", string(rec.Type)),
			customField("source", "AI Intake Assistant"),
		},
	}

	switch {
	case rec.Home != nil:
		addr := rec.Home.Property.Address
		applyAddress(&lead, addr)
		lead.CustomFields = append(lead.CustomFields,
			customField("property_address", formatAddress(addr)),
			customField("current_provider", rec.Home.CurrentPolicy.CurrentProvider))
	case rec.Auto != nil:
		if len(rec.Auto.Vehicles) > 0 {
			v := rec.Auto.Vehicles[0]
			lead.CustomFields = append(lead.CustomFields,
				customField("vehicle_info", strings.TrimSpace(v.Make+" "+v.Model)))
		}
		lead.CustomFields = append(lead.CustomFields,
			customField("current_provider", rec.Auto.CurrentPolicy.CurrentProvider))
	case rec.Flood != nil:
		addr := rec.Flood.HomeAddress
		applyAddress(&lead, addr)
		lead.CustomFields = append(lead.CustomFields,
			customField("home_address", formatAddress(addr)))
	case rec.Life != nil:
		addr := rec.Life.Address
		applyAddress(&lead, addr)
		lead.CustomFields = append(lead.CustomFields,
			customField("address", formatAddress(addr)),
			customField("appointment_requested", fmt.Sprintf("%t", rec.Life.AppointmentRequested)))
	case rec.Commercial != nil:
		addr := rec.Commercial.Business.Address
		applyAddress(&lead, addr)
		lead.CustomFields = append(lead.CustomFields,
			customField("business_name", rec.Commercial.Business.Name),
			customField("business_address", formatAddress(addr)))
	}

	lead.CustomFields = dropEmpty(lead.CustomFields)
	return lead
}

func customField(name, value string) agencyzoom.CustomField {
	return agencyzoom.CustomField{FieldName: name, FieldValue: []string{value}}
}

func dropEmpty(fields []agencyzoom.CustomField) []agencyzoom.CustomField {
	out := fields[:0]
	for _, f := range fields {
		if len(f.FieldValue) > 0 && f.FieldValue[0] != "" {
			out = append(out, f)
		}
	}
	return out
}

func applyAddress(lead *agencyzoom.Lead, addr intake.Address) {
	lead.StreetAddress = addr.StreetAddress
	lead.City = addr.City
	lead.State = addr.State
	lead.Country = addr.Country
	lead.Zip = addr.ZipCode
}

func formatAddress(addr intake.Address) string {
	return fmt.Sprintf("%s, %s, %s %s", addr.StreetAddress, addr.City, addr.State, addr.ZipCode)
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func firstOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
