package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"

	"insurance_intake_backend/internal/events"
	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/validator"
)

// PendingEmail is recorded on a lead when the caller declined to share an
// email address.
const PendingEmail = "noemail@pending.com"

// LeadSubmitter pushes a completed quote request into the CRM.
type LeadSubmitter interface {
	SubmitLead(ctx context.Context, sessionID string, rec Record) error
}

// Service owns the intake operations the conversation tools call. Each
// operation returns a caller-facing message on success and a typed error on
// failure; the error message doubles as guidance the model can relay.
type Service struct {
	validate *validator.Validator
	archive  *Archive
	leads    LeadSubmitter
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires the intake service. leads may be nil when no CRM is
// configured.
func NewService(v *validator.Validator, archive *Archive, leads LeadSubmitter, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		validate: v,
		archive:  archive,
		leads:    leads,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// SetUserAction records the caller's intent: add or update, and which
// insurance type the conversation is about.
func (s *Service) SetUserAction(sess *Session, actionType, insuranceType string) (string, error) {
	const op = "intake.Service.SetUserAction"

	action := ActionType(strings.ToLower(strings.TrimSpace(actionType)))
	if !action.Valid() {
		return "", apperr.Validation("Invalid action type. Please specify 'add' or 'update'.").WithOp(op)
	}
	insType := InsuranceType(strings.ToLower(strings.TrimSpace(insuranceType)))
	if !insType.Valid() {
		return "", apperr.Validation("Invalid insurance type. Please choose from: home, auto, flood, life, or commercial.").WithOp(op)
	}
	if err := sess.SetAction(action); err != nil {
		return "", err
	}
	if err := sess.SetInsuranceType(insType); err != nil {
		return "", err
	}

	s.log.Info("user action set", "session_id", sess.ID, "action", action, "insurance_type", insType)
	return fmt.Sprintf("Great! I'll help you %s %s insurance. Let me collect the necessary information from you.", action, insType), nil
}

// HomeParams are the arguments for collecting a home insurance record.
type HomeParams struct {
	FullName        string   `json:"full_name"`
	DateOfBirth     string   `json:"date_of_birth"`
	SpouseName      string   `json:"spouse_name,omitempty"`
	SpouseDOB       string   `json:"spouse_dob,omitempty"`
	StreetAddress   string   `json:"street_address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Country         string   `json:"country"`
	ZipCode         string   `json:"zip_code"`
	HasSolarPanels  bool     `json:"has_solar_panels"`
	HasPool         bool     `json:"has_pool"`
	RoofAge         int      `json:"roof_age"`
	HasPets         bool     `json:"has_pets"`
	CurrentProvider string   `json:"current_provider,omitempty"`
	RenewalDate     string   `json:"renewal_date,omitempty"`
	RenewalPremium  *float64 `json:"renewal_premium,omitempty"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
}

// CollectHome validates and stores a home insurance record on the session.
func (s *Service) CollectHome(ctx context.Context, sess *Session, p HomeParams) (string, error) {
	rec := HomeRecord{
		PrimaryInsured: Person{FullName: p.FullName, DateOfBirth: p.DateOfBirth},
		Property: PropertyDetails{
			Address:        addressFrom(p.StreetAddress, p.City, p.State, p.Country, p.ZipCode),
			HasSolarPanels: p.HasSolarPanels,
			HasPool:        p.HasPool,
			RoofAge:        p.RoofAge,
		},
		HasPets:       p.HasPets,
		CurrentPolicy: PolicyInfo{CurrentProvider: p.CurrentProvider, RenewalDate: p.RenewalDate, RenewalPremium: p.RenewalPremium},
		Contact:       ContactInfo{Phone: p.Phone, Email: p.Email},
	}
	if p.SpouseName != "" && p.SpouseDOB != "" {
		rec.Spouse = &Person{FullName: p.SpouseName, DateOfBirth: p.SpouseDOB}
	}
	return s.collect(sess, TypeHome, Record{Type: TypeHome, Home: &rec}, rec.PrimaryInsured.FullName,
		"Perfect! I've collected all your home insurance information. Your quote request is ready to be submitted.")
}

// AutoParams are the arguments for collecting an auto insurance record.
type AutoParams struct {
	DriverName      string   `json:"driver_name"`
	DriverDOB       string   `json:"driver_dob"`
	LicenseNumber   string   `json:"license_number"`
	Qualification   string   `json:"qualification,omitempty"`
	Profession      string   `json:"profession,omitempty"`
	GPA             *float64 `json:"gpa,omitempty"`
	VIN             string   `json:"vin"`
	VehicleMake     string   `json:"vehicle_make"`
	VehicleModel    string   `json:"vehicle_model"`
	CoverageType    string   `json:"coverage_type,omitempty"`
	CurrentProvider string   `json:"current_provider,omitempty"`
	RenewalDate     string   `json:"renewal_date,omitempty"`
	RenewalPremium  *float64 `json:"renewal_premium,omitempty"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email,omitempty"`
}

// CollectAuto validates and stores an auto insurance record on the session.
// The VIN is uppercased before validation.
func (s *Service) CollectAuto(ctx context.Context, sess *Session, p AutoParams) (string, error) {
	if p.Qualification == "" {
		p.Qualification = "Unknown"
	}
	if p.Profession == "" {
		p.Profession = "Unknown"
	}
	if p.CoverageType == "" {
		p.CoverageType = string(CoverageFull)
	}
	rec := AutoRecord{
		Drivers: []Driver{{
			Person:        Person{FullName: p.DriverName, DateOfBirth: p.DriverDOB},
			LicenseNumber: p.LicenseNumber,
			Qualification: p.Qualification,
			Profession:    p.Profession,
			GPA:           p.GPA,
		}},
		Vehicles: []Vehicle{{
			VIN:          strings.ToUpper(strings.TrimSpace(p.VIN)),
			Make:         p.VehicleMake,
			Model:        p.VehicleModel,
			CoverageType: CoverageType(strings.ToLower(p.CoverageType)),
		}},
		CurrentPolicy: PolicyInfo{CurrentProvider: p.CurrentProvider, RenewalDate: p.RenewalDate, RenewalPremium: p.RenewalPremium},
		Contact:       ContactInfo{Phone: p.Phone, Email: orPending(p.Email)},
	}
	return s.collect(sess, TypeAuto, Record{Type: TypeAuto, Auto: &rec}, p.DriverName,
		"Excellent! I've collected all your auto insurance information. Your quote request is ready to be submitted.")
}

// FloodParams are the arguments for collecting a flood insurance record.
type FloodParams struct {
	FullName      string `json:"full_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	ZipCode       string `json:"zip_code"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// CollectFlood validates and stores a flood insurance record on the session.
func (s *Service) CollectFlood(ctx context.Context, sess *Session, p FloodParams) (string, error) {
	rec := FloodRecord{
		FullName:    p.FullName,
		HomeAddress: addressFrom(p.StreetAddress, p.City, p.State, p.Country, p.ZipCode),
		Phone:       p.Phone,
		Email:       p.Email,
	}
	return s.collect(sess, TypeFlood, Record{Type: TypeFlood, Flood: &rec}, p.FullName,
		"Perfect! I've collected all your flood insurance information. Your quote request is ready to be submitted.")
}

// LifeParams are the arguments for collecting a life insurance record.
type LifeParams struct {
	FullName             string `json:"full_name"`
	DateOfBirth          string `json:"date_of_birth"`
	StreetAddress        string `json:"street_address"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Country              string `json:"country"`
	ZipCode              string `json:"zip_code"`
	AppointmentRequested bool   `json:"appointment_requested"`
	AppointmentDate      string `json:"appointment_date,omitempty"`
	Phone                string `json:"phone"`
	Email                string `json:"email,omitempty"`
	PolicyType           string `json:"policy_type,omitempty"`
}

// CollectLife validates and stores a life insurance record on the session.
func (s *Service) CollectLife(ctx context.Context, sess *Session, p LifeParams) (string, error) {
	rec := LifeRecord{
		Insured:              Person{FullName: p.FullName, DateOfBirth: p.DateOfBirth},
		Address:              addressFrom(p.StreetAddress, p.City, p.State, p.Country, p.ZipCode),
		AppointmentRequested: p.AppointmentRequested,
		AppointmentDate:      p.AppointmentDate,
		Contact:              ContactInfo{Phone: p.Phone, Email: orPending(p.Email)},
		PolicyType:           PolicyType(strings.ToLower(p.PolicyType)),
	}
	return s.collect(sess, TypeLife, Record{Type: TypeLife, Life: &rec}, p.FullName,
		"Great! I've collected all your life insurance information. Your quote request is ready to be submitted.")
}

// CommercialParams are the arguments for collecting a commercial record.
type CommercialParams struct {
	BusinessName          string   `json:"business_name"`
	BusinessType          string   `json:"business_type,omitempty"`
	StreetAddress         string   `json:"street_address"`
	City                  string   `json:"city"`
	State                 string   `json:"state"`
	Country               string   `json:"country"`
	ZipCode               string   `json:"zip_code"`
	InventoryLimit        *float64 `json:"inventory_limit,omitempty"`
	BuildingCoverage      bool     `json:"building_coverage"`
	BuildingCoverageLimit *float64 `json:"building_coverage_limit,omitempty"`
	CurrentProvider       string   `json:"current_provider,omitempty"`
	RenewalDate           string   `json:"renewal_date,omitempty"`
	RenewalPremium        *float64 `json:"renewal_premium,omitempty"`
	Phone                 string   `json:"phone"`
	Email                 string   `json:"email,omitempty"`
}

// CollectCommercial validates and stores a commercial record on the session.
func (s *Service) CollectCommercial(ctx context.Context, sess *Session, p CommercialParams) (string, error) {
	if p.BusinessType == "" {
		p.BusinessType = "General"
	}
	rec := CommercialRecord{
		Business: BusinessDetails{
			Name:    p.BusinessName,
			Type:    p.BusinessType,
			Address: addressFrom(p.StreetAddress, p.City, p.State, p.Country, p.ZipCode),
		},
		Coverage: CoverageDetails{
			InventoryLimit:        p.InventoryLimit,
			BuildingCoverage:      p.BuildingCoverage,
			BuildingCoverageLimit: p.BuildingCoverageLimit,
		},
		CurrentPolicy: PolicyInfo{CurrentProvider: p.CurrentProvider, RenewalDate: p.RenewalDate, RenewalPremium: p.RenewalPremium},
		Contact:       ContactInfo{Phone: p.Phone, Email: orPending(p.Email)},
	}
	return s.collect(sess, TypeCommercial, Record{Type: TypeCommercial, Commercial: &rec}, p.BusinessName,
		"Excellent! I've collected all your commercial insurance information. Your quote request is ready to be submitted.")
}

// collect validates the built record, installs it on the session and
// archives it. Archive failures downgrade the confirmation message rather
// than failing the operation.
func (s *Service) collect(sess *Session, t InsuranceType, rec Record, name, okMsg string) (string, error) {
	const op = "intake.Service.collect"

	var target any
	switch t {
	case TypeHome:
		target = rec.Home
	case TypeAuto:
		target = rec.Auto
	case TypeFlood:
		target = rec.Flood
	case TypeLife:
		target = rec.Life
	case TypeCommercial:
		target = rec.Commercial
	}
	if err := s.validate.Struct(target); err != nil {
		return "", apperr.Validation(describeValidation(err)).WithOp(op)
	}
	if err := sess.setRecord(t, rec); err != nil {
		return "", err
	}

	if err := s.archive.SaveRecord(sess.ID, t, name, rec); err != nil {
		s.log.Warn("failed to archive intake record", "session_id", sess.ID, "insurance_type", t, "error", err)
		return fmt.Sprintf("I've collected your %s insurance information, but there was an issue saving it. The data is still stored and can be submitted.", t), nil
	}
	s.log.Info("intake record collected", "session_id", sess.ID, "insurance_type", t)
	return okMsg, nil
}

// Submission is the archived shape of a submitted quote request.
type Submission struct {
	SubmissionTimestamp string `json:"submission_timestamp"`
	SessionID           string `json:"session_id"`
	Status              string `json:"status"`
	QuoteRequest        Record `json:"quote_request"`
}

// SubmitQuoteRequest finalizes the session: the quote is archived, pushed to
// the CRM on a best effort basis and the session is sealed against further
// edits.
func (s *Service) SubmitQuoteRequest(ctx context.Context, sess *Session, threadID string) (string, error) {
	const op = "intake.Service.SubmitQuoteRequest"

	if sess.InsuranceType() == "" {
		return "", apperr.WorkflowState("No insurance type has been set. Please start by telling me what type of insurance you need.").WithOp(op)
	}
	if sess.Record().Empty() {
		return "", apperr.WorkflowState(fmt.Sprintf("I haven't collected the %s insurance information yet. Please provide the required details first.", sess.InsuranceType())).WithOp(op)
	}
	if err := sess.MarkSubmitted(); err != nil {
		return "", err
	}

	rec := sess.Record()
	now := s.now()
	sub := Submission{
		SubmissionTimestamp: now.Format("20060102_150405"),
		SessionID:           sess.ID,
		Status:              "submitted",
		QuoteRequest:        rec,
	}
	if err := s.archive.SaveSubmission(rec.Type, now, sub); err != nil {
		s.log.Error("failed to archive submitted quote", "session_id", sess.ID, "error", err)
	}

	crmSubmitted := false
	if s.leads != nil {
		if err := s.leads.SubmitLead(ctx, sess.ID, rec); err != nil {
			s.log.Error("crm lead submission failed", "session_id", sess.ID, "insurance_type", rec.Type, "error", err)
			s.bus.Publish(ctx, events.LeadSubmissionFailed{
				BaseEvent:     events.NewBaseEvent(),
				ThreadID:      threadID,
				SessionID:     sess.ID,
				InsuranceType: string(rec.Type),
				Reason:        err.Error(),
			})
		} else {
			crmSubmitted = true
			s.bus.Publish(ctx, events.LeadSubmitted{
				BaseEvent:     events.NewBaseEvent(),
				ThreadID:      threadID,
				InsuranceType: string(rec.Type),
			})
		}
	}

	s.bus.Publish(ctx, events.QuoteSubmitted{
		BaseEvent:     events.NewBaseEvent(),
		ThreadID:      threadID,
		SessionID:     sess.ID,
		InsuranceType: string(rec.Type),
		ContactName:   rec.ContactName(),
		ContactEmail:  rec.ContactEmail(),
		ContactPhone:  rec.ContactPhone(),
	})

	s.log.Info("quote request submitted", "session_id", sess.ID, "insurance_type", rec.Type, "crm_submitted", crmSubmitted)

	msg := fmt.Sprintf("Perfect! Your %s insurance quote request has been submitted successfully.", rec.Type)
	if crmSubmitted {
		msg += " Your information has been added to our CRM system."
	}
	msg += " Our team will review your information and contact you shortly with a personalized quote. Is there anything else I can help you with today?"
	return msg, nil
}

func addressFrom(street, city, state, country, zip string) Address {
	return Address{StreetAddress: street, City: city, State: state, Country: country, ZipCode: zip}
}

func orPending(email string) string {
	if strings.TrimSpace(email) == "" {
		return PendingEmail
	}
	return email
}

// describeValidation turns validator failures into guidance the model can
// read back to the caller.
func describeValidation(err error) string {
	var verrs govalidator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Some of the provided information is invalid. Please verify it and try again."
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeFieldError(fe))
	}
	return "Please verify the following and try again: " + strings.Join(parts, "; ") + "."
}

func describeFieldError(fe govalidator.FieldError) string {
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required when building coverage is requested"
	case "email":
		return field + " must be a valid email address"
	case "len":
		return field + " must be exactly " + fe.Param() + " characters"
	case "min":
		return "at least " + fe.Param() + " " + field + " must be provided"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return field + " must use the " + strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD", "15", "HH", "04", "MM").Replace(fe.Param()) + " format"
	}
	return field + " is invalid"
}

// fieldLabel converts a Go field name into a spoken label.
func fieldLabel(name string) string {
	switch name {
	case "VIN":
		return "the VIN"
	case "GPA":
		return "the GPA"
	case "DateOfBirth":
		return "the date of birth"
	case "BuildingCoverageLimit":
		return "the building coverage limit"
	case "AppointmentDate":
		return "the appointment date"
	}
	var b strings.Builder
	b.WriteString("the ")
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
