// Package tools implements the function catalog the conversation model can
// call: intake collection, policy lookups and CRM operations.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"insurance_intake_backend/internal/agencyzoom"
	"insurance_intake_backend/internal/ams360"
	"insurance_intake_backend/internal/crm"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

// handlerFunc executes one tool call against the thread's intake session.
type handlerFunc func(ctx context.Context, threadID string, sess *intake.Session, args json.RawMessage) (string, error)

// Registry is the closed tool catalog bound to its backends.
type Registry struct {
	intake *intake.Service
	ams    *ams360.Client
	zoom   *agencyzoom.Client
	log    *logger.Logger
	now    func() time.Time

	handlers map[string]handlerFunc
}

// NewRegistry wires the tool handlers. The backends may be unconfigured;
// their tools then report the outage to the model instead of failing the
// turn.
func NewRegistry(intakeSvc *intake.Service, ams *ams360.Client, zoom *agencyzoom.Client, log *logger.Logger) *Registry {
	r := &Registry{
		intake: intakeSvc,
		ams:    ams,
		zoom:   zoom,
		log:    log,
		now:    time.Now,
	}
	r.handlers = map[string]handlerFunc{
		"get_current_time":                    r.getCurrentTime,
		"set_user_action":                     r.setUserAction,
		"collect_home_insurance_data":         r.collectHome,
		"collect_auto_insurance_data":         r.collectAuto,
		"collect_flood_insurance_data":        r.collectFlood,
		"collect_life_insurance_data":         r.collectLife,
		"collect_commercial_insurance_data":   r.collectCommercial,
		"submit_quote_request":                r.submitQuoteRequest,
		"get_policy_by_number":                r.getPolicyByNumber,
		"get_ams360_customer_policies":        r.getCustomerPolicies,
		"search_ams360_customer_by_name":      r.searchCustomerByName,
		"search_ams360_customer_by_phone":     r.searchCustomerByPhone,
		"create_agencyzoom_lead":              r.createLead,
		"search_agencyzoom_contact_by_phone":  r.searchContactByPhone,
		"search_agencyzoom_contact_by_email":  r.searchContactByEmail,
		"submit_collected_data_to_agencyzoom": r.submitToCRM,
	}
	return r
}

// Tools returns the catalog offered to the model.
func (r *Registry) Tools() []openaichat.Tool {
	return Definitions()
}

// Execute runs one tool call and always returns text for the model.
// Validation and workflow errors come back as their guidance message;
// anything else is wrapped in an error sentence.
func (r *Registry) Execute(ctx context.Context, threadID string, sess *intake.Session, call openaichat.ToolCall) string {
	handler, ok := r.handlers[call.Name]
	if !ok {
		err := apperr.BadRequest("unknown tool " + call.Name).WithOp("tools.Execute")
		r.log.ToolCall(threadID, call.Name, call.ID, err)
		return "Unknown function: " + call.Name
	}

	result, err := handler(ctx, threadID, sess, call.Arguments)
	if err != nil {
		r.log.ToolCall(threadID, call.Name, call.ID, err)
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			switch appErr.Kind {
			case apperr.KindValidation, apperr.KindWorkflowState, apperr.KindNotFound:
				return appErr.Message
			}
			return fmt.Sprintf("Error executing %s: %s", call.Name, appErr.Message)
		}
		return fmt.Sprintf("Error executing %s: %s", call.Name, err.Error())
	}
	return result
}

func (r *Registry) getCurrentTime(_ context.Context, _ string, _ *intake.Session, _ json.RawMessage) (string, error) {
	return "The current time is " + r.now().Format("3:04 PM on Monday, January 2, 2006"), nil
}

func (r *Registry) setUserAction(_ context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		ActionType    string `json:"action_type"`
		InsuranceType string `json:"insurance_type"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.SetUserAction(sess, p.ActionType, p.InsuranceType)
}

func (r *Registry) collectHome(ctx context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p intake.HomeParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.CollectHome(ctx, sess, p)
}

func (r *Registry) collectAuto(ctx context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p intake.AutoParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.CollectAuto(ctx, sess, p)
}

func (r *Registry) collectFlood(ctx context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p intake.FloodParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.CollectFlood(ctx, sess, p)
}

func (r *Registry) collectLife(ctx context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p intake.LifeParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.CollectLife(ctx, sess, p)
}

func (r *Registry) collectCommercial(ctx context.Context, _ string, sess *intake.Session, args json.RawMessage) (string, error) {
	var p intake.CommercialParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.intake.CollectCommercial(ctx, sess, p)
}

func (r *Registry) submitQuoteRequest(ctx context.Context, threadID string, sess *intake.Session, _ json.RawMessage) (string, error) {
	return r.intake.SubmitQuoteRequest(ctx, sess, threadID)
}

func (r *Registry) getPolicyByNumber(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		PolicyNumber string `json:"policy_number"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	if !r.ams.Configured() {
		return "The policy lookup system is not available right now. Please continue without the lookup.", nil
	}

	lookup, err := r.ams.LookupPolicyByNumber(ctx, p.PolicyNumber)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return fmt.Sprintf("No policy found with policy number %s.", p.PolicyNumber), nil
		}
		return "", err
	}

	pol := lookup.Policy
	msg := fmt.Sprintf("Found policy %s. Type: %s, Status: %s, Effective Date: %s, Expiration Date: %s, Premium: $%s. Customer ID: %s.",
		pol.PolicyNumber, valueOr(pol.PolicyType, "N/A"), valueOr(pol.PolicyStatus, "N/A"),
		dateOnly(pol.EffectiveDate), dateOnly(pol.ExpirationDate), valueOr(pol.PremiumAmount, "N/A"), pol.CustomerID)
	if len(lookup.CustomerPolicies) > 1 {
		msg += fmt.Sprintf(" The customer has %d policies on file.", len(lookup.CustomerPolicies))
	}
	if lookup.Customer != nil {
		msg += fmt.Sprintf(" Customer on file: %s %s.", lookup.Customer.FirstName, lookup.Customer.LastName)
	}
	return msg, nil
}

func (r *Registry) getCustomerPolicies(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		CustomerID string `json:"customer_id"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	if !r.ams.Configured() {
		return "The policy lookup system is not available right now.", nil
	}

	policies, err := r.ams.PoliciesByCustomer(ctx, p.CustomerID)
	if err != nil {
		return "", err
	}
	if len(policies) == 0 {
		return fmt.Sprintf("No policies found for customer %s.", p.CustomerID), nil
	}
	return fmt.Sprintf("Retrieved %d policies for customer %s: %s", len(policies), p.CustomerID, mustJSON(policies)), nil
}

func (r *Registry) searchCustomerByName(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.searchCustomers(ctx, p.Name, fmt.Sprintf("name '%s'", p.Name))
}

func (r *Registry) searchCustomerByPhone(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		Phone string `json:"phone"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	return r.searchCustomers(ctx, p.Phone, fmt.Sprintf("phone number %s", p.Phone))
}

func (r *Registry) searchCustomers(ctx context.Context, query, label string) (string, error) {
	if !r.ams.Configured() {
		return "The customer lookup system is not available right now.", nil
	}
	customers, err := r.ams.SearchCustomersByName(ctx, query, 10)
	if err != nil {
		return "", err
	}
	if len(customers) == 0 {
		return fmt.Sprintf("No customer found with %s.", label), nil
	}
	return fmt.Sprintf("Found %d customer(s) with %s: %s", len(customers), label, mustJSON(customers)), nil
}

func (r *Registry) createLead(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		FirstName            string `json:"first_name"`
		LastName             string `json:"last_name"`
		Email                string `json:"email"`
		Phone                string `json:"phone"`
		InsuranceType        string `json:"insurance_type"`
		Notes                string `json:"notes"`
		Address              string `json:"address"`
		DateOfBirth          string `json:"date_of_birth"`
		CurrentProvider      string `json:"current_provider"`
		VehicleInfo          string `json:"vehicle_info"`
		PropertyInfo         string `json:"property_info"`
		BusinessName         string `json:"business_name"`
		AppointmentRequested bool   `json:"appointment_requested"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	if !r.zoom.Configured() {
		return "The CRM is not available right now. The customer's information has been recorded for manual follow-up.", nil
	}

	lead := agencyzoom.Lead{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Notes:     p.Notes,
	}
	addCustom := func(name, value string) {
		if value != "" {
			lead.CustomFields = append(lead.CustomFields, agencyzoom.CustomField{FieldName: name, FieldValue: []string{value}})
		}
	}
	addCustom("insurance_type", p.InsuranceType)
	addCustom("source", "AI Intake Assistant")
	addCustom("address", p.Address)
	addCustom("date_of_birth", p.DateOfBirth)
	addCustom("current_provider", p.CurrentProvider)
	addCustom("vehicle_info", p.VehicleInfo)
	addCustom("property_info", p.PropertyInfo)
	addCustom("business_name", p.BusinessName)
	if p.AppointmentRequested {
		addCustom("appointment_requested", "true")
	}

	if _, err := r.zoom.CreateLead(ctx, lead); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully created lead in the CRM for %s %s.", p.FirstName, p.LastName), nil
}

func (r *Registry) searchContactByPhone(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		Phone string `json:"phone"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	if !r.zoom.Configured() {
		return "The CRM is not available right now.", nil
	}
	contacts, err := r.zoom.SearchContactByPhone(ctx, p.Phone)
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return fmt.Sprintf("No contact found in the CRM with phone number %s.", p.Phone), nil
	}
	return fmt.Sprintf("Found %d contact(s) in the CRM with phone number %s.", len(contacts), p.Phone), nil
}

func (r *Registry) searchContactByEmail(ctx context.Context, _ string, _ *intake.Session, args json.RawMessage) (string, error) {
	var p struct {
		Email string `json:"email"`
	}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	if !r.zoom.Configured() {
		return "The CRM is not available right now.", nil
	}
	contacts, err := r.zoom.SearchContactByEmail(ctx, p.Email)
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return fmt.Sprintf("No contact found in the CRM with email %s.", p.Email), nil
	}
	return fmt.Sprintf("Found %d contact(s) in the CRM with email %s.", len(contacts), p.Email), nil
}

func (r *Registry) submitToCRM(ctx context.Context, threadID string, sess *intake.Session, _ json.RawMessage) (string, error) {
	const op = "tools.submitToCRM"

	if sess.InsuranceType() == "" {
		return "", apperr.WorkflowState("No insurance data has been collected yet. Please collect insurance information first.").WithOp(op)
	}
	rec := sess.Record()
	if rec.Empty() {
		return "", apperr.WorkflowState(fmt.Sprintf("No %s insurance data found. Please collect the information first.", sess.InsuranceType())).WithOp(op)
	}
	if !r.zoom.Configured() {
		return "The CRM is not available right now. The information is saved and can be submitted manually.", nil
	}

	lead := crm.BuildLead(sess.ID, rec)
	lead.Notes = fmt.Sprintf("Lead collected via AI intake assistant. Thread ID: %s", threadID)
	if _, err := r.zoom.CreateLead(ctx, lead); err != nil {
		return "Failed to submit data to the CRM. The information is saved and can be submitted manually.", nil
	}
	return fmt.Sprintf("Excellent! I've successfully submitted all your %s insurance information to the CRM. Our team will follow up with you shortly!", rec.Type), nil
}

func decode(args json.RawMessage, out any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, out); err != nil {
		return apperr.BadRequest("tool arguments could not be parsed: " + err.Error()).WithOp("tools.decode")
	}
	return nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func dateOnly(s string) string {
	if s == "" {
		return "N/A"
	}
	if i := len(s); i > 10 && s[10] == 'T' {
		return s[:10]
	}
	return s
}
