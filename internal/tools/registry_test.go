package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"insurance_intake_backend/internal/agencyzoom"
	"insurance_intake_backend/internal/ams360"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/events"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/validator"
)

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event) {}
func (nopBus) PublishSync(context.Context, events.Event) error {
	return nil
}
func (nopBus) Subscribe(string, events.Handler) {}

// newTestRegistry wires a registry against unconfigured backends, so lookup
// and CRM tools answer with their outage messages.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	log := logger.New("development")
	archive, err := intake.NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	intakeSvc := intake.NewService(validator.New(), archive, nil, nopBus{}, log)
	ams := ams360.NewClient(ams360.Config{TicketTTL: time.Minute}, log)
	zoom := agencyzoom.NewClient(agencyzoom.Config{}, log)
	return NewRegistry(intakeSvc, ams, zoom, log)
}

func exec(r *Registry, sess *intake.Session, name, args string) string {
	return r.Execute(context.Background(), "thread-1", sess, openaichat.ToolCall{
		ID:        "call-1",
		Name:      name,
		Arguments: []byte(args),
	})
}

func TestCatalogMatchesHandlers(t *testing.T) {
	r := newTestRegistry(t)

	defs := r.Tools()
	if len(defs) != len(r.handlers) {
		t.Fatalf("catalog has %d tools, registry has %d handlers", len(defs), len(r.handlers))
	}
	for _, d := range defs {
		if _, ok := r.handlers[d.Name]; !ok {
			t.Errorf("catalog tool %q has no handler", d.Name)
		}
		if d.Description == "" {
			t.Errorf("tool %q has no description", d.Name)
		}
		if len(d.Parameters) == 0 {
			t.Errorf("tool %q has no parameter schema", d.Name)
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "order_pizza", "{}")
	if got != "Unknown function: order_pizza" {
		t.Errorf("result = %q", got)
	}
}

func TestGetCurrentTime(t *testing.T) {
	r := newTestRegistry(t)
	r.now = func() time.Time { return time.Date(2025, 6, 2, 15, 4, 0, 0, time.UTC) }
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "get_current_time", "")
	want := "The current time is 3:04 PM on Monday, June 2, 2025"
	if got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestSetUserActionRelaysGuidance(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "set_user_action", `{"action_type":"add","insurance_type":"home"}`)
	if !strings.Contains(got, "add home insurance") {
		t.Errorf("result = %q", got)
	}

	// Validation failures come back as readable guidance, not error text.
	got = exec(r, sess, "set_user_action", `{"action_type":"renew","insurance_type":"home"}`)
	if got != "Invalid action type. Please specify 'add' or 'update'." {
		t.Errorf("result = %q", got)
	}
}

func TestCollectBeforeActionRelaysWorkflowGuidance(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "collect_flood_insurance_data", `{
		"full_name": "Jane Doe",
		"street_address": "1 River Rd",
		"city": "Tampa",
		"state": "FL",
		"country": "USA",
		"zip_code": "33601",
		"phone": "+18135550126",
		"email": "jane@example.com"
	}`)
	if got != "specify whether you want to add or update a policy first" {
		t.Errorf("result = %q", got)
	}
}

func TestCollectValidationGuidance(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())
	exec(r, sess, "set_user_action", `{"action_type":"add","insurance_type":"auto"}`)

	got := exec(r, sess, "collect_auto_insurance_data", `{
		"driver_name": "Mary Jones",
		"driver_dob": "1990-09-30",
		"license_number": "J123",
		"vin": "SHORT",
		"vehicle_make": "Honda",
		"vehicle_model": "Accord",
		"phone": "+18135550124"
	}`)
	if !strings.Contains(got, "VIN") || !strings.Contains(got, "17") {
		t.Errorf("result should explain the VIN length rule: %q", got)
	}
}

func TestMalformedArgumentsBecomeErrorText(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "collect_home_insurance_data", `{not json`)
	if !strings.HasPrefix(got, "Error executing collect_home_insurance_data:") {
		t.Errorf("result = %q", got)
	}
}

func TestUnconfiguredBackendsReportOutage(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "get_policy_by_number", `{"policy_number":"HO-1"}`)
	if !strings.Contains(got, "not available") {
		t.Errorf("policy lookup outage message = %q", got)
	}

	got = exec(r, sess, "search_agencyzoom_contact_by_phone", `{"phone":"+1813"}`)
	if !strings.Contains(got, "not available") {
		t.Errorf("crm outage message = %q", got)
	}
}

func TestSubmitToCRMRequiresCollectedData(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	got := exec(r, sess, "submit_collected_data_to_agencyzoom", "{}")
	if got != "No insurance data has been collected yet. Please collect insurance information first." {
		t.Errorf("result = %q", got)
	}

	exec(r, sess, "set_user_action", `{"action_type":"add","insurance_type":"life"}`)
	got = exec(r, sess, "submit_collected_data_to_agencyzoom", "{}")
	if got != "No life insurance data found. Please collect the information first." {
		t.Errorf("result = %q", got)
	}
}

func TestFullIntakeFlowThroughTools(t *testing.T) {
	r := newTestRegistry(t)
	sess := intake.NewSession(time.Now())

	exec(r, sess, "set_user_action", `{"action_type":"add","insurance_type":"flood"}`)
	got := exec(r, sess, "collect_flood_insurance_data", `{
		"full_name": "Jane Doe",
		"street_address": "1 River Rd",
		"city": "Tampa",
		"state": "FL",
		"country": "USA",
		"zip_code": "33601",
		"phone": "+18135550126",
		"email": "jane@example.com"
	}`)
	if !strings.Contains(got, "flood insurance information") {
		t.Fatalf("collect result = %q", got)
	}

	got = exec(r, sess, "submit_quote_request", "")
	if !strings.Contains(got, "submitted successfully") {
		t.Errorf("submit result = %q", got)
	}
	if !sess.Submitted() {
		t.Error("session should be sealed after submit")
	}

	// A repeat submit relays the workflow guidance.
	got = exec(r, sess, "submit_quote_request", "")
	if got != "this quote request has already been submitted" {
		t.Errorf("double submit result = %q", got)
	}
}

func TestDateOnly(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2025-01-01T00:00:00", "2025-01-01"},
		{"2025-01-01", "2025-01-01"},
		{"", "N/A"},
	}
	for _, tc := range cases {
		if got := dateOnly(tc.in); got != tc.want {
			t.Errorf("dateOnly(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
