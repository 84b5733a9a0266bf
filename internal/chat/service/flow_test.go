package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"insurance_intake_backend/internal/agencyzoom"
	"insurance_intake_backend/internal/ams360"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/internal/tools"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/validator"
)

// Drives three full turns through the real tool registry and intake service:
// choose the action, hand over the flood details, submit. The scripted model
// plays the assistant's side.
func TestHandleTurnFloodIntakeEndToEnd(t *testing.T) {
	log := logger.New("development")
	dir := t.TempDir()
	archive, err := intake.NewArchive(dir)
	if err != nil {
		t.Fatal(err)
	}
	intakeSvc := intake.NewService(validator.New(), archive, nil, nopBus{}, log)
	ams := ams360.NewClient(ams360.Config{TicketTTL: time.Minute}, log)
	zoom := agencyzoom.NewClient(agencyzoom.Config{}, log)
	registry := tools.NewRegistry(intakeSvc, ams, zoom, log)

	floodArgs := `{
		"full_name": "Jane Doe",
		"street_address": "1 River Rd",
		"city": "Tampa",
		"state": "FL",
		"country": "USA",
		"zip_code": "33601",
		"phone": "+18135550126",
		"email": "jane@example.com"
	}`
	model := &scriptedModel{replies: []openaichat.Message{
		toolCallReply(openaichat.ToolCall{
			ID:        "c1",
			Name:      "set_user_action",
			Arguments: []byte(`{"action_type":"add","insurance_type":"flood"}`),
		}),
		assistantReply("Happy to help with flood insurance. What are your details?"),
		toolCallReply(openaichat.ToolCall{
			ID:        "c2",
			Name:      "collect_flood_insurance_data",
			Arguments: []byte(floodArgs),
		}),
		assistantReply("I have everything. Shall I submit the quote request?"),
		toolCallReply(openaichat.ToolCall{ID: "c3", Name: "submit_quote_request"}),
		assistantReply("Your flood quote request has been submitted."),
	}}

	store := NewThreadStore("sp", time.Hour, log)
	svc := NewService(store, model, registry, nopBus{}, log, Config{
		MaxToolRounds: 3,
		TurnTimeout:   5 * time.Second,
	})

	turns := []string{
		"I want to add flood insurance",
		"Jane Doe, 1 River Rd, Tampa FL 33601, +18135550126, jane@example.com",
		"yes, submit it",
	}
	var last string
	for _, q := range turns {
		res, err := svc.HandleTurn(context.Background(), "t1", q)
		if err != nil {
			t.Fatalf("HandleTurn(%q): %v", q, err)
		}
		last = res.Response
	}
	if last != "Your flood quote request has been submitted." {
		t.Errorf("final response = %q", last)
	}

	// The collected record and the submission envelope must both be on disk.
	records, err := filepath.Glob(filepath.Join(dir, "flood_insurance_*_jane_doe.json"))
	if err != nil || len(records) != 1 {
		t.Errorf("collected record files = %v (err %v), want exactly one", records, err)
	}
	submitted, err := filepath.Glob(filepath.Join(dir, "SUBMITTED_flood_quote_*.json"))
	if err != nil || len(submitted) != 1 {
		t.Errorf("submission files = %v (err %v), want exactly one", submitted, err)
	}

	// Every tool round left its paired result in history, and the transcript
	// ends on the final assistant reply.
	thread := store.Get("t1")
	// system + 3 × (user + assistant tool call + tool result + assistant)
	if len(thread.messages) != 13 {
		t.Errorf("message count = %d, want 13", len(thread.messages))
	}
	var submitResult string
	for _, m := range thread.messages {
		if m.Role == openaichat.RoleTool && m.ToolCallID == "c3" {
			submitResult = m.Content
		}
	}
	if !strings.Contains(submitResult, "submitted successfully") {
		t.Errorf("submit tool result = %q", submitResult)
	}
}
